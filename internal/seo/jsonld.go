package seo

import (
	"encoding/json"
	"strconv"
	"strings"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Address is a postal address.
type Address struct {
	Street   string
	Locality string
	Region   string
	Postcode string
	Country  string
}

// Hours is one opening-hours rule. Days use schema.org day names.
type Hours struct {
	Days   []string
	Opens  string
	Closes string
}

// Business describes the shop for structured data.
type Business struct {
	Name        string
	Description string
	URL         string
	Logo        string
	Telephone   string
	Email       string
	PriceRange  string
	Founded     string
	AreaServed  string
	Address     Address
	Latitude    float64
	Longitude   float64
	Hours       []Hours
	SameAs      []string
}

// Cranks is the shop's structured data profile.
func Cranks(baseURL string) Business {
	baseURL = strings.TrimRight(baseURL, "/")
	return Business{
		Name:        "Cranks Bike Shop",
		Description: "Your trusted local bike shop in Chatswood for premium bikes, expert service, and cycling gear. Serving North Shore Sydney for 30+ years.",
		URL:         baseURL,
		Logo:        baseURL + "/assets/images/cranks-logo.png",
		Telephone:   "+61294173776",
		Email:       "sales@cranks.com.au",
		PriceRange:  "$$",
		Founded:     "1990",
		AreaServed:  "Chatswood, NSW",
		Address: Address{
			Street:   "352A Penshurst Street",
			Locality: "Chatswood",
			Region:   "NSW",
			Postcode: "2067",
			Country:  "AU",
		},
		Latitude:  -33.7965,
		Longitude: 151.1804,
		Hours: []Hours{
			{Days: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, Opens: "09:00", Closes: "17:00"},
			{Days: []string{"Saturday"}, Opens: "09:00", Closes: "16:00"},
			{Days: []string{"Sunday"}, Opens: "09:00", Closes: "15:00"},
		},
	}
}

func (b Business) postalAddress() map[string]any {
	return map[string]any{
		"@type":           "PostalAddress",
		"streetAddress":   b.Address.Street,
		"addressLocality": b.Address.Locality,
		"addressRegion":   b.Address.Region,
		"postalCode":      b.Address.Postcode,
		"addressCountry":  b.Address.Country,
	}
}

func (b Business) openingHours() []map[string]any {
	out := make([]map[string]any, 0, len(b.Hours))
	for _, h := range b.Hours {
		var days any = h.Days
		if len(h.Days) == 1 {
			days = h.Days[0]
		}
		out = append(out, map[string]any{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": days,
			"opens":     h.Opens,
			"closes":    h.Closes,
		})
	}
	return out
}

func (b Business) entity(typ string) map[string]any {
	m := map[string]any{
		"@type":     typ,
		"name":      b.Name,
		"telephone": b.Telephone,
		"address":   b.postalAddress(),
	}
	if b.Email != "" {
		m["email"] = b.Email
	}
	return m
}

func (b Business) areaServed() map[string]any {
	return map[string]any{"@type": "City", "name": b.AreaServed}
}

// LocalBusiness builds the home page BicycleStore schema with an offer
// catalog of the main product lines.
func LocalBusiness(b Business, offers []Offer) map[string]any {
	m := b.entity("BicycleStore")
	m["@context"] = schemaContext
	m["@id"] = b.URL
	m["url"] = b.URL
	m["description"] = b.Description
	m["priceRange"] = b.PriceRange
	m["openingHoursSpecification"] = b.openingHours()
	m["geo"] = map[string]any{
		"@type":     "GeoCoordinates",
		"latitude":  b.Latitude,
		"longitude": b.Longitude,
	}
	m["areaServed"] = b.areaServed()
	if b.Logo != "" {
		m["image"] = b.Logo
	}
	if len(b.SameAs) > 0 {
		m["sameAs"] = b.SameAs
	}
	if len(offers) > 0 {
		m["hasOfferCatalog"] = OfferCatalog("Bikes and Cycling Equipment", offers)
	}
	return m
}

// Store builds the shop page schema.
func Store(b Business, description, url string) map[string]any {
	m := b.entity("Store")
	m["@context"] = schemaContext
	m["description"] = description
	m["url"] = url
	m["priceRange"] = b.PriceRange
	m["openingHoursSpecification"] = b.openingHours()
	return m
}

// ContactPage wraps the business as the main entity of a contact page.
func ContactPage(b Business) map[string]any {
	entity := b.entity("LocalBusiness")
	entity["openingHoursSpecification"] = b.openingHours()
	return map[string]any{
		"@context":   schemaContext,
		"@type":      "ContactPage",
		"mainEntity": entity,
	}
}

// AboutPage wraps the business as the main entity of an about page.
func AboutPage(b Business) map[string]any {
	entity := b.entity("LocalBusiness")
	entity["description"] = b.Description
	if b.Founded != "" {
		entity["foundingDate"] = b.Founded
	}
	return map[string]any{
		"@context":   schemaContext,
		"@type":      "AboutPage",
		"mainEntity": entity,
	}
}

// Offer is one entry of an offer catalog.
type Offer struct {
	Type        string // "Product" or "Service"
	Name        string
	Description string
}

// OfferCatalog builds a schema.org OfferCatalog.
func OfferCatalog(name string, offers []Offer) map[string]any {
	items := make([]map[string]any, 0, len(offers))
	for _, o := range offers {
		typ := o.Type
		if typ == "" {
			typ = "Product"
		}
		item := map[string]any{"@type": typ, "name": o.Name}
		if o.Description != "" {
			item["description"] = o.Description
		}
		items = append(items, map[string]any{"@type": "Offer", "itemOffered": item})
	}
	return map[string]any{
		"@type":           "OfferCatalog",
		"name":            name,
		"itemListElement": items,
	}
}

// ServiceCatalog builds the workshop Service schema.
func ServiceCatalog(b Business, offers []Offer) map[string]any {
	provider := b.entity("LocalBusiness")
	delete(provider, "email")
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "Service",
		"serviceType":     "Bike Repair and Maintenance",
		"provider":        provider,
		"areaServed":      b.areaServed(),
		"hasOfferCatalog": OfferCatalog("Bike Services", offers),
	}
}

// ProductInfo carries the fields of a Product schema.
type ProductInfo struct {
	Name        string
	Description string
	URL         string
	Image       string
	SKU         string
	Brand       string
	Price       float64
	Currency    string
	InStock     bool
	Rating      float64
	Reviews     int
}

// Product returns a product schema payload with an offer.
func Product(p ProductInfo) map[string]any {
	m := map[string]any{
		"@context":    schemaContext,
		"@type":       "Product",
		"name":        p.Name,
		"description": p.Description,
	}
	if p.URL != "" {
		m["url"] = p.URL
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	if p.SKU != "" {
		m["sku"] = p.SKU
	}
	if p.Brand != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": p.Brand}
	}
	if p.Price > 0 {
		availability := "https://schema.org/OutOfStock"
		if p.InStock {
			availability = "https://schema.org/InStock"
		}
		m["offers"] = map[string]any{
			"@type":         "Offer",
			"price":         strconv.FormatFloat(p.Price, 'f', 2, 64),
			"priceCurrency": p.Currency,
			"availability":  availability,
			"url":           p.URL,
		}
	}
	if p.Reviews > 0 && p.Rating > 0 {
		m["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": p.Rating,
			"reviewCount": p.Reviews,
		}
	}
	return m
}

// Article returns a minimal Article schema payload.
func Article(headline, url, imageURL, authorName, datePublished string) map[string]any {
	m := map[string]any{
		"@context": schemaContext,
		"@type":    "Article",
		"headline": headline,
	}
	if url != "" {
		m["url"] = url
	}
	if imageURL != "" {
		m["image"] = imageURL
	}
	if authorName != "" {
		m["author"] = map[string]any{"@type": "Person", "name": authorName}
	}
	if datePublished != "" {
		m["datePublished"] = datePublished
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        schemaContext,
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}
