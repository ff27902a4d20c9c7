package commerce

import (
	"context"
	"errors"
	"html/template"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Currency is the store currency.
const Currency = "AUD"

// Spec is one row of a product specification table.
type Spec struct {
	Name  string
	Value string
}

// RelatedProduct is a teaser for another product.
type RelatedProduct struct {
	ID    string
	Name  string
	Price float64
	Image string
}

// Product is the view model for the product detail page.
type Product struct {
	ID               string
	WidgetID         int64
	Name             string
	Category         string
	Brand            string
	Price            float64
	OriginalPrice    float64
	Currency         string
	Images           []string
	Rating           float64
	Reviews          int
	Badge            string
	ShortDescription string
	Description      template.HTML
	InStock          bool
	StockCount       int
	SKU              string
	Specifications   []Spec
	Features         []string
	Related          []RelatedProduct
	Source           string
}

// OnSale reports whether the product is discounted.
func (p Product) OnSale() bool {
	return p.OriginalPrice > p.Price && p.Price > 0
}

// Saving is the discount amount.
func (p Product) Saving() float64 {
	if !p.OnSale() {
		return 0
	}
	return p.OriginalPrice - p.Price
}

// PrimaryImage returns the first image, or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ProductLookup is the subset of Client the catalog uses.
type ProductLookup interface {
	Configured() bool
	Product(ctx context.Context, id int64) (APIProduct, error)
}

// Catalog resolves product detail pages from the store API, falling back
// to demo data when the API is not configured or unavailable.
type Catalog struct {
	api    ProductLookup
	logger *zap.Logger
	clean  func(string) template.HTML
}

// NewCatalog builds a catalog. clean sanitises product description HTML.
func NewCatalog(api ProductLookup, clean func(string) template.HTML, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clean == nil {
		clean = func(s string) template.HTML { return template.HTML(template.HTMLEscapeString(s)) }
	}
	return &Catalog{api: api, logger: logger, clean: clean}
}

// ProductDetail returns the product for id. Numeric ids are looked up in
// the store when configured; ErrNotFound is returned only for products the
// store reports missing.
func (c *Catalog) ProductDetail(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrNotFound
	}
	numeric, err := strconv.ParseInt(id, 10, 64)
	if err != nil || numeric <= 0 || c.api == nil || !c.api.Configured() {
		return demoProduct(id), nil
	}

	item, err := c.api.Product(ctx, numeric)
	switch {
	case err == nil:
		return c.fromAPI(item), nil
	case errors.Is(err, ErrNotFound):
		return Product{}, ErrNotFound
	default:
		c.logger.Warn("product lookup failed; using demo product",
			zap.String("product_id", id),
			zap.Error(err),
		)
		return demoProduct(id), nil
	}
}

func (c *Catalog) fromAPI(item APIProduct) Product {
	p := Product{
		ID:             strconv.FormatInt(item.ID, 10),
		WidgetID:       item.ID,
		Name:           item.Name,
		Price:          item.Price,
		OriginalPrice:  item.CompareToPrice,
		Currency:       Currency,
		Description:    c.clean(item.Description),
		InStock:        item.InStock || item.Unlimited || item.Quantity > 0,
		StockCount:     item.Quantity,
		SKU:            item.SKU,
		Source:         "store",
		Specifications: make([]Spec, 0, len(item.Attributes)),
	}
	p.Images = productImages(item)
	for _, attr := range item.Attributes {
		name, value := strings.TrimSpace(attr.Name), strings.TrimSpace(attr.Value)
		if name == "" || value == "" {
			continue
		}
		if strings.EqualFold(name, "brand") {
			p.Brand = value
		}
		p.Specifications = append(p.Specifications, Spec{Name: name, Value: value})
	}
	return p
}

// productImages lists the main image then the gallery, each URL once.
func productImages(item APIProduct) []string {
	var out []string
	seen := make(map[string]bool, len(item.GalleryImages)+1)
	add := func(u string) {
		if u = strings.TrimSpace(u); u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	add(item.ImageURL)
	for _, img := range item.GalleryImages {
		add(img.URL)
	}
	return out
}
