package cms

// FallbackSiteSettings returns the settings used whenever the CMS is
// unconfigured, unreachable or silent about a section.
func FallbackSiteSettings() SiteSettings {
	return SiteSettings{
		Title: "Cranks Bike Shop",
		ContactInfo: ContactInfo{
			Phone:   "02 9417 3776",
			Email:   "sales@cranks.com.au",
			Address: "352A Penshurst Street, Chatswood, NSW 2067",
		},
		BusinessHours: BusinessHours{
			Weekdays: "Mon - Fri: 9am - 5pm",
			Saturday: "Saturday: 9am - 4pm",
			Sunday:   "Sunday: 9am - 3pm",
		},
		HeaderMessage: "Free service within first 3 months",
		Navigation: []NavItem{
			{Title: "Home", Href: "/"},
			{Title: "Shop", Href: "/shop"},
			{Title: "All Bikes", Href: "/shop?category=All%20Bikes"},
			{Title: "E-Bikes", Href: "/shop?category=E-Bikes"},
			{Title: "Parts", Href: "/shop?category=Parts"},
			{Title: "Sale", Href: "/shop?category=Sale", IsSpecial: true},
			{Title: "Services", Href: "/our-services/"},
		},
		SocialMedia: SocialLinks{
			Facebook:  "https://facebook.com/cranksbikes",
			Instagram: "https://instagram.com/cranksbikes",
			Twitter:   "https://twitter.com/cranksbikes",
		},
	}
}

var fallbackServices = []Service{
	{
		Slug:    "basic-service",
		Title:   "Basic Service",
		Pricing: "From $95 to $145",
		Icon:    "wrench",
		Features: []string{
			"Clean bike (price depends on state of bike)",
			"Check over and adjust/replace brakes, cables (parts extra)",
			"Check and adjust/replace bottom bracket, headset (parts extra)",
			"Advise any major expenses (eg tyres, worn parts)",
			"Lubricate chain, cables, derailleurs",
			"Straighten derailleurs, hangers as necessary",
			"Adjust gears",
			"Minor wheel truing",
		},
		Summary:         "Clean bike, check and adjust brakes, cables, gears, and minor wheel truing",
		BookingRequired: true,
		Featured:        true,
		Order:           1,
	},
	{
		Slug:    "clean-and-degrease",
		Title:   "Clean & Degrease",
		Pricing: "From $220",
		Icon:    "sparkles",
		Features: []string{
			"As for Basic service, plus:",
			"Strip and degrease of the following:",
			"Drive train",
			"Derailleurs",
			"Brakes",
			"Full lubrication of all required areas.",
		},
		Summary:         "Basic service plus a strip and degrease of the drive train, derailleurs and brakes",
		BookingRequired: true,
		Order:           2,
	},
	{
		Slug:    "full-service",
		Title:   "Full Service",
		Pricing: "From $280 to $350",
		Icon:    "settings",
		Features: []string{
			"As for",
			"Basic Service",
			"Clean and degrease",
			"But also including the following:",
			"Complete strip and degrease bottom bracket & head set",
			"Brake fluid change (if required)",
		},
		Summary:         "Complete bike service including strip and degrease",
		BookingRequired: true,
		Featured:        true,
		Order:           3,
	},
	{
		Slug:  "electronic-gear-service",
		Title: "Electronic Gear Service",
		Icon:  "zap",
		Features: []string{
			"Upgrade firmware – $35",
			"Diagnose problems (includes upgrading firmware) – $65",
			"Full check and adjust (includes upgrade and diagnose) – $85",
		},
		Summary:         "Firmware upgrades and diagnostics for electronic shifting systems",
		BookingRequired: true,
		Featured:        true,
		Order:           4,
	},
	{
		Slug:    "mechanical-gears",
		Title:   "Mechanical Gears",
		Pricing: "From $50",
		Icon:    "cog",
		Features: []string{
			"Check and lubricate cables – replace as necessary",
			"Straighten hanger and derailleurs as necessary",
			"Lubricate derailleurs",
			"Adjust gears",
		},
		Summary: "Cable, hanger and derailleur check with a gear adjustment",
		Order:   5,
	},
	{
		Slug:     "child-bike-service",
		Title:    "Child Bike Service",
		Pricing:  "$50",
		Subtitle: "Child bike has no gears",
		Icon:     "bike",
		Features: []string{
			"Clean bike",
			"Check and adjust brakes, chain",
			"Lubricate chain, cables",
		},
		Summary: "Clean, brake and chain check for kids' bikes without gears",
		Order:   6,
	},
}

func fallbackHome() HomePage {
	return HomePage{
		Title:          "Cranks Bike Shop - Premium Bikes, Expert Service & Cycling Gear | Chatswood",
		HeroTitle:      "Ride Your Adventure",
		HeroSubtitle:   "Discover premium bikes, expert service, and everything you need for your cycling journey. From mountain trails to city streets.",
		HeroImage:      Image{URL: "/assets/images/hero-slider-1.png", Alt: "Mountain biking adventure"},
		AboutPreview:   "Your trusted local bike shop in Chatswood for premium bikes, expert service, and cycling gear. Serving North Shore Sydney for 30+ years.",
		SEODescription: "Your trusted local bike shop in Chatswood for premium bikes, expert repairs, and cycling gear. Mountain bikes, road bikes, e-bikes, parts, and accessories. Serving North Shore Sydney for 30+ years.",
	}
}
