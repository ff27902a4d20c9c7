package commerce

import "html/template"

func demoProduct(id string) Product {
	return Product{
		ID:               id,
		Name:             "Trek Fuel EX 9.7",
		Category:         "Mountain Bikes",
		Brand:            "Trek",
		Price:            4999,
		OriginalPrice:    5499,
		Currency:         Currency,
		Images:           []string{"/assets/images/mountain-bikes.png", "/assets/images/placeholder.jpg", "/assets/images/placeholder.jpg", "/assets/images/placeholder.jpg"},
		Rating:           4.8,
		Reviews:          124,
		Badge:            "Best Seller",
		ShortDescription: "Full suspension mountain bike with 130mm travel",
		Description: template.HTML("<p>The Trek Fuel EX 9.7 delivers trail-taming capability in a package that&#39;s built to cover serious ground. " +
			"Whether you&#39;re climbing technical singletrack or descending with speed, this bike gives you the confidence to push your limits.</p>"),
		InStock:    true,
		StockCount: 8,
		SKU:        "TREK-FEX97-2024",
		Specifications: []Spec{
			{Name: "Frame", Value: "Alpha Platinum Aluminum, Straight Shot down tube, Control Freak internal routing, Knock Block steerer tube, 130mm travel"},
			{Name: "Fork", Value: "RockShox Pike Select RC, DebonAir spring, Motion Control RC damper, 42mm offset, Boost110, 15mm Maxle Stealth, 140mm travel"},
			{Name: "Rear Shock", Value: "RockShox Deluxe Select, DebonAir spring, 205x60mm"},
			{Name: "Drivetrain", Value: "SRAM GX Eagle, 12-speed"},
			{Name: "Wheels", Value: "Bontrager Line Comp 30, Tubeless Ready"},
			{Name: "Tires", Value: `Bontrager XR4 Comp, 29x2.40", Tubeless Ready`},
			{Name: "Brakes", Value: "SRAM G2 R hydraulic disc, 180/160mm rotors"},
			{Name: "Weight", Value: "14.5 kg (32 lbs)"},
			{Name: "Sizes", Value: "S, M, L, XL"},
		},
		Features: []string{
			"130mm rear / 140mm front suspension",
			"SRAM GX Eagle 12-speed drivetrain",
			"Tubeless Ready wheels and tires",
			"Internal cable routing",
			"Boost spacing for added stiffness",
			"Lifetime frame warranty",
		},
		Related: []RelatedProduct{
			{ID: "giant-trance-x-29", Name: "Giant Trance X 29", Price: 3299, Image: "/assets/images/mountain-bikes.png"},
			{ID: "specialized-stumpjumper", Name: "Specialized Stumpjumper", Price: 3799, Image: "/assets/images/mountain-bikes.png"},
		},
		Source: "demo",
	}
}
