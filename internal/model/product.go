package model

// ProductDetails is the structured decomposition of a free-text product
// description. Model is family-specific free text ("iPhone 15 Pro Max")
// before canonicalization.
type ProductDetails struct {
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Storage   string `json:"storage,omitempty"`
	Color     string `json:"color,omitempty"`
	Condition string `json:"condition,omitempty"`
	Extra     string `json:"extra,omitempty"`
	Region    string `json:"region,omitempty"`
}

// RawProduct is one product extracted from one line or block of a document.
// Code is processor-local until the pipeline replaces it with the
// normalized key.
type RawProduct struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Source      string          `json:"source"`
	Details     *ProductDetails `json:"details,omitempty"`
}

type PriceEntry struct {
	Source string  `json:"source"`
	Price  float64 `json:"price"`
}

// ComparisonResult aggregates every observed price for one normalized key.
// AllPrices is kept sorted ascending and BestPrice always equals its minimum.
type ComparisonResult struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	BestPrice   float64         `json:"bestPrice"`
	BestSource  string          `json:"bestSource"`
	AllPrices   []PriceEntry    `json:"allPrices"`
	Details     *ProductDetails `json:"details,omitempty"`
}
