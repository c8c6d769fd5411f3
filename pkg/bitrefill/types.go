package bitrefill

// LabelOutOfStock is the catalog label Bitrefill sets on unavailable products.
const LabelOutOfStock = "out_of_stock"

// CatalogResponse is the payload of the omni catalog endpoint.
type CatalogResponse struct {
	Products []GiftCard `json:"products"`
}

// GiftCard is a single catalog entry as returned by the omni endpoint.
type GiftCard struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	BaseName    string   `json:"baseName"`
	PriceRange  string   `json:"_priceRange"`
	RatingValue float64  `json:"_ratingValue"`
	ReviewCount int      `json:"_reviewCount"`
	Currency    string   `json:"currency"`
	CountryCode string   `json:"countryCode"`
	Label       string   `json:"label"`
	Categories  []string `json:"categories"`
	IconPreview string   `json:"iconPreview,omitempty"`
	LogoPreview string   `json:"logoPreview,omitempty"`
}

// ProductDetails is the payload of the product endpoint. It repeats the catalog
// identity fields and adds the purchasable packages.
type ProductDetails struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	BaseName    string    `json:"baseName"`
	PriceRange  string    `json:"_priceRange"`
	RatingValue float64   `json:"_ratingValue"`
	ReviewCount int       `json:"_reviewCount"`
	Currency    string    `json:"currency"`
	CountryCode string    `json:"countryCode"`
	Label       string    `json:"label"`
	Categories  []string  `json:"categories"`
	Packages    []Package `json:"packages"`
	OutOfStock  bool      `json:"outOfStock"`
	IconPreview string    `json:"iconPreview,omitempty"`
	LogoPreview string    `json:"logoPreview,omitempty"`
}

// Package is one purchasable denomination of a product.
//
// Value is a display label and may contain non-numeric tokens ("100 + 10 bonus");
// the face value always comes from Amount.
type Package struct {
	Value    string  `json:"value"`
	Amount   float64 `json:"amount"`
	USDPrice float64 `json:"usdPrice"`
	EURPrice float64 `json:"eurPrice"`
	EURValue float64 `json:"eurValue"`
	// LocalPrice is the price in minor units of the product currency (paise for INR).
	LocalPrice *int64 `json:"localPrice,omitempty"`
}

// FXRate holds the multipliers of one currency against USD, EUR and BTC.
type FXRate struct {
	USD *float64 `json:"USD"`
	EUR *float64 `json:"EUR"`
	BTC *float64 `json:"BTC"`
}

// FXRates maps a currency code to its exchange multipliers.
type FXRates map[string]FXRate
