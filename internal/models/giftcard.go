package models

import "time"

// StockStatus is the resolved availability of a gift card.
type StockStatus string

const (
	StockInStock    StockStatus = "In Stock"
	StockOutOfStock StockStatus = "Out of Stock"
)

// GiftCard is the processed, display-ready record for one catalog product.
// Records are rebuilt whenever new detail arrives and never mutated afterwards.
type GiftCard struct {
	ID          string      `json:"id"`
	Name        string      `json:"productName"`
	PriceRange  string      `json:"priceRange"`
	LocalPerUSD float64     `json:"localPerUsd"`
	Commission  Commission  `json:"commission"`
	StockStatus StockStatus `json:"stockStatus"`
	RatingValue float64     `json:"ratingValue"`
	ReviewCount int         `json:"reviewCount"`
	Categories  []string    `json:"categories"`
	LogoURL     string      `json:"logoUrl,omitempty"`
	DealScore   float64     `json:"bestDealScore"`
}

// CyclePhase is a state of the refresh state machine.
type CyclePhase string

const (
	PhaseIdle            CyclePhase = "idle"
	PhaseFetchingCatalog CyclePhase = "fetching_catalog"
	PhaseProcessingBasic CyclePhase = "processing_basic"
	PhaseFetchingDetails CyclePhase = "fetching_details"
	PhaseSettled         CyclePhase = "settled"
	PhaseFailed          CyclePhase = "failed"
)

// IsBusy reports whether a cycle is in flight.
func (p CyclePhase) IsBusy() bool {
	return p != PhaseIdle && p != PhaseSettled && p != PhaseFailed
}

// Snapshot is an immutable view of one refresh cycle's record set. Every
// publish allocates a new Snapshot and a new Records slice.
type Snapshot struct {
	Generation      uint64     `json:"generation"`
	Phase           CyclePhase `json:"phase"`
	Currency        string     `json:"currency"`
	LocalPerUSD     float64    `json:"localPerUsd,omitempty"`
	Records         []GiftCard `json:"records"`
	DetailsTotal    int        `json:"detailsTotal"`
	DetailsResolved int        `json:"detailsResolved"`
	DetailsFailed   int        `json:"detailsFailed"`
	Error           string     `json:"error,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// FindRecord returns the record with the given product id.
func (s *Snapshot) FindRecord(id string) (GiftCard, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return GiftCard{}, false
}
