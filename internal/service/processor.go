package service

import (
	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

// Processor turns raw catalog entries into display records. The FX multiplier
// is normalized once per cycle.
type Processor struct {
	currency    string
	localPerUSD float64
	logos       *LogoResolver
}

// NewProcessor normalizes the FX table for currency. It fails with a
// *MissingRateError when the table has no usable rate.
func NewProcessor(rates bitrefill.FXRates, currency string, logos *LogoResolver) (*Processor, error) {
	localPerUSD, err := LocalPerUSD(rates, currency)
	if err != nil {
		return nil, err
	}
	if logos == nil {
		logos = NewLogoResolver(nil)
	}
	return &Processor{currency: currency, localPerUSD: localPerUSD, logos: logos}, nil
}

// LocalPerUSD returns local currency units per 1 USD.
func (p *Processor) LocalPerUSD() float64 {
	return p.localPerUSD
}

// Process builds a fresh record for card. detail may be nil, in which case the
// commission is unknown.
func (p *Processor) Process(card bitrefill.GiftCard, detail *bitrefill.ProductDetails) models.GiftCard {
	commission := CalculateCommission(detail, p.localPerUSD)

	logo := p.logos.Resolve(card.Name)
	if logo == "" {
		logo = card.LogoPreview
	}
	if logo == "" {
		logo = card.IconPreview
	}

	return models.GiftCard{
		ID:          card.ID,
		Name:        card.Name,
		PriceRange:  card.PriceRange,
		LocalPerUSD: p.localPerUSD,
		Commission:  commission,
		StockStatus: ResolveStock(card, detail),
		RatingValue: card.RatingValue,
		ReviewCount: card.ReviewCount,
		Categories:  append([]string{}, card.Categories...),
		LogoURL:     logo,
		DealScore:   DealScore(commission, card.RatingValue),
	}
}
