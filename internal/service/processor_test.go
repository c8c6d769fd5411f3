package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

func inrRates() bitrefill.FXRates {
	return bitrefill.FXRates{"INR": {USD: ptr(1 / 88.3), EUR: ptr(0.0104)}}
}

func zomatoCard() bitrefill.GiftCard {
	return bitrefill.GiftCard{
		ID:          "zomato-india",
		Name:        "Zomato India",
		PriceRange:  "100 - 10000 INR",
		RatingValue: 4.5,
		ReviewCount: 120,
		Currency:    "INR",
		Categories:  []string{"food"},
		LogoPreview: "https://cdn.example/zomato.png",
	}
}

func zomatoDetail() *bitrefill.ProductDetails {
	return &bitrefill.ProductDetails{
		ID: "zomato-india",
		Packages: []bitrefill.Package{
			{Value: "100", Amount: 100, USDPrice: 1.1461},
			{Value: "500", Amount: 500, USDPrice: 5.6625},
		},
	}
}

func TestProcessor_Process(t *testing.T) {
	p, err := NewProcessor(inrRates(), "INR", nil)
	require.NoError(t, err)
	assert.InDelta(t, 88.3, p.LocalPerUSD(), 1e-9)

	rec := p.Process(zomatoCard(), zomatoDetail())

	assert.Equal(t, "zomato-india", rec.ID)
	assert.Equal(t, "Zomato India", rec.Name)
	assert.Equal(t, "100 - 10000 INR", rec.PriceRange)
	assert.Equal(t, models.StockInStock, rec.StockStatus)
	assert.Equal(t, []string{"food"}, rec.Categories)
	assert.Equal(t, LogoURL("zomato.com"), rec.LogoURL)

	require.Equal(t, models.CommissionPerPackage, rec.Commission.Kind)
	require.Len(t, rec.Commission.Packages, 2)
	assert.InDelta(t, 1.2, rec.Commission.Packages[0].CommissionRate, 1e-9)
	assert.InDelta(t, 0.0, rec.Commission.Packages[1].CommissionRate, 1e-9)
	assert.InDelta(t, 7.9, rec.DealScore, 1e-9)
}

func TestProcessor_BasicRecord(t *testing.T) {
	p, err := NewProcessor(inrRates(), "INR", nil)
	require.NoError(t, err)

	rec := p.Process(zomatoCard(), nil)
	assert.False(t, rec.Commission.IsKnown())
	assert.Equal(t, "N/A", rec.Commission.String())
	// 5 * 0.7 + 4.5 * 0.3
	assert.InDelta(t, 4.9, rec.DealScore, 1e-9)
}

func TestProcessor_LogoFallback(t *testing.T) {
	p, err := NewProcessor(inrRates(), "INR", nil)
	require.NoError(t, err)

	card := zomatoCard()
	card.Name = "Local Bakery"
	assert.Equal(t, "https://cdn.example/zomato.png", p.Process(card, nil).LogoURL)

	card.LogoPreview = ""
	card.IconPreview = "https://cdn.example/icon.png"
	assert.Equal(t, "https://cdn.example/icon.png", p.Process(card, nil).LogoURL)
}

func TestProcessor_DoesNotAliasInput(t *testing.T) {
	p, err := NewProcessor(inrRates(), "INR", nil)
	require.NoError(t, err)

	card := zomatoCard()
	rec := p.Process(card, nil)
	card.Categories[0] = "changed"
	assert.Equal(t, []string{"food"}, rec.Categories)
}

func TestNewProcessor_MissingRate(t *testing.T) {
	_, err := NewProcessor(inrRates(), "IDR", nil)
	var missing *MissingRateError
	assert.True(t, errors.As(err, &missing))
}
