package bitrefill

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	// BaseURL is the public Bitrefill API base URL.
	BaseURL = "https://www.bitrefill.com/api"
)

// Config holds the catalog market the client reads.
type Config struct {
	BaseURL  string
	Country  string
	Currency string
}

// Client is a read-only client for the public Bitrefill catalog API. Every call
// goes through the Fetcher's proxy strategies.
type Client struct {
	fetcher *Fetcher
	config  Config
}

// NewClient constructs a Client with defaults for the Indian market.
func NewClient(config Config, fetcher *Fetcher) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Country == "" {
		config.Country = "IN"
	}
	if config.Currency == "" {
		config.Currency = "INR"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if fetcher == nil {
		fetcher = NewFetcher(nil, 0)
	}
	return &Client{fetcher: fetcher, config: config}
}

// Currency returns the local currency the catalog is filtered to.
func (c *Client) Currency() string {
	return c.config.Currency
}

// GetGiftCards returns all gift cards for the configured country whose
// currency matches the configured currency.
func (c *Client) GetGiftCards(ctx context.Context) ([]GiftCard, error) {
	target := c.config.BaseURL + "/omni?c=all-gift-cards&country=" + url.QueryEscape(c.config.Country)

	var resp CatalogResponse
	if err := c.fetcher.Fetch(ctx, target, &resp); err != nil {
		return nil, err
	}

	cards := make([]GiftCard, 0, len(resp.Products))
	for _, card := range resp.Products {
		if card.Currency == c.config.Currency {
			cards = append(cards, card)
		}
	}

	log.Debug().
		Int("received", len(resp.Products)).
		Int("kept", len(cards)).
		Str("currency", c.config.Currency).
		Msg("[BITREFILL] Catalog fetched")
	return cards, nil
}

// GetProductDetails returns the detail record, including packages, for one product.
func (c *Client) GetProductDetails(ctx context.Context, productID string) (*ProductDetails, error) {
	var details ProductDetails
	if err := c.fetcher.Fetch(ctx, c.config.BaseURL+"/product/"+url.PathEscape(productID), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// GetFXRates returns the exchange-rate table.
func (c *Client) GetFXRates(ctx context.Context) (FXRates, error) {
	var rates FXRates
	if err := c.fetcher.Fetch(ctx, c.config.BaseURL+"/accounts/fx_rates", &rates); err != nil {
		return nil, err
	}
	return rates, nil
}
