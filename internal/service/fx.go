package service

import (
	"fmt"

	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

// MissingRateError means the FX table has no usable USD multiplier for the
// local currency. No commission can be computed without it.
type MissingRateError struct {
	Currency string
	Reason   string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("missing FX rate for %s: %s", e.Currency, e.Reason)
}

// LocalPerUSD inverts the local-currency→USD multiplier into "local units per
// 1 USD".
func LocalPerUSD(rates bitrefill.FXRates, currency string) (float64, error) {
	rate, ok := rates[currency]
	if !ok {
		return 0, &MissingRateError{Currency: currency, Reason: "currency not in table"}
	}
	if rate.USD == nil {
		return 0, &MissingRateError{Currency: currency, Reason: "USD field absent"}
	}
	if *rate.USD <= 0 {
		return 0, &MissingRateError{Currency: currency, Reason: fmt.Sprintf("non-positive USD rate %v", *rate.USD)}
	}
	return 1 / *rate.USD, nil
}
