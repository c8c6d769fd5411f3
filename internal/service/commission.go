package service

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

// CalculateCommission derives the markup of each package over its face value.
//
//   - no detail or no packages: unknown
//   - packages with face value <= 0 are excluded
//   - cost prefers the local minor-unit price, else usdPrice * localPerUSD
//   - rate = (cost - face) / face * 100, rounded to 2 decimals
//
// A single distinct rate collapses to a uniform commission; otherwise the
// per-package list is returned ordered by face value.
func CalculateCommission(detail *bitrefill.ProductDetails, localPerUSD float64) models.Commission {
	if detail == nil || len(detail.Packages) == 0 {
		return models.UnknownCommission()
	}

	details := make([]models.CommissionDetail, 0, len(detail.Packages))
	for _, pkg := range detail.Packages {
		face := pkg.Amount
		if face <= 0 || math.IsNaN(face) {
			continue
		}

		var cost float64
		if pkg.LocalPrice != nil {
			cost = float64(*pkg.LocalPrice) / 100
		} else {
			cost = pkg.USDPrice * localPerUSD
		}

		details = append(details, models.CommissionDetail{
			FaceValue:      face,
			CommissionRate: roundTo((cost-face)/face*100, 2),
			CostInLocal:    roundTo(cost, 2),
		})
	}

	// Every package was excluded: there is nothing to report.
	if len(details) == 0 {
		return models.UnknownCommission()
	}

	sort.SliceStable(details, func(i, j int) bool {
		return details[i].FaceValue < details[j].FaceValue
	})

	if distinctRates(details) == 1 {
		return models.UniformCommission(details[0].CommissionRate)
	}
	return models.PerPackageCommission(details)
}

func distinctRates(details []models.CommissionDetail) int {
	seen := make(map[float64]struct{}, len(details))
	for _, d := range details {
		seen[d.CommissionRate] = struct{}{}
	}
	return len(seen)
}

// roundTo rounds half away from zero to the given number of decimal places.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r := decimal.NewFromFloat(v).Round(places).InexactFloat64()
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}
