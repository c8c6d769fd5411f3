package service

import (
	"math"

	"github.com/GTDGit/gtd_giftcards/internal/models"
)

const (
	// neutralCommission stands in for an unknown commission when scoring.
	neutralCommission = 5.0

	commissionWeight = 0.7
	ratingWeight     = 0.3
)

// DealScore ranks a product: lower commission and higher rating score higher.
//
//	score = max(0, 10 - commission) * 0.7 + max(0, rating) * 0.3
//
// The score is not clamped. A discount (negative commission) can exceed 10.
func DealScore(commission models.Commission, rating float64) float64 {
	value, ok := commission.Mean()
	if !ok {
		value = neutralCommission
	}

	score := math.Max(0, 10-value)*commissionWeight + math.Max(0, rating)*ratingWeight
	return roundTo(score, 1)
}
