package service

import (
	"sort"

	"github.com/GTDGit/gtd_giftcards/internal/models"
)

// Summary is the dashboard header for one snapshot.
type Summary struct {
	Generation        uint64            `json:"generation"`
	Phase             models.CyclePhase `json:"phase"`
	Currency          string            `json:"currency"`
	TotalProducts     int               `json:"totalProducts"`
	ActiveProducts    int               `json:"activeProducts"`
	AverageCommission *float64          `json:"averageCommission"`
	BestDeal          *models.GiftCard  `json:"bestDeal"`
}

// Summarize computes the header statistics. The average commission covers
// in-stock products with a known commission and is nil when none qualify.
func Summarize(snap *models.Snapshot) Summary {
	sum := Summary{
		Generation:    snap.Generation,
		Phase:         snap.Phase,
		Currency:      snap.Currency,
		TotalProducts: len(snap.Records),
	}

	var total float64
	var counted int
	for i := range snap.Records {
		r := snap.Records[i]
		if r.StockStatus != models.StockInStock {
			continue
		}
		sum.ActiveProducts++
		if mean, ok := r.Commission.Mean(); ok {
			total += mean
			counted++
		}
		if sum.BestDeal == nil || r.DealScore > sum.BestDeal.DealScore {
			best := r
			sum.BestDeal = &best
		}
	}
	if counted > 0 {
		avg := roundTo(total/float64(counted), 2)
		sum.AverageCommission = &avg
	}
	return sum
}

// RankByDealScore returns a copy of records ordered by deal score, highest
// first. Ties keep catalog order.
func RankByDealScore(records []models.GiftCard) []models.GiftCard {
	ranked := make([]models.GiftCard, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DealScore > ranked[j].DealScore
	})
	return ranked
}
