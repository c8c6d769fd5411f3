package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_giftcards/internal/models"
)

func statsSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Generation: 3,
		Phase:      models.PhaseSettled,
		Currency:   "INR",
		Records: []models.GiftCard{
			{ID: "a", Commission: models.UniformCommission(2), StockStatus: models.StockInStock, DealScore: 6.8},
			{ID: "b", Commission: models.PerPackageCommission([]models.CommissionDetail{
				{FaceValue: 100, CommissionRate: 1},
				{FaceValue: 500, CommissionRate: 3},
			}), StockStatus: models.StockInStock, DealScore: 7.4},
			{ID: "c", Commission: models.UnknownCommission(), StockStatus: models.StockInStock, DealScore: 4.7},
			{ID: "d", Commission: models.UniformCommission(-5), StockStatus: models.StockOutOfStock, DealScore: 12},
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(statsSnapshot())

	assert.Equal(t, uint64(3), sum.Generation)
	assert.Equal(t, 4, sum.TotalProducts)
	assert.Equal(t, 3, sum.ActiveProducts)
	require.NotNil(t, sum.AverageCommission)
	assert.InDelta(t, 2.0, *sum.AverageCommission, 1e-9)
	require.NotNil(t, sum.BestDeal)
	assert.Equal(t, "b", sum.BestDeal.ID)
}

func TestSummarize_Empty(t *testing.T) {
	sum := Summarize(&models.Snapshot{Phase: models.PhaseIdle})
	assert.Nil(t, sum.AverageCommission)
	assert.Nil(t, sum.BestDeal)
	assert.Zero(t, sum.ActiveProducts)
}

func TestRankByDealScore(t *testing.T) {
	snap := statsSnapshot()
	ranked := RankByDealScore(snap.Records)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
	assert.Equal(t, "a", snap.Records[0].ID, "input order must be untouched")
}
