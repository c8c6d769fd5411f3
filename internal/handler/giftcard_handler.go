package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/internal/service"
	"github.com/GTDGit/gtd_giftcards/internal/utils"
)

// SnapshotSource exposes the latest snapshot and the refresh trigger.
// *service.RefreshService satisfies it.
type SnapshotSource interface {
	Current() *models.Snapshot
	Trigger(ctx context.Context) uint64
}

// GiftCardHandler serves the processed gift card catalog.
type GiftCardHandler struct {
	source SnapshotSource
}

// NewGiftCardHandler creates a new GiftCardHandler.
func NewGiftCardHandler(source SnapshotSource) *GiftCardHandler {
	return &GiftCardHandler{source: source}
}

type giftCardListResponse struct {
	Generation      uint64            `json:"generation"`
	Phase           models.CyclePhase `json:"phase"`
	Currency        string            `json:"currency"`
	LocalPerUSD     float64           `json:"localPerUsd,omitempty"`
	DetailsTotal    int               `json:"detailsTotal"`
	DetailsResolved int               `json:"detailsResolved"`
	DetailsFailed   int               `json:"detailsFailed"`
	Error           string            `json:"error,omitempty"`
	UpdatedAt       string            `json:"updatedAt"`
	Records         []models.GiftCard `json:"records"`
}

const (
	defaultPageLimit = 100
	maxPageLimit     = 500
)

// List handles GET /v1/giftcards?page=&limit=
// Records are ranked by deal score, best first, then paginated.
func (h *GiftCardHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	snap := h.source.Current()

	records := service.RankByDealScore(snap.Records)
	total := len(records)

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := min(start+limit, total)

	utils.Success(c, http.StatusOK, "Gift cards retrieved", giftCardListResponse{
		Generation:      snap.Generation,
		Phase:           snap.Phase,
		Currency:        snap.Currency,
		LocalPerUSD:     snap.LocalPerUSD,
		DetailsTotal:    snap.DetailsTotal,
		DetailsResolved: snap.DetailsResolved,
		DetailsFailed:   snap.DetailsFailed,
		Error:           snap.Error,
		UpdatedAt:       snap.UpdatedAt.Format(timeLayout),
		Records:         records[start:end],
	}, utils.WithSnapshot(snap), utils.WithPagination(utils.NewPagination(page, limit, total)))
}

// Get handles GET /v1/giftcards/:id.
func (h *GiftCardHandler) Get(c *gin.Context) {
	snap := h.source.Current()
	record, ok := snap.FindRecord(c.Param("id"))
	if !ok {
		utils.Error(c, http.StatusNotFound, utils.ErrProductNotFound.Error(), "Gift card not found")
		return
	}
	utils.Success(c, http.StatusOK, "Gift card retrieved", record, utils.WithSnapshot(snap))
}

// Summary handles GET /v1/giftcards/summary.
func (h *GiftCardHandler) Summary(c *gin.Context) {
	snap := h.source.Current()
	utils.Success(c, http.StatusOK, "Summary retrieved", service.Summarize(snap), utils.WithSnapshot(snap))
}

// Refresh handles POST /v1/refresh. The cycle runs in the background; any
// cycle already in flight is superseded.
func (h *GiftCardHandler) Refresh(c *gin.Context) {
	generation := h.source.Trigger(c.Request.Context())

	log.Info().
		Str("request_id", c.GetString("request_id")).
		Uint64("generation", generation).
		Msg("Refresh triggered")

	utils.Success(c, http.StatusAccepted, "Refresh started", gin.H{
		"generation": generation,
	})
}
