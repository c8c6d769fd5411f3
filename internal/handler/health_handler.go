package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/internal/utils"
)

const timeLayout = time.RFC3339

var startTime = time.Now()

// HealthHandler provides health endpoint.
type HealthHandler struct {
	source     SnapshotSource
	strategies []string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(source SnapshotSource, strategies []string) *HealthHandler {
	return &HealthHandler{source: source, strategies: strategies}
}

// GetHealth responds with uptime and the state of the refresh cycle. A failed
// cycle still answers 200; the catalog is degraded, not the service.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	snap := h.source.Current()

	status := "healthy"
	if snap.Phase == models.PhaseFailed {
		status = "degraded"
	}

	utils.Success(c, http.StatusOK, "Service is healthy", gin.H{
		"status":  status,
		"version": "1.0.0",
		"uptime":  int(time.Since(startTime).Seconds()),
		"refresh": gin.H{
			"generation": snap.Generation,
			"phase":      snap.Phase,
			"products":   len(snap.Records),
			"updatedAt":  snap.UpdatedAt.Format(timeLayout),
			"error":      snap.Error,
		},
		"proxyStrategies": h.strategies,
	}, utils.WithSnapshot(snap))
}
