package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_giftcards/internal/sse"
)

// SSEHandler streams snapshot updates as Server-Sent Events.
type SSEHandler struct {
	hub    *sse.Hub
	source SnapshotSource
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, source SnapshotSource) *SSEHandler {
	return &SSEHandler{hub: hub, source: source}
}

// Stream handles GET /v1/giftcards/stream.
// The current snapshot is sent first so a fresh client never waits for the
// next cycle.
func (h *SSEHandler) Stream(c *gin.Context) {
	clientID := "giftcards-" + uuid.New().String()[:8]

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"message":   "SSE connection established",
		"timestamp": time.Now().Format(time.RFC3339),
	})
	if initial, err := json.Marshal(sse.SnapshotToEvent(h.source.Current())); err == nil {
		c.SSEvent(string(sse.EventSnapshot), string(initial))
	}
	c.Writer.Flush()

	log.Info().Str("client_id", clientID).Str("ip", c.ClientIP()).Msg("Snapshot SSE stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(string(sse.EventSnapshot), string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
