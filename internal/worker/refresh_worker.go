package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_giftcards/internal/service"
)

// Refresher runs one refresh cycle to completion.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshWorker periodically refreshes the gift card catalog.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
}

// NewRefreshWorker constructs a RefreshWorker.
func NewRefreshWorker(refresher Refresher, interval time.Duration) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Start begins the periodic refresh loop and listens for context cancellation.
// With a zero interval only the initial refresh runs.
func (w *RefreshWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting refresh worker")

	// Run immediately on start
	w.run(ctx)

	if w.interval <= 0 {
		log.Info().Msg("Periodic refresh disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Refresh worker stopped")
			return
		}
	}
}

func (w *RefreshWorker) run(ctx context.Context) {
	start := time.Now()
	err := w.refresher.Refresh(ctx)
	switch {
	case err == nil:
		log.Info().Dur("duration", time.Since(start)).Msg("Scheduled refresh completed")
	case errors.Is(err, service.ErrCycleSuperseded):
		log.Info().Msg("Scheduled refresh superseded by a manual one")
	case ctx.Err() != nil:
		// shutting down
	default:
		log.Error().Err(err).Msg("Scheduled refresh failed")
	}
}
