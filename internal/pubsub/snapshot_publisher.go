package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_giftcards/internal/models"
)

const (
	publishTimeout = 2 * time.Second
	queueSize      = 32
)

// backend is the subset of RedisClient the publisher needs.
type backend interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// SnapshotPublisher fans accepted snapshots out over Redis PUBLISH. Nothing is
// stored; subscribers that connect late wait for the next snapshot.
//
// PublishSnapshot only enqueues; Run performs the network calls.
type SnapshotPublisher struct {
	redis   backend
	channel string
	queue   chan []byte
}

// NewSnapshotPublisher creates a publisher for channel.
func NewSnapshotPublisher(redis *RedisClient, channel string) *SnapshotPublisher {
	return newSnapshotPublisher(redis, channel)
}

func newSnapshotPublisher(b backend, channel string) *SnapshotPublisher {
	return &SnapshotPublisher{
		redis:   b,
		channel: channel,
		queue:   make(chan []byte, queueSize),
	}
}

// PublishSnapshot enqueues snap. Drops it when the queue is full.
func (p *SnapshotPublisher) PublishSnapshot(snap *models.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Error().Err(err).Uint64("generation", snap.Generation).Msg("Failed to marshal snapshot")
		return
	}

	select {
	case p.queue <- payload:
	default:
		log.Warn().Uint64("generation", snap.Generation).Str("phase", string(snap.Phase)).Msg("Redis publish queue full, dropping snapshot")
	}
}

// Run drains the queue until ctx is cancelled.
func (p *SnapshotPublisher) Run(ctx context.Context) {
	log.Info().Str("channel", p.channel).Msg("Starting Redis snapshot publisher")

	for {
		select {
		case payload := <-p.queue:
			p.send(ctx, payload)
		case <-ctx.Done():
			log.Info().Msg("Redis snapshot publisher stopped")
			return
		}
	}
}

func (p *SnapshotPublisher) send(ctx context.Context, payload []byte) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.redis.Publish(ctx, p.channel, payload); err != nil {
		log.Warn().Err(err).Str("channel", p.channel).Msg("Failed to publish snapshot")
	}
}
