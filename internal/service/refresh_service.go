package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/internal/observability"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

// CatalogSource is the upstream marketplace as seen by the refresh cycle.
type CatalogSource interface {
	GetGiftCards(ctx context.Context) ([]bitrefill.GiftCard, error)
	GetProductDetails(ctx context.Context, productID string) (*bitrefill.ProductDetails, error)
	GetFXRates(ctx context.Context) (bitrefill.FXRates, error)
	Currency() string
}

// SnapshotPublisher receives every accepted snapshot, in generation order.
// Implementations must not block.
type SnapshotPublisher interface {
	PublishSnapshot(snap *models.Snapshot)
}

// RefreshService drives the refresh state machine. Each cycle gets a new
// generation; results from older generations are discarded.
type RefreshService struct {
	source            CatalogSource
	logos             *LogoResolver
	publishers        []SnapshotPublisher
	detailConcurrency int

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	current    *models.Snapshot
}

// NewRefreshService constructs a RefreshService. detailConcurrency bounds the
// number of in-flight detail fetches; zero or less fetches every product at once.
func NewRefreshService(source CatalogSource, logos *LogoResolver, detailConcurrency int, publishers ...SnapshotPublisher) *RefreshService {
	if logos == nil {
		logos = NewLogoResolver(nil)
	}
	if detailConcurrency < 0 {
		detailConcurrency = 0
	}
	return &RefreshService{
		source:            source,
		logos:             logos,
		publishers:        publishers,
		detailConcurrency: detailConcurrency,
		current: &models.Snapshot{
			Phase:     models.PhaseIdle,
			Currency:  source.Currency(),
			Records:   []models.GiftCard{},
			UpdatedAt: time.Now(),
		},
	}
}

// Current returns the latest accepted snapshot. Callers must not modify it.
func (s *RefreshService) Current() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh runs one full cycle and blocks until it settles or fails. A cycle
// that was overtaken by a newer one returns ErrCycleSuperseded.
func (s *RefreshService) Refresh(ctx context.Context) error {
	return s.run(s.begin(ctx))
}

// Trigger starts a cycle in the background and returns its generation.
func (s *RefreshService) Trigger(ctx context.Context) uint64 {
	c := s.begin(context.WithoutCancel(ctx))
	go func() {
		if err := s.run(c); err != nil && !errors.Is(err, ErrCycleSuperseded) {
			log.Error().Err(err).Uint64("generation", c.generation).Msg("Background refresh failed")
		}
	}()
	return c.generation
}

type cycle struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	currency   string
	startedAt  time.Time
}

// begin claims the next generation and cancels any in-flight cycle.
func (s *RefreshService) begin(parent context.Context) *cycle {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.current.Phase.IsBusy() {
		log.Info().
			Uint64("previous_generation", s.generation).
			Str("phase", string(s.current.Phase)).
			Msg("Superseding in-flight refresh")
	}
	s.generation++
	s.cancel = cancel

	return &cycle{
		ctx:        ctx,
		cancel:     cancel,
		generation: s.generation,
		currency:   s.source.Currency(),
		startedAt:  time.Now(),
	}
}

func (s *RefreshService) run(c *cycle) error {
	defer c.cancel()

	log.Info().Uint64("generation", c.generation).Msg("Refreshing gift card catalog...")

	s.publish(c, &models.Snapshot{
		Phase:    models.PhaseFetchingCatalog,
		Currency: c.currency,
		Records:  []models.GiftCard{},
	})

	var (
		cards []bitrefill.GiftCard
		rates bitrefill.FXRates
	)
	g, gctx := errgroup.WithContext(c.ctx)
	g.Go(func() error {
		var err error
		if cards, err = s.source.GetGiftCards(gctx); err != nil {
			return &FatalFetchError{Resource: "catalog", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rates, err = s.source.GetFXRates(gctx); err != nil {
			return &FatalFetchError{Resource: "fx rates", Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.fail(c, err)
	}
	cards = uniqueByID(cards, c.generation)

	processor, err := NewProcessor(rates, c.currency, s.logos)
	if err != nil {
		return s.fail(c, err)
	}

	records := make([]models.GiftCard, len(cards))
	for i := range cards {
		records[i] = processor.Process(cards[i], nil)
	}

	base := models.Snapshot{
		Currency:     c.currency,
		LocalPerUSD:  processor.LocalPerUSD(),
		DetailsTotal: len(cards),
	}

	basic := base
	basic.Phase = models.PhaseProcessingBasic
	basic.Records = records
	s.publish(c, &basic)

	log.Info().
		Uint64("generation", c.generation).
		Int("products", len(cards)).
		Float64("local_per_usd", processor.LocalPerUSD()).
		Msg("Basic catalog published")

	if len(cards) > 0 {
		pending := base
		pending.Phase = models.PhaseFetchingDetails
		pending.Records = records
		s.publish(c, &pending)

		var resolved, failed int
		for res := range s.fetchDetails(c.ctx, cards) {
			if res.err != nil {
				failed++
				observability.DetailFetchesTotal.WithLabelValues("failure").Inc()
				log.Warn().
					Err(&PartialDetailError{ProductID: cards[res.index].ID, Err: res.err}).
					Uint64("generation", c.generation).
					Msg("Commission unavailable")
			} else {
				resolved++
				observability.DetailFetchesTotal.WithLabelValues("success").Inc()

				next := make([]models.GiftCard, len(records))
				copy(next, records)
				next[res.index] = processor.Process(cards[res.index], res.detail)
				records = next
			}

			update := base
			update.Phase = models.PhaseFetchingDetails
			update.Records = records
			update.DetailsResolved = resolved
			update.DetailsFailed = failed
			s.publish(c, &update)
		}
		base.DetailsResolved = resolved
		base.DetailsFailed = failed
	}

	settled := base
	settled.Phase = models.PhaseSettled
	settled.Records = records
	if !s.publish(c, &settled) {
		return ErrCycleSuperseded
	}

	elapsed := time.Since(c.startedAt)
	observability.RefreshCyclesTotal.WithLabelValues("settled").Inc()
	observability.RefreshCycleDuration.Observe(elapsed.Seconds())
	log.Info().
		Uint64("generation", c.generation).
		Int("products", len(records)).
		Int("details_resolved", base.DetailsResolved).
		Int("details_failed", base.DetailsFailed).
		Dur("duration", elapsed).
		Msg("Refresh completed")
	return nil
}

// fail publishes the failed phase for c. The error is returned as-is unless a
// newer cycle has already taken over.
func (s *RefreshService) fail(c *cycle, err error) error {
	ok := s.publish(c, &models.Snapshot{
		Phase:    models.PhaseFailed,
		Currency: c.currency,
		Records:  []models.GiftCard{},
		Error:    err.Error(),
	})
	if !ok {
		return ErrCycleSuperseded
	}

	observability.RefreshCyclesTotal.WithLabelValues("failed").Inc()
	log.Error().Err(err).Uint64("generation", c.generation).Msg("Refresh failed")
	return err
}

type detailResult struct {
	index  int
	detail *bitrefill.ProductDetails
	err    error
}

// fetchDetails fans out one fetch per card, bounded by detailConcurrency when
// it is set. The returned channel is closed once every fetch has reported.
func (s *RefreshService) fetchDetails(ctx context.Context, cards []bitrefill.GiftCard) <-chan detailResult {
	results := make(chan detailResult)

	go func() {
		defer close(results)

		var g errgroup.Group
		if s.detailConcurrency > 0 {
			g.SetLimit(s.detailConcurrency)
		}
		for i := range cards {
			g.Go(func() error {
				detail, err := s.source.GetProductDetails(ctx, cards[i].ID)
				results <- detailResult{index: i, detail: detail, err: err}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return results
}

// uniqueByID drops repeated product ids, keeping the first occurrence.
func uniqueByID(cards []bitrefill.GiftCard, generation uint64) []bitrefill.GiftCard {
	seen := make(map[string]struct{}, len(cards))
	unique := make([]bitrefill.GiftCard, 0, len(cards))
	for _, card := range cards {
		if _, dup := seen[card.ID]; dup {
			continue
		}
		seen[card.ID] = struct{}{}
		unique = append(unique, card)
	}
	if dropped := len(cards) - len(unique); dropped > 0 {
		log.Warn().
			Uint64("generation", generation).
			Int("duplicates", dropped).
			Msg("Dropped duplicate catalog entries")
	}
	return unique
}

// publish accepts snap only if c is still the newest cycle.
func (s *RefreshService) publish(c *cycle, snap *models.Snapshot) bool {
	snap.Generation = c.generation
	snap.UpdatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.generation != s.generation {
		observability.StaleUpdatesDropped.Inc()
		log.Debug().
			Uint64("generation", c.generation).
			Uint64("current_generation", s.generation).
			Str("phase", string(snap.Phase)).
			Msg("Dropping stale update")
		return false
	}

	s.current = snap
	observability.ProductsTracked.Set(float64(len(snap.Records)))
	for _, p := range s.publishers {
		p.PublishSnapshot(snap)
	}
	return true
}
