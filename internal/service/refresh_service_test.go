package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_giftcards/internal/models"
	"github.com/GTDGit/gtd_giftcards/pkg/bitrefill"
)

type fakeSource struct {
	cards      []bitrefill.GiftCard
	catalogErr error
	rates      bitrefill.FXRates
	ratesErr   error
	details    func(ctx context.Context, id string) (*bitrefill.ProductDetails, error)
}

func (f *fakeSource) GetGiftCards(context.Context) ([]bitrefill.GiftCard, error) {
	return f.cards, f.catalogErr
}

func (f *fakeSource) GetFXRates(context.Context) (bitrefill.FXRates, error) {
	return f.rates, f.ratesErr
}

func (f *fakeSource) GetProductDetails(ctx context.Context, id string) (*bitrefill.ProductDetails, error) {
	return f.details(ctx, id)
}

func (f *fakeSource) Currency() string { return "INR" }

type recorder struct {
	mu    sync.Mutex
	snaps []*models.Snapshot
}

func (r *recorder) PublishSnapshot(snap *models.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
}

func (r *recorder) all() []*models.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Snapshot(nil), r.snaps...)
}

func twoCards() []bitrefill.GiftCard {
	swiggy := zomatoCard()
	swiggy.ID = "swiggy-india"
	swiggy.Name = "Swiggy Money India"
	return []bitrefill.GiftCard{zomatoCard(), swiggy}
}

func TestRefresh_BasicThenDetails(t *testing.T) {
	src := &fakeSource{
		cards: twoCards(),
		rates: inrRates(),
		details: func(_ context.Context, id string) (*bitrefill.ProductDetails, error) {
			if id == "zomato-india" {
				return zomatoDetail(), nil
			}
			return nil, errors.New("all proxy strategies failed")
		},
	}
	rec := &recorder{}
	svc := NewRefreshService(src, nil, 2, rec)

	require.NoError(t, svc.Refresh(context.Background()))

	snaps := rec.all()
	require.NotEmpty(t, snaps)
	assert.Equal(t, models.PhaseFetchingCatalog, snaps[0].Phase)

	basicAt, firstKnownAt := -1, -1
	for i, s := range snaps {
		assert.Equal(t, uint64(1), s.Generation)
		if s.Phase == models.PhaseProcessingBasic && basicAt < 0 {
			basicAt = i
			for _, r := range s.Records {
				assert.False(t, r.Commission.IsKnown(), "basic records carry no commission")
			}
		}
		if r, ok := s.FindRecord("zomato-india"); ok && r.Commission.IsKnown() && firstKnownAt < 0 {
			firstKnownAt = i
		}
	}
	require.GreaterOrEqual(t, basicAt, 0)
	require.Greater(t, firstKnownAt, basicAt)

	final := svc.Current()
	assert.Equal(t, models.PhaseSettled, final.Phase)
	assert.Equal(t, 2, final.DetailsTotal)
	assert.Equal(t, 1, final.DetailsResolved)
	assert.Equal(t, 1, final.DetailsFailed)
	assert.InDelta(t, 88.3, final.LocalPerUSD, 1e-9)

	zomato, ok := final.FindRecord("zomato-india")
	require.True(t, ok)
	assert.Equal(t, models.CommissionPerPackage, zomato.Commission.Kind)

	swiggy, ok := final.FindRecord("swiggy-india")
	require.True(t, ok)
	assert.Equal(t, models.CommissionUnknown, swiggy.Commission.Kind)
	assert.Equal(t, LogoURL("swiggy.com"), swiggy.LogoURL)
}

func TestRefresh_PublishedSnapshotsAreNotMutated(t *testing.T) {
	src := &fakeSource{
		cards: twoCards(),
		rates: inrRates(),
		details: func(context.Context, string) (*bitrefill.ProductDetails, error) {
			return zomatoDetail(), nil
		},
	}
	rec := &recorder{}
	svc := NewRefreshService(src, nil, 1, rec)
	require.NoError(t, svc.Refresh(context.Background()))

	for _, s := range rec.all() {
		if s.Phase != models.PhaseProcessingBasic {
			continue
		}
		for _, r := range s.Records {
			assert.False(t, r.Commission.IsKnown())
		}
	}
}

func TestRefresh_CatalogFailure(t *testing.T) {
	upstream := errors.New("boom")
	src := &fakeSource{catalogErr: upstream, rates: inrRates()}
	svc := NewRefreshService(src, nil, 2)

	err := svc.Refresh(context.Background())

	var fatal *FatalFetchError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, "catalog", fatal.Resource)
	assert.ErrorIs(t, err, upstream)

	snap := svc.Current()
	assert.Equal(t, models.PhaseFailed, snap.Phase)
	assert.Empty(t, snap.Records)
	assert.Contains(t, snap.Error, "boom")
}

func TestRefresh_FXFailure(t *testing.T) {
	upstream := errors.New("fx relay timeout")
	src := &fakeSource{cards: twoCards(), ratesErr: upstream}
	rec := &recorder{}
	svc := NewRefreshService(src, nil, 2, rec)

	err := svc.Refresh(context.Background())

	var fatal *FatalFetchError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, "fx rates", fatal.Resource)
	assert.ErrorIs(t, err, upstream)

	snap := svc.Current()
	assert.Equal(t, models.PhaseFailed, snap.Phase)
	assert.Empty(t, snap.Records)
	assert.Contains(t, snap.Error, "fx relay timeout")

	for _, s := range rec.all() {
		assert.NotEqual(t, models.PhaseProcessingBasic, s.Phase, "no records without rates")
	}
}

func TestRefresh_DuplicateCatalogEntriesCollapse(t *testing.T) {
	dup := zomatoCard()
	dup.Name = "Zomato India (again)"

	var calls atomic.Int32
	src := &fakeSource{
		cards: append(twoCards(), dup),
		rates: inrRates(),
		details: func(context.Context, string) (*bitrefill.ProductDetails, error) {
			calls.Add(1)
			return nil, errors.New("unavailable")
		},
	}
	svc := NewRefreshService(src, nil, 0)

	require.NoError(t, svc.Refresh(context.Background()))

	snap := svc.Current()
	require.Len(t, snap.Records, 2)
	assert.Equal(t, 2, snap.DetailsTotal)
	assert.Equal(t, int32(2), calls.Load())

	zomato, ok := snap.FindRecord("zomato-india")
	require.True(t, ok)
	assert.Equal(t, "Zomato India", zomato.Name, "first occurrence wins")
}

func TestRefresh_UnboundedDetailFetches(t *testing.T) {
	cards := twoCards()
	third := zomatoCard()
	third.ID = "myntra-india"
	cards = append(cards, third)

	// Every fetch waits for all of them to be in flight, so any limit below
	// len(cards) would stall until the timeout.
	var inFlight sync.WaitGroup
	inFlight.Add(len(cards))
	allStarted := make(chan struct{})
	go func() {
		inFlight.Wait()
		close(allStarted)
	}()

	src := &fakeSource{
		cards: cards,
		rates: inrRates(),
		details: func(ctx context.Context, _ string) (*bitrefill.ProductDetails, error) {
			inFlight.Done()
			select {
			case <-allStarted:
				return zomatoDetail(), nil
			case <-time.After(time.Second):
				return nil, errors.New("fetches were serialized")
			}
		},
	}
	svc := NewRefreshService(src, nil, 0)

	require.NoError(t, svc.Refresh(context.Background()))
	snap := svc.Current()
	assert.Equal(t, 3, snap.DetailsResolved)
	assert.Zero(t, snap.DetailsFailed)
}

func TestRefresh_MissingRateIsFatal(t *testing.T) {
	src := &fakeSource{cards: twoCards(), rates: bitrefill.FXRates{}}
	svc := NewRefreshService(src, nil, 2)

	err := svc.Refresh(context.Background())

	var missing *MissingRateError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, models.PhaseFailed, svc.Current().Phase)
}

func TestRefresh_EmptyCatalogSettles(t *testing.T) {
	src := &fakeSource{rates: inrRates()}
	svc := NewRefreshService(src, nil, 2)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, models.PhaseSettled, svc.Current().Phase)
	assert.Empty(t, svc.Current().Records)
}

func TestRefresh_StaleGenerationDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	src := &fakeSource{
		cards: []bitrefill.GiftCard{zomatoCard()},
		rates: inrRates(),
		details: func(context.Context, string) (*bitrefill.ProductDetails, error) {
			if calls.Add(1) == 1 {
				close(started)
				<-release
				return zomatoDetail(), nil
			}
			return nil, errors.New("unavailable")
		},
	}
	rec := &recorder{}
	svc := NewRefreshService(src, nil, 1, rec)

	first := svc.begin(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.run(first) }()

	<-started
	require.NoError(t, svc.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-done, ErrCycleSuperseded)

	snap := svc.Current()
	assert.Equal(t, uint64(2), snap.Generation)
	assert.Equal(t, models.PhaseSettled, snap.Phase)
	zomato, ok := snap.FindRecord("zomato-india")
	require.True(t, ok)
	assert.False(t, zomato.Commission.IsKnown(), "late detail from generation 1 must not leak")

	var sawSecond bool
	for _, s := range rec.all() {
		if s.Generation == 2 {
			sawSecond = true
		}
		if sawSecond {
			assert.Equal(t, uint64(2), s.Generation)
		}
	}
}

func TestTrigger_ReturnsNewGeneration(t *testing.T) {
	src := &fakeSource{rates: inrRates()}
	svc := NewRefreshService(src, nil, 2)

	assert.Equal(t, uint64(1), svc.Trigger(context.Background()))
	assert.Equal(t, uint64(2), svc.Trigger(context.Background()))

	assert.Eventually(t, func() bool {
		s := svc.Current()
		return s.Generation == 2 && s.Phase == models.PhaseSettled
	}, time.Second, 10*time.Millisecond)
}

func TestNewRefreshService_Idle(t *testing.T) {
	svc := NewRefreshService(&fakeSource{}, nil, 0)
	snap := svc.Current()
	assert.Equal(t, models.PhaseIdle, snap.Phase)
	assert.Equal(t, "INR", snap.Currency)
	assert.NotNil(t, snap.Records)
}
