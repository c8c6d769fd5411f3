package bitrefill

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds a single strategy attempt.
const DefaultTimeout = 12 * time.Second

// AttemptObserver is notified after every strategy attempt. err is nil on success.
type AttemptObserver func(strategy string, elapsed time.Duration, err error)

// Fetcher retrieves JSON documents through an ordered list of proxy strategies,
// moving to the next strategy on any failure.
type Fetcher struct {
	httpClient *http.Client
	strategies []Strategy
	observer   AttemptObserver
}

// NewFetcher constructs a Fetcher. A nil or empty strategy list falls back to
// DefaultStrategies and a non-positive timeout to DefaultTimeout.
func NewFetcher(strategies []Strategy, timeout time.Duration) *Fetcher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		strategies: strategies,
	}
}

// SetObserver registers a callback invoked after each attempt.
func (f *Fetcher) SetObserver(o AttemptObserver) {
	f.observer = o
}

// Strategies returns the configured strategy names in order.
func (f *Fetcher) Strategies() []string {
	names := make([]string, len(f.strategies))
	for i, s := range f.strategies {
		names[i] = s.Name
	}
	return names
}

// Fetch decodes the JSON document at target into out, which must be a non-nil
// pointer. Strategies are tried strictly in order with no retries; the last
// error is returned when all fail. Each attempt decodes into its own value and
// out is only assigned on success, so a half-decoded document never leaks into
// the next strategy's result.
func (f *Fetcher) Fetch(ctx context.Context, target string, out any) error {
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return fmt.Errorf("bitrefill: Fetch needs a non-nil pointer, got %T", out)
	}

	var lastErr error

	for _, s := range f.strategies {
		fresh := reflect.New(dst.Type().Elem())

		start := time.Now()
		err := f.attempt(ctx, s, target, fresh.Interface())
		if f.observer != nil {
			f.observer(s.Name, time.Since(start), err)
		}
		if err == nil {
			dst.Elem().Set(fresh.Elem())
			return nil
		}

		log.Warn().
			Err(err).
			Str("strategy", s.Name).
			Str("target", target).
			Msg("Proxy strategy failed")
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		return fmt.Errorf("%w for: %s", ErrAllStrategiesFailed, target)
	}
	return fmt.Errorf("%w for %s: %w", ErrAllStrategiesFailed, target, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, s Strategy, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Wrap(target), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	doc, err := s.Unwrap(body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(doc, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
