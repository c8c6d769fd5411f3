package service

import (
	"errors"
	"fmt"
)

// ErrCycleSuperseded is returned by a refresh cycle that finished after a newer
// cycle had started. None of its late results were published.
var ErrCycleSuperseded = errors.New("refresh cycle superseded by a newer one")

// FatalFetchError means the catalog or the FX table could not be fetched by
// any proxy strategy. The whole cycle is aborted.
type FatalFetchError struct {
	Resource string
	Err      error
}

func (e *FatalFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

func (e *FatalFetchError) Unwrap() error { return e.Err }

// PartialDetailError means one product's detail fetch failed. Its commission
// stays unknown for the rest of the cycle.
type PartialDetailError struct {
	ProductID string
	Err       error
}

func (e *PartialDetailError) Error() string {
	return fmt.Sprintf("failed to fetch details for %s: %v", e.ProductID, e.Err)
}

func (e *PartialDetailError) Unwrap() error { return e.Err }
