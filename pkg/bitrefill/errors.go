package bitrefill

import (
	"errors"
	"fmt"
)

// ErrAllStrategiesFailed is returned (possibly wrapping the last attempt's error)
// when no proxy strategy produced a usable response.
var ErrAllStrategiesFailed = errors.New("all proxy strategies failed")

// StatusError reports a non-2xx response from a proxy or the upstream API.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %s", e.Status)
}

// UnwrapError reports a proxy response whose envelope did not have the expected shape.
type UnwrapError struct {
	Strategy string
	Reason   string
	Err      error
}

func (e *UnwrapError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Strategy, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Strategy, e.Reason)
}

func (e *UnwrapError) Unwrap() error { return e.Err }
