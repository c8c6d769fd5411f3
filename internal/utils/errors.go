package utils

import "errors"

// API error codes returned in the response envelope.
var (
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")
	ErrRouteNotFound   = errors.New("NOT_FOUND")
	ErrInternal        = errors.New("INTERNAL_ERROR")
)
