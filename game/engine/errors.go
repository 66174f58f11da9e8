package engine

import "errors"

var (
	// ErrInvalidDimensions indicates a board was requested with a non-positive width or height.
	ErrInvalidDimensions = errors.New("engine: width and height must be positive")
	// ErrSupplierExhausted indicates a finite supplier has no values left.
	ErrSupplierExhausted = errors.New("engine: supplier exhausted")
	// ErrCascadeLimit indicates a move kept cascading past the configured pass limit.
	ErrCascadeLimit = errors.New("engine: cascade pass limit exceeded")
)
