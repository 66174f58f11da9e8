package engine

import (
	"errors"
	"math/rand/v2"
)

// Supplier produces the next tile value on demand. The board never looks
// inside a supplier; an error from Next aborts the current New or Move.
type Supplier[T any] interface {
	Next() (T, error)
}

// SupplierFunc adapts a plain function to the Supplier interface
type SupplierFunc[T any] func() (T, error)

// Next calls f
func (f SupplierFunc[T]) Next() (T, error) {
	return f()
}

// SequenceSupplier hands out a fixed list of values in order. It returns
// ErrSupplierExhausted once the list is used up, unless it was built to cycle.
type SequenceSupplier[T any] struct {
	values []T
	next   int
	cycle  bool
}

// NewSequenceSupplier creates a supplier that yields values once, in order
func NewSequenceSupplier[T any](values ...T) *SequenceSupplier[T] {
	return &SequenceSupplier[T]{values: values}
}

// NewCyclingSupplier creates a supplier that starts over after the last value
func NewCyclingSupplier[T any](values ...T) *SequenceSupplier[T] {
	return &SequenceSupplier[T]{values: values, cycle: true}
}

// Next returns the next value of the sequence
func (s *SequenceSupplier[T]) Next() (T, error) {
	if s.next >= len(s.values) {
		if !s.cycle || len(s.values) == 0 {
			var zero T
			return zero, ErrSupplierExhausted
		}
		s.next = 0
	}
	v := s.values[s.next]
	s.next++
	return v, nil
}

// Remaining returns how many values are left before the sequence runs out or wraps
func (s *SequenceSupplier[T]) Remaining() int {
	return len(s.values) - s.next
}

// ChainSupplier drains each supplier in turn, moving on when one reports
// ErrSupplierExhausted. Any other error is returned as is.
type ChainSupplier[T any] struct {
	suppliers []Supplier[T]
}

// NewChainSupplier creates a supplier that concatenates the given suppliers
func NewChainSupplier[T any](suppliers ...Supplier[T]) *ChainSupplier[T] {
	return &ChainSupplier[T]{suppliers: suppliers}
}

// Next returns the next value from the first non-exhausted supplier
func (c *ChainSupplier[T]) Next() (T, error) {
	for len(c.suppliers) > 0 {
		v, err := c.suppliers[0].Next()
		if errors.Is(err, ErrSupplierExhausted) {
			c.suppliers = c.suppliers[1:]
			continue
		}
		return v, err
	}
	var zero T
	return zero, ErrSupplierExhausted
}

// IntNSource is the part of *rand.Rand a RandomSupplier needs.
// Tests can pass a scripted source.
type IntNSource interface {
	IntN(n int) int
}

// RandomSupplier picks values uniformly from an alphabet
type RandomSupplier[T any] struct {
	values []T
	rand   IntNSource
}

// NewRandomSupplier creates a seeded random supplier over values.
// The same seed always yields the same sequence.
func NewRandomSupplier[T any](values []T, seed uint64) *RandomSupplier[T] {
	return NewRandomSupplierFrom(values, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// NewRandomSupplierFrom creates a random supplier drawing indexes from src
func NewRandomSupplierFrom[T any](values []T, src IntNSource) *RandomSupplier[T] {
	return &RandomSupplier[T]{values: values, rand: src}
}

// Next returns a random value from the alphabet
func (r *RandomSupplier[T]) Next() (T, error) {
	if len(r.values) == 0 {
		var zero T
		return zero, ErrSupplierExhausted
	}
	return r.values[r.rand.IntN(len(r.values))], nil
}
