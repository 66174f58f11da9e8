package engine

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Option configures a Board
type Option func(*options)

type options struct {
	logger    *zap.Logger
	maxPasses int
}

// WithLogger sets the logger used for per-pass debug output
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxPasses stops a Move with ErrCascadeLimit once it needs more than n
// match passes. Zero or less means no limit.
func WithMaxPasses(n int) Option {
	return func(o *options) {
		o.maxPasses = n
	}
}

type subscription[T comparable] struct {
	id int
	fn Listener[T]
}

// Board is a match-3 grid of tiles together with the supplier that refills it.
// A Board is not safe for concurrent use.
type Board[T comparable] struct {
	grid      *grid[T]
	supplier  Supplier[T]
	listeners []subscription[T]
	nextSubID int
	logger    *zap.Logger
	maxPasses int
}

// New creates a width x height board, pulling one value per cell from supplier
// in row-major order. No supplier call is made when the dimensions are invalid.
func New[T comparable](supplier Supplier[T], width, height int, opts ...Option) (*Board[T], error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if supplier == nil {
		return nil, fmt.Errorf("engine: supplier cannot be nil")
	}

	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	g := newGrid[T](width, height)
	for i := range g.tiles {
		v, err := supplier.Next()
		if err != nil {
			return nil, fmt.Errorf("engine: supplier: filling %s: %w", g.tiles[i].pos, err)
		}
		g.tiles[i].set(v)
	}

	return &Board[T]{
		grid:      g,
		supplier:  supplier,
		logger:    o.logger,
		maxPasses: o.maxPasses,
	}, nil
}

// Width returns the number of columns
func (b *Board[T]) Width() int {
	return b.grid.width
}

// Height returns the number of rows
func (b *Board[T]) Height() int {
	return b.grid.height
}

// TileValueAt returns the value at p. The second result is false when p is off the board.
func (b *Board[T]) TileValueAt(p Position) (T, bool) {
	t, ok := b.grid.tileAt(p)
	if !ok {
		var zero T
		return zero, false
	}
	return t.value, t.filled
}

// Values returns a [row][col] copy of the board
func (b *Board[T]) Values() [][]T {
	return b.grid.snapshot()
}

// Matches returns the runs currently on the board, row runs first
func (b *Board[T]) Matches() []Match[T] {
	return append(b.grid.rowMatches(), b.grid.columnMatches()...)
}

// Subscribe registers a listener for the effects of every later Move.
// The returned function removes it again.
func (b *Board[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	id := b.nextSubID
	b.nextSubID++
	b.listeners = append(b.listeners, subscription[T]{id: id, fn: fn})

	return func() {
		for i, sub := range b.listeners {
			if sub.id == id {
				b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// String renders one row per line with values separated by spaces
func (b *Board[T]) String() string {
	var sb strings.Builder
	for row := 0; row < b.grid.height; row++ {
		for col, t := range b.grid.tilesInRow(row) {
			if col > 0 {
				sb.WriteByte(' ')
			}
			if t.filled {
				fmt.Fprint(&sb, t.value)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
