package engine

import "fmt"

// EffectKind identifies what happened during one step of a resolution
type EffectKind string

const (
	MatchEffect  EffectKind = "match"
	RefillEffect EffectKind = "refill"

	// MinRunLength is the number of equal, contiguous tiles that form a match
	MinRunLength = 3
)

// Axis tells along which direction a match runs
type Axis string

const (
	RowAxis    Axis = "row"
	ColumnAxis Axis = "column"
)

// Position represents row,col coordinates on a board
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// sharesLine reports whether p and o are on the same row or the same column
func (p Position) sharesLine(o Position) bool {
	return p.Row == o.Row || p.Col == o.Col
}

// cell is a single board tile. Its position never changes; only the value does.
type cell[T comparable] struct {
	pos    Position
	value  T
	filled bool
}

func (t *cell[T]) set(v T) {
	t.value = v
	t.filled = true
}

func (t *cell[T]) clear() {
	var zero T
	t.value = zero
	t.filled = false
}

// holds reports whether the tile is filled with v
func (t *cell[T]) holds(v T) bool {
	return t.filled && t.value == v
}

// Match is a run of at least MinRunLength equal tiles along one axis
type Match[T comparable] struct {
	Axis      Axis       `json:"axis"`
	Value     T          `json:"value"`
	Positions []Position `json:"positions"`
}

// Effect is one ordered step of a resolution.
//
// Match effects carry the cleared value and positions. Refill effects carry a
// snapshot of the board right after the gravity shift and top-up.
type Effect[T comparable] struct {
	Kind      EffectKind `json:"kind"`
	Axis      Axis       `json:"axis,omitempty"`
	Value     T          `json:"value,omitempty"`
	Positions []Position `json:"positions,omitempty"`
	Board     [][]T      `json:"board,omitempty"`
}

// Listener receives every effect of every subsequent Move, in emission order
type Listener[T comparable] func(Effect[T])
