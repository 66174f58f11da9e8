package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// resolution collects the effects of a single Move and forwards each one to
// the listeners captured when the move started. Only Move creates one, so
// trial swaps and board construction have nowhere to emit to.
type resolution[T comparable] struct {
	effects   []Effect[T]
	listeners []Listener[T]
}

func (b *Board[T]) newResolution() *resolution[T] {
	res := &resolution[T]{effects: []Effect[T]{}}
	for _, sub := range b.listeners {
		res.listeners = append(res.listeners, sub.fn)
	}
	return res
}

func (r *resolution[T]) emit(e Effect[T]) {
	r.effects = append(r.effects, e)
	for _, fn := range r.listeners {
		fn(e)
	}
}

// Move swaps the values at from and to and resolves the board until no
// matches remain. It returns every effect in the order it happened.
//
// An illegal swap leaves the board untouched and returns no effects. When the
// supplier fails mid-cascade the error is returned together with the effects
// emitted so far; cells already cleared or shifted stay that way.
func (b *Board[T]) Move(from, to Position) ([]Effect[T], error) {
	if !b.CanMove(from, to) {
		return []Effect[T]{}, nil
	}

	res := b.newResolution()
	b.grid.swapValues(from, to)

	b.logger.Debug("swap applied",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)

	err := b.resolve(res)
	return res.effects, err
}

// resolve runs match passes until one finds nothing
func (b *Board[T]) resolve(res *resolution[T]) error {
	for pass := 1; ; pass++ {
		rows := b.grid.rowMatches()
		cols := b.grid.columnMatches()
		if len(rows) == 0 && len(cols) == 0 {
			b.logger.Debug("board settled", zap.Int("passes", pass-1))
			return nil
		}
		if b.maxPasses > 0 && pass > b.maxPasses {
			return fmt.Errorf("%w: stopped after %d passes", ErrCascadeLimit, b.maxPasses)
		}

		for _, m := range rows {
			res.emit(matchEffect(m))
		}
		for _, m := range cols {
			res.emit(matchEffect(m))
		}

		cleared := b.grid.clearMatches(rows, cols)
		b.grid.shiftDown()
		if err := b.refill(); err != nil {
			return err
		}

		res.emit(Effect[T]{Kind: RefillEffect, Board: b.grid.snapshot()})

		b.logger.Debug("pass resolved",
			zap.Int("pass", pass),
			zap.Int("row_matches", len(rows)),
			zap.Int("column_matches", len(cols)),
			zap.Int("cleared", cleared),
		)
	}
}

func matchEffect[T comparable](m Match[T]) Effect[T] {
	return Effect[T]{
		Kind:      MatchEffect,
		Axis:      m.Axis,
		Value:     m.Value,
		Positions: m.Positions,
	}
}

// clearMatches empties every tile of every match. A tile in both a row and a
// column match is cleared once; the count returned is of distinct tiles.
func (g *grid[T]) clearMatches(groups ...[]Match[T]) int {
	cleared := 0
	for _, matches := range groups {
		for _, m := range matches {
			for _, p := range m.Positions {
				t, _ := g.tileAt(p)
				if t.filled {
					t.clear()
					cleared++
				}
			}
		}
	}
	return cleared
}

// shiftDown lets values fall into emptied cells. Rows are scanned top to
// bottom and each empty cell is bubbled up to row 0 by swapping it with the
// cell above, so the values above it slide down one row in order.
func (g *grid[T]) shiftDown() {
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			if g.tiles[row*g.width+col].filled {
				continue
			}
			for r := row; r > 0; r-- {
				g.swapValues(Position{Row: r, Col: col}, Position{Row: r - 1, Col: col})
			}
		}
	}
}

// refill tops up empty cells column by column, top to bottom, one supplier call each
func (b *Board[T]) refill() error {
	for col := 0; col < b.grid.width; col++ {
		for _, t := range b.grid.tilesInColumn(col) {
			if t.filled {
				continue
			}
			v, err := b.supplier.Next()
			if err != nil {
				return fmt.Errorf("engine: supplier: refilling %s: %w", t.pos, err)
			}
			t.set(v)
		}
	}
	return nil
}
