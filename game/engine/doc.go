// Package engine provides the core match-3 board logic.
//
// The engine package implements the board mechanics including:
//   - Row/column tile addressing and value swaps
//   - Swap validation through a trial swap
//   - Run detection of three or more equal tiles per axis
//   - Clearing, gravity shift, refill and cascading re-evaluation
//
// Core Types:
//
// Board is the public handle for one grid of tiles. Its values come from a
// Supplier, which is asked for one value per cell at construction time and
// one value per refilled cell afterwards. Every successful Move returns the
// ordered list of Effects produced while the board settled.
//
// Usage:
//
//	supplier := engine.NewRandomSupplier([]string{"A", "B", "C", "D"}, 42)
//	board, err := engine.New[string](supplier, 8, 8)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	from := engine.Position{Row: 2, Col: 3}
//	to := engine.Position{Row: 2, Col: 4}
//	if board.CanMove(from, to) {
//		effects, err := board.Move(from, to)
//		...
//	}
//
// Board Rules:
//
// A swap is legal when both positions are on the board, share a row or a
// column, and leave at least one run of three or more equal values anywhere
// on the board. Matched tiles are cleared, the remaining values in each column
// fall down, new values are pulled in at the top, and the board is scanned
// again until no runs remain.
package engine
