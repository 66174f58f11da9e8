package engine

// step is the positional offset used to walk along an axis
type step struct {
	dRow, dCol int
}

var (
	rowStep    = step{dRow: 0, dCol: 1}
	columnStep = step{dRow: 1, dCol: 0}
)

// rowMatches scans rows top to bottom, tiles left to right
func (g *grid[T]) rowMatches() []Match[T] {
	var matches []Match[T]
	for row := 0; row < g.height; row++ {
		matches = append(matches, g.lineMatches(g.tilesInRow(row), RowAxis, rowStep)...)
	}
	return matches
}

// columnMatches scans columns from width down to 0. The first index is one past
// the last column; tilesInColumn returns nothing for it.
func (g *grid[T]) columnMatches() []Match[T] {
	var matches []Match[T]
	for col := g.width; col >= 0; col-- {
		matches = append(matches, g.lineMatches(g.tilesInColumn(col), ColumnAxis, columnStep)...)
	}
	return matches
}

// anyMatch reports whether a run exists on either axis
func (g *grid[T]) anyMatch() bool {
	return len(g.rowMatches()) > 0 || len(g.columnMatches()) > 0
}

// lineMatches finds the runs in one row or column. Once a value has produced a
// match in this line, later tiles holding that value are not explored again.
func (g *grid[T]) lineMatches(line []*cell[T], axis Axis, s step) []Match[T] {
	var matches []Match[T]
	matched := make(map[T]bool)

	for _, tile := range line {
		if !tile.filled || matched[tile.value] {
			continue
		}

		run := g.runThrough(tile, s)
		if len(run) < MinRunLength {
			continue
		}

		matched[tile.value] = true
		matches = append(matches, Match[T]{
			Axis:      axis,
			Value:     tile.value,
			Positions: run,
		})
	}

	return matches
}

// runThrough walks backward then forward from the candidate while neighbours
// hold the same value, and returns the run in increasing order.
func (g *grid[T]) runThrough(candidate *cell[T], s step) []Position {
	var before []Position
	p := candidate.pos
	for {
		p = Position{Row: p.Row - s.dRow, Col: p.Col - s.dCol}
		t, ok := g.tileAt(p)
		if !ok || !t.holds(candidate.value) {
			break
		}
		before = append(before, p)
	}

	run := make([]Position, 0, len(before)+1)
	for i := len(before) - 1; i >= 0; i-- {
		run = append(run, before[i])
	}
	run = append(run, candidate.pos)

	p = candidate.pos
	for {
		p = Position{Row: p.Row + s.dRow, Col: p.Col + s.dCol}
		t, ok := g.tileAt(p)
		if !ok || !t.holds(candidate.value) {
			break
		}
		run = append(run, p)
	}

	return run
}
