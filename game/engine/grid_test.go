package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridFrom(t *testing.T, rows ...string) *grid[string] {
	t.Helper()
	require.NotEmpty(t, rows)
	g := newGrid[string](len(rows[0]), len(rows))
	for r, row := range rows {
		require.Len(t, row, g.width, "row %d", r)
		for c, ch := range row {
			g.tiles[r*g.width+c].set(string(ch))
		}
	}
	return g
}

func TestNewGrid_PositionsCoverBoard(t *testing.T) {
	g := newGrid[int](3, 2)
	require.Len(t, g.tiles, 6)

	seen := make(map[Position]bool)
	for i, tile := range g.tiles {
		assert.Equal(t, Position{Row: i / 3, Col: i % 3}, tile.pos)
		assert.False(t, seen[tile.pos], "duplicate position %s", tile.pos)
		seen[tile.pos] = true
	}
}

func TestGrid_TileAtBounds(t *testing.T) {
	g := gridFrom(t, "AB", "CD", "EF")

	tile, ok := g.tileAt(Position{Row: 2, Col: 1})
	require.True(t, ok)
	assert.True(t, tile.filled)
	assert.Equal(t, "F", tile.value)

	for _, p := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 2}, {3, 2}} {
		_, ok := g.tileAt(p)
		assert.False(t, ok, "tileAt(%s)", p)
	}
}

func TestGrid_SwapValuesKeepsPositions(t *testing.T) {
	g := gridFrom(t, "AB", "CD")
	a, b := Position{Row: 0, Col: 0}, Position{Row: 1, Col: 1}

	g.swapValues(a, b)

	ta, _ := g.tileAt(a)
	tb, _ := g.tileAt(b)
	assert.Equal(t, a, ta.pos)
	assert.Equal(t, b, tb.pos)
	assert.Equal(t, "D", ta.value)
	assert.Equal(t, "A", tb.value)
}

func TestGrid_Lines(t *testing.T) {
	g := gridFrom(t, "ABC", "DEF")

	row := g.tilesInRow(1)
	require.Len(t, row, 3)
	for i, tile := range row {
		assert.Equal(t, Position{Row: 1, Col: i}, tile.pos)
	}

	col := g.tilesInColumn(2)
	require.Len(t, col, 2)
	assert.Equal(t, "C", col[0].value)
	assert.Equal(t, "F", col[1].value)

	assert.Empty(t, g.tilesInRow(2))
	assert.Empty(t, g.tilesInRow(-1))
	assert.Empty(t, g.tilesInColumn(3))
	assert.Empty(t, g.tilesInColumn(-1))
}

func TestGrid_RowMatchesSkipValueAlreadyMatchedInRow(t *testing.T) {
	g := gridFrom(t, "AAABAAA")

	matches := g.rowMatches()
	require.Len(t, matches, 1)
	assert.Equal(t, []Position{{0, 0}, {0, 1}, {0, 2}}, matches[0].Positions)
}

func TestGrid_RowMatchesShortRunDoesNotBlockLaterRun(t *testing.T) {
	g := gridFrom(t, "AABAAA")

	matches := g.rowMatches()
	require.Len(t, matches, 1)
	assert.Equal(t, "A", matches[0].Value)
	assert.Equal(t, []Position{{0, 3}, {0, 4}, {0, 5}}, matches[0].Positions)
}

func TestGrid_RowMatchesResetPerRow(t *testing.T) {
	g := gridFrom(t,
		"AAAB",
		"BAAA",
	)

	matches := g.rowMatches()
	require.Len(t, matches, 2)
	assert.Equal(t, []Position{{0, 0}, {0, 1}, {0, 2}}, matches[0].Positions)
	assert.Equal(t, []Position{{1, 1}, {1, 2}, {1, 3}}, matches[1].Positions)
}

func TestGrid_ColumnMatchesScanRightToLeft(t *testing.T) {
	g := gridFrom(t,
		"AXB",
		"AYB",
		"AZB",
	)

	matches := g.columnMatches()
	require.Len(t, matches, 2)
	assert.Equal(t, "B", matches[0].Value)
	assert.Equal(t, ColumnAxis, matches[0].Axis)
	assert.Equal(t, []Position{{0, 2}, {1, 2}, {2, 2}}, matches[0].Positions)
	assert.Equal(t, "A", matches[1].Value)
}

func TestGrid_RunIgnoresEmptyTiles(t *testing.T) {
	g := gridFrom(t, "AAAA")
	tile, _ := g.tileAt(Position{Row: 0, Col: 1})
	tile.clear()

	assert.Empty(t, g.rowMatches())
	assert.False(t, g.anyMatch())
}

func TestGrid_LongRunIsOneMatch(t *testing.T) {
	g := gridFrom(t, "BAAAAA")

	matches := g.rowMatches()
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Positions, 5)
}

func TestGrid_ClearMatchesCountsSharedTileOnce(t *testing.T) {
	g := gridFrom(t,
		"XAB",
		"XCD",
		"XXX",
	)
	rows := g.rowMatches()
	cols := g.columnMatches()
	require.Len(t, rows, 1)
	require.Len(t, cols, 1)

	assert.Equal(t, 5, g.clearMatches(rows, cols))
}

func TestGrid_ShiftDownPreservesOrder(t *testing.T) {
	g := gridFrom(t,
		"A",
		"B",
		"C",
		"D",
	)
	t1, _ := g.tileAt(Position{Row: 1, Col: 0})
	t3, _ := g.tileAt(Position{Row: 3, Col: 0})
	t1.clear()
	t3.clear()

	g.shiftDown()

	col := g.tilesInColumn(0)
	assert.False(t, col[0].filled)
	assert.False(t, col[1].filled)
	assert.Equal(t, "A", col[2].value)
	assert.Equal(t, "C", col[3].value)
}
