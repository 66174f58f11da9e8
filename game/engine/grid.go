package engine

// grid owns the tile storage of a board. Tiles are kept row-major and each
// tile's position matches its index for the lifetime of the grid.
type grid[T comparable] struct {
	width  int
	height int
	tiles  []cell[T]
}

func newGrid[T comparable](width, height int) *grid[T] {
	g := &grid[T]{
		width:  width,
		height: height,
		tiles:  make([]cell[T], width*height),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			g.tiles[row*width+col].pos = Position{Row: row, Col: col}
		}
	}
	return g
}

// inBounds checks the position against [0,height) x [0,width)
func (g *grid[T]) inBounds(p Position) bool {
	return p.Row >= 0 && p.Row < g.height && p.Col >= 0 && p.Col < g.width
}

// tileAt returns the tile at p, or false when p is off the board
func (g *grid[T]) tileAt(p Position) (*cell[T], bool) {
	if !g.inBounds(p) {
		return nil, false
	}
	return &g.tiles[p.Row*g.width+p.Col], true
}

// swapValues exchanges the values of two in-bounds tiles; positions stay put
func (g *grid[T]) swapValues(a, b Position) {
	ta, _ := g.tileAt(a)
	tb, _ := g.tileAt(b)
	ta.value, tb.value = tb.value, ta.value
	ta.filled, tb.filled = tb.filled, ta.filled
}

// tilesInRow returns the tiles of a row ordered by column. An out-of-range row yields nil.
func (g *grid[T]) tilesInRow(row int) []*cell[T] {
	if row < 0 || row >= g.height {
		return nil
	}
	line := make([]*cell[T], g.width)
	for col := 0; col < g.width; col++ {
		line[col] = &g.tiles[row*g.width+col]
	}
	return line
}

// tilesInColumn returns the tiles of a column ordered by row. An out-of-range column yields nil.
func (g *grid[T]) tilesInColumn(col int) []*cell[T] {
	if col < 0 || col >= g.width {
		return nil
	}
	line := make([]*cell[T], g.height)
	for row := 0; row < g.height; row++ {
		line[row] = &g.tiles[row*g.width+col]
	}
	return line
}

// snapshot copies the current values into a [row][col] matrix
func (g *grid[T]) snapshot() [][]T {
	out := make([][]T, g.height)
	for row := range out {
		out[row] = make([]T, g.width)
		for col := range out[row] {
			out[row][col] = g.tiles[row*g.width+col].value
		}
	}
	return out
}
