package engine

// CanMove reports whether swapping from and to would create at least one match.
//
// The positions must differ, be on the board and share a row or a column;
// they do not need to be neighbours. The board is left exactly as it was.
func (b *Board[T]) CanMove(from, to Position) bool {
	if from == to || !from.sharesLine(to) {
		return false
	}
	if !b.grid.inBounds(from) || !b.grid.inBounds(to) {
		return false
	}

	b.grid.swapValues(from, to)
	legal := b.grid.anyMatch()
	b.grid.swapValues(from, to)

	return legal
}
