package model

// isClear reports whether every square strictly between from and to is empty.
// from and to must share a row, a column, or a diagonal.
func (b *Board) isClear(from, to Position) bool {
	rowStep := sign(to.Row - from.Row)
	colStep := sign(to.Col - from.Col)

	pos := Position{Row: from.Row + rowStep, Col: from.Col + colStep}
	for pos != to {
		if !b.IsEmpty(pos) {
			return false
		}
		pos = Position{Row: pos.Row + rowStep, Col: pos.Col + colStep}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// sign returns -1, 0 or 1.
func sign(x int) int {
	if x > 0 {
		return 1
	}
	if x < 0 {
		return -1
	}
	return 0
}
