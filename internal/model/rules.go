package model

// moveRule reports whether piece may move from -> to by its own geometry,
// ignoring whether the move leaves its king in check.
type moveRule func(b *Board, piece Piece, from, to Position, enPassant *Position) bool

var moveRules map[PieceType]moveRule

// Populated in init: kingMove reaches back into moveRules through IsInCheck.
func init() {
	moveRules = map[PieceType]moveRule{
		Pawn:   pawnMove,
		Rook:   rookMove,
		Knight: knightMove,
		Bishop: bishopMove,
		Queen:  queenMove,
		King:   kingMove,
	}
}

// pseudoLegal dispatches on the piece standing on from.
func (b *Board) pseudoLegal(from, to Position, enPassant *Position) bool {
	if from == to {
		return false
	}
	piece := b.At(from)
	rule, ok := moveRules[piece.Type]
	if !ok {
		return false
	}
	return rule(b, piece, from, to, enPassant)
}

func pawnMove(b *Board, piece Piece, from, to Position, enPassant *Position) bool {
	dir := piece.Color.forward()
	rowDiff := to.Row - from.Row
	colDiff := to.Col - from.Col

	switch {
	case colDiff == 0 && rowDiff == dir:
		return b.IsEmpty(to)
	case colDiff == 0 && rowDiff == 2*dir:
		passed := Position{Row: from.Row + dir, Col: from.Col}
		return !piece.HasMoved && b.IsEmpty(passed) && b.IsEmpty(to)
	case abs(colDiff) == 1 && rowDiff == dir:
		if enPassant != nil && *enPassant == to {
			return true
		}
		target := b.At(to)
		return !target.IsEmpty() && target.Color != piece.Color
	}
	return false
}

func rookMove(b *Board, _ Piece, from, to Position, _ *Position) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	return b.isClear(from, to)
}

func bishopMove(b *Board, _ Piece, from, to Position, _ *Position) bool {
	if abs(to.Row-from.Row) != abs(to.Col-from.Col) {
		return false
	}
	return b.isClear(from, to)
}

func queenMove(b *Board, piece Piece, from, to Position, enPassant *Position) bool {
	return rookMove(b, piece, from, to, enPassant) || bishopMove(b, piece, from, to, enPassant)
}

func knightMove(_ *Board, _ Piece, from, to Position, _ *Position) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	return (rowDiff == 2 && colDiff == 1) || (rowDiff == 1 && colDiff == 2)
}

// kingMove accepts a single step in any direction, or a two-file castling step.
// Castling only tests the king's current square for attack.
func kingMove(b *Board, piece Piece, from, to Position, _ *Position) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	if max(rowDiff, colDiff) == 1 {
		return true
	}
	if piece.HasMoved || rowDiff != 0 || colDiff != 2 {
		return false
	}

	rookPos := Position{Row: from.Row, Col: 7}
	if to.Col < from.Col {
		rookPos.Col = 0
	}
	rook := b.At(rookPos)
	if rook.Type != Rook || rook.Color != piece.Color || rook.HasMoved {
		return false
	}
	// Clearance first: the destination lies between king and rook, so a king
	// probing an occupied square never reaches the check test below.
	return b.isClear(from, rookPos) && !b.IsInCheck(piece.Color)
}
