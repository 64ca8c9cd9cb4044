package model

// IsLegal reports whether the side to move may play from -> to.
func (s GameState) IsLegal(from, to Position) bool {
	if !from.InBounds() || !to.InBounds() {
		return false
	}
	piece := s.Board.At(from)
	if piece.IsEmpty() || piece.Color != s.ToMove {
		return false
	}
	if target := s.Board.At(to); !target.IsEmpty() && target.Color == piece.Color {
		return false
	}
	if !s.Board.pseudoLegal(from, to, s.EnPassantTarget) {
		return false
	}

	// s.Board is an array, so this is a private copy.
	working := s.Board
	working.Set(to, piece)
	working.Clear(from)
	return !working.IsInCheck(piece.Color)
}
