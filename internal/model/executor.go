package model

import (
	"fmt"
	"strings"
)

// Apply plays from -> to and returns the resulting state with the move's
// notation. An illegal move returns ErrIllegalMove; s is never modified.
func (s GameState) Apply(from, to Position) (GameState, string, error) {
	if !s.IsLegal(from, to) {
		return GameState{}, "", fmt.Errorf("%w: %s %s", ErrIllegalMove, from, to)
	}

	next := s
	piece := next.Board.At(from)
	captured := next.Board.At(to)

	// en passant takes the pawn beside the mover, not the one on the target square
	if piece.Type == Pawn && s.EnPassantTarget != nil && to == *s.EnPassantTarget {
		victim := Position{Row: from.Row, Col: to.Col}
		captured = next.Board.At(victim)
		next.Board.Clear(victim)
	}

	piece.HasMoved = true
	next.Board.Set(to, piece)
	next.Board.Clear(from)

	promoted := false
	if piece.Type == Pawn && (to.Row == 0 || to.Row == 7) {
		next.Board.Set(to, NewPiece(Queen, piece.Color))
		promoted = true
	}

	if piece.Type == King && abs(to.Col-from.Col) == 2 {
		next.Board.castleRook(from, to)
	}

	next.EnPassantTarget = nil
	if piece.Type == Pawn && abs(to.Row-from.Row) == 2 {
		next.EnPassantTarget = &Position{Row: (from.Row + to.Row) / 2, Col: from.Col}
	}

	notation := getNotation(piece, from, to, captured, promoted)
	history := make([]string, len(s.MoveHistory), len(s.MoveHistory)+1)
	copy(history, s.MoveHistory)
	next.MoveHistory = append(history, notation)

	next.ToMove = s.ToMove.Opposite()
	return next, notation, nil
}

// castleRook brings the rook across the king after a two-file king step.
func (b *Board) castleRook(from, to Position) {
	rookFrom := Position{Row: from.Row, Col: 7}
	rookTo := Position{Row: from.Row, Col: 5}
	if to.Col < from.Col {
		rookFrom.Col = 0
		rookTo.Col = 3
	}
	rook := b.At(rookFrom)
	rook.HasMoved = true
	b.Clear(rookFrom)
	b.Set(rookTo, rook)
}

// getNotation renders moves as e.g. "Pe2e4", "Nc3d5xP", "Pb7b8=Q".
func getNotation(piece Piece, from, to Position, captured Piece, promoted bool) string {
	var sb strings.Builder
	sb.WriteString(piece.Type.Letter())
	sb.WriteString(from.getSquareNotation())
	sb.WriteString(to.getSquareNotation())
	if !captured.IsEmpty() {
		sb.WriteString("x")
		sb.WriteString(captured.Type.Letter())
	}
	if promoted {
		sb.WriteString("=Q")
	}
	return sb.String()
}
