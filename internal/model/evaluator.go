package model

import "fmt"

type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
)

// IsInCheck reports whether any opposing piece can reach color's king.
// A board without that king is a broken invariant and panics.
func (b *Board) IsInCheck(color PlayerColor) bool {
	king, ok := b.findKing(color)
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrKingNotFound, color))
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pos := Position{Row: row, Col: col}
			piece := b.At(pos)
			if piece.IsEmpty() || piece.Color == color {
				continue
			}
			if b.pseudoLegal(pos, king, nil) {
				return true
			}
		}
	}
	return false
}

func (b *Board) findKing(color PlayerColor) (Position, bool) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			piece := b[row][col]
			if piece.Type == King && piece.Color == color {
				return Position{Row: row, Col: col}, true
			}
		}
	}
	return Position{}, false
}

func (s GameState) IsInCheck(color PlayerColor) bool {
	return s.Board.IsInCheck(color)
}

// IsCheckmate reports whether color is in check with no legal reply.
func (s GameState) IsCheckmate(color PlayerColor) bool {
	return s.Board.IsInCheck(color) && !s.hasLegalMove(color)
}

// IsStalemate reports whether color is not in check but cannot move.
func (s GameState) IsStalemate(color PlayerColor) bool {
	return !s.Board.IsInCheck(color) && !s.hasLegalMove(color)
}

// Status classifies the position for the side to move.
func (s GameState) Status() Status {
	inCheck := s.Board.IsInCheck(s.ToMove)
	canMove := s.hasLegalMove(s.ToMove)
	switch {
	case inCheck && !canMove:
		return StatusCheckmate
	case !canMove:
		return StatusStalemate
	case inCheck:
		return StatusCheck
	}
	return StatusOngoing
}

// hasLegalMove enumerates every from/to pair as if color were on move. The en
// passant target only ever belongs to the side on move.
func (s GameState) hasLegalMove(color PlayerColor) bool {
	if color != s.ToMove {
		s.ToMove = color
		s.EnPassantTarget = nil
	}
	found := false
	s.eachLegalMove(func(Move) bool {
		found = true
		return false
	})
	return found
}

// LegalMoves lists every legal move for the side to move.
func (s GameState) LegalMoves() []Move {
	moves := []Move{}
	s.eachLegalMove(func(m Move) bool {
		moves = append(moves, m)
		return true
	})
	return moves
}

// LegalMovesFrom lists the legal destinations of the piece on from.
func (s GameState) LegalMovesFrom(from Position) []Move {
	moves := []Move{}
	if !from.InBounds() {
		return moves
	}
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			to := Position{Row: row, Col: col}
			if s.IsLegal(from, to) {
				moves = append(moves, Move{From: from, To: to})
			}
		}
	}
	return moves
}

// eachLegalMove calls fn for each legal move until fn returns false.
func (s GameState) eachLegalMove(fn func(Move) bool) {
	for fromRow := 0; fromRow < 8; fromRow++ {
		for fromCol := 0; fromCol < 8; fromCol++ {
			from := Position{Row: fromRow, Col: fromCol}
			piece := s.Board.At(from)
			if piece.IsEmpty() || piece.Color != s.ToMove {
				continue
			}
			for toRow := 0; toRow < 8; toRow++ {
				for toCol := 0; toCol < 8; toCol++ {
					to := Position{Row: toRow, Col: toCol}
					if s.IsLegal(from, to) && !fn(Move{From: from, To: to}) {
						return
					}
				}
			}
		}
	}
}
