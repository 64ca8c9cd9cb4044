package model

import "testing"

var (
	wK = NewPiece(King, PlayerColorWhite)
	wQ = NewPiece(Queen, PlayerColorWhite)
	wR = NewPiece(Rook, PlayerColorWhite)
	wB = NewPiece(Bishop, PlayerColorWhite)
	wN = NewPiece(Knight, PlayerColorWhite)
	wP = NewPiece(Pawn, PlayerColorWhite)
	bK = NewPiece(King, PlayerColorBlack)
	bQ = NewPiece(Queen, PlayerColorBlack)
	bR = NewPiece(Rook, PlayerColorBlack)
	bP = NewPiece(Pawn, PlayerColorBlack)
)

// boardWith places pieces on an otherwise empty board, keyed by square name.
func boardWith(pieces map[string]Piece) Board {
	var b Board
	for sq, p := range pieces {
		b.Set(Sq(sq), p)
	}
	return b
}

func moved(p Piece) Piece {
	p.HasMoved = true
	return p
}

// play applies moves given as "e2 e4" pairs and fails the test on the first illegal one.
func play(t *testing.T, s GameState, moves ...string) GameState {
	t.Helper()
	for _, m := range moves {
		from, to := Sq(m[:2]), Sq(m[3:])
		next, _, err := s.Apply(from, to)
		if err != nil {
			t.Fatalf("Apply(%s) error: %v", m, err)
		}
		s = next
	}
	return s
}
