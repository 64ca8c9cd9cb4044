package model

import (
	"encoding/json"
	"fmt"
)

type PieceType string

// Letter is the single-letter symbol used in move notation.
func (p PieceType) Letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

const (
	NoPiece PieceType = ""
	King    PieceType = "king"
	Queen   PieceType = "queen"
	Rook    PieceType = "rook"
	Bishop  PieceType = "bishop"
	Knight  PieceType = "knight"
	Pawn    PieceType = "pawn"
)

// Piece is stored by value in the board; the zero Piece is an empty square.
type Piece struct {
	Type     PieceType   `json:"type"`
	Color    PlayerColor `json:"color"`
	HasMoved bool        `json:"hasMoved"`
}

// IsEmpty reports whether p stands for an empty square.
func (p Piece) IsEmpty() bool {
	return p.Type == NoPiece
}

func NewPiece(t PieceType, color PlayerColor) Piece {
	return Piece{Type: t, Color: color}
}

// Position is a board square. Row 0 is rank 1 (white's back rank), Col 0 is file a.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return p.getSquareNotation()
}

func (p Position) getSquareNotation() string {
	return fmt.Sprintf("%c%d", p.Col+'a', p.Row+1)
}

// UnmarshalJSON accepts either {"row":r,"col":c} or an algebraic square like "e4".
func (p *Position) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParsePosition(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	type plain Position
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Position(raw)
	return nil
}

// InBounds reports whether p lies on the 8x8 board.
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// ParsePosition converts an algebraic square such as "e4".
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Position{Row: int(s[1] - '1'), Col: int(s[0] - 'a')}, nil
}

// Sq is ParsePosition for literals known to be valid; it panics otherwise.
func Sq(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Board is the 8x8 grid, indexed [row][col].
type Board [8][8]Piece

func (b *Board) At(p Position) Piece {
	return b[p.Row][p.Col]
}

func (b *Board) Set(p Position, piece Piece) {
	b[p.Row][p.Col] = piece
}

func (b *Board) Clear(p Position) {
	b[p.Row][p.Col] = Piece{}
}

func (b *Board) IsEmpty(p Position) bool {
	return b[p.Row][p.Col].IsEmpty()
}

// MarshalJSON encodes the board as rows of pieces with null for empty squares.
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, 8)
	for r := 0; r < 8; r++ {
		rows[r] = make([]*Piece, 8)
		for c := 0; c < 8; c++ {
			if !b[r][c].IsEmpty() {
				piece := b[r][c]
				rows[r][c] = &piece
			}
		}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != 8 {
		return fmt.Errorf("board has %d rows, want 8", len(rows))
	}
	*b = Board{}
	for r, row := range rows {
		if len(row) != 8 {
			return fmt.Errorf("board row %d has %d squares, want 8", r, len(row))
		}
		for c, piece := range row {
			if piece != nil {
				b[r][c] = *piece
			}
		}
	}
	return nil
}

var backRankOrder = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func newBoard() Board {
	var board Board
	for col := 0; col < 8; col++ {
		board[0][col] = NewPiece(backRankOrder[col], PlayerColorWhite)
		board[1][col] = NewPiece(Pawn, PlayerColorWhite)
		board[6][col] = NewPiece(Pawn, PlayerColorBlack)
		board[7][col] = NewPiece(backRankOrder[col], PlayerColorBlack)
	}
	return board
}
