// Package textui renders boards as text and parses typed moves for the
// terminal client.
package textui

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var ErrBadInput = errors.New("invalid input, use the format 'e2 e4'")

var moveInput = regexp.MustCompile(`^[a-h][1-8] [a-h][1-8]$`)

// ParseMove turns "e2 e4" into a move. Surrounding whitespace is ignored.
func ParseMove(input string) (model.Move, error) {
	input = strings.TrimSpace(input)
	if !moveInput.MatchString(input) {
		return model.Move{}, fmt.Errorf("%w: %q", ErrBadInput, input)
	}
	from, err := model.ParsePosition(input[:2])
	if err != nil {
		return model.Move{}, err
	}
	to, err := model.ParsePosition(input[3:])
	if err != nil {
		return model.Move{}, err
	}
	return model.Move{From: from, To: to}, nil
}

const fileLabels = "    a  b  c  d  e  f  g  h\n"

// Render draws the board with rank 8 on top. Pieces print as colour initial
// plus letter (WP, BK); empty squares as a dot.
func Render(board model.Board) string {
	var sb strings.Builder
	sb.WriteString(fileLabels)
	for row := 7; row >= 0; row-- {
		fmt.Fprintf(&sb, "%d  ", row+1)
		for col := 0; col < 8; col++ {
			sb.WriteString(squareLabel(board[row][col]))
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, " %d\n", row+1)
	}
	sb.WriteString(fileLabels)
	return sb.String()
}

func squareLabel(p model.Piece) string {
	if p.IsEmpty() {
		return ". "
	}
	return strings.ToUpper(string(p.Color)[:1]) + p.Type.Letter()
}

// History numbers the recorded moves one per line.
func History(moves []string) string {
	var sb strings.Builder
	for i, m := range moves {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, m)
	}
	return sb.String()
}
