package model

// Conn is the part of a websocket connection a game needs to push state.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Player struct {
	ID    string
	Color PlayerColor
	Bot   bool
}

type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    PlayerColor `json:"color"`
	Bot      bool        `json:"bot"`
	TimeLeft int         `json:"timeLeft"`
}

type PlayerColor string

const (
	PlayerColorWhite PlayerColor = "white"
	PlayerColorBlack PlayerColor = "black"
)

// Opposite returns the other side.
func (c PlayerColor) Opposite() PlayerColor {
	if c == PlayerColorWhite {
		return PlayerColorBlack
	}
	return PlayerColorWhite
}

// forward is the row direction pawns of this colour advance in.
func (c PlayerColor) forward() int {
	if c == PlayerColorWhite {
		return 1
	}
	return -1
}

// Title returns the capitalized colour name.
func (c PlayerColor) Title() string {
	if c == PlayerColorWhite {
		return "White"
	}
	return "Black"
}
