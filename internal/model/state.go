package model

// GameState is the whole position. It is a value: copying it copies the
// board, and Apply never touches the receiver.
type GameState struct {
	Board           Board       `json:"board"`
	ToMove          PlayerColor `json:"toMove"`
	EnPassantTarget *Position   `json:"enPassantTarget"`
	MoveHistory     []string    `json:"moveHistory"`
}

// NewGameState returns the standard starting position with white to move.
func NewGameState() GameState {
	return GameState{
		Board:       newBoard(),
		ToMove:      PlayerColorWhite,
		MoveHistory: make([]string, 0),
	}
}

// NewGameStateFromBoard starts a game from an arbitrary position.
func NewGameStateFromBoard(board Board, toMove PlayerColor) GameState {
	return GameState{
		Board:       board,
		ToMove:      toMove,
		MoveHistory: make([]string, 0),
	}
}
