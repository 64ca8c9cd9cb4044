package model

import "errors"

var (
	ErrIllegalMove   = errors.New("illegal move")
	ErrInvalidSquare = errors.New("invalid square")
	ErrKingNotFound  = errors.New("king not found")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNotInGame     = errors.New("player not in game")
	ErrGameFull      = errors.New("game is full")
	ErrGameOver      = errors.New("game is over")
	ErrNoMoves       = errors.New("no legal moves")
	ErrAlreadyQueued = errors.New("player already in queue")
)
