// Package bot holds computer opponents for the game service and the terminal client.
package bot

import (
	"math/rand"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// RandomMover plays a uniformly random legal move.
type RandomMover struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomMover() *RandomMover {
	return NewRandomMoverWithSeed(time.Now().UnixNano())
}

// NewRandomMoverWithSeed makes a mover whose choices are reproducible.
func NewRandomMoverWithSeed(seed int64) *RandomMover {
	return &RandomMover{rng: rand.New(rand.NewSource(seed))}
}

// ChooseMove returns false when the side to move has no legal move.
func (r *RandomMover) ChooseMove(state model.GameState) (model.Move, bool) {
	moves := state.LegalMoves()
	if len(moves) == 0 {
		return model.Move{}, false
	}
	r.mu.Lock()
	i := r.rng.Intn(len(moves))
	r.mu.Unlock()
	return moves[i], true
}
