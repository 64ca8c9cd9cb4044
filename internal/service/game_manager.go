package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// Archiver persists finished games.
type Archiver interface {
	SaveGame(rec storage.Record) error
	LoadGame(id string) (storage.Record, error)
	ListGames() ([]storage.Record, error)
}

type Options struct {
	ClockTime time.Duration
	// Archive may be nil, in which case finished games are not kept.
	Archive Archiver
	// Bot plays the computer seat of bot games.
	Bot model.MoveChooser
	// NewID generates game ids.
	NewID func() string
}

type GameManager struct {
	games            map[string]*model.Game
	archived         map[string]bool
	queue            *model.Queue
	matchingChannels map[string]chan string
	opts             Options
	mu               sync.RWMutex
}

func NewGameManager(opts Options) *GameManager {
	if opts.ClockTime <= 0 {
		opts.ClockTime = 10 * time.Minute
	}
	if opts.NewID == nil {
		opts.NewID = newGameID
	}
	return &GameManager{
		games:            make(map[string]*model.Game),
		archived:         make(map[string]bool),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		opts:             opts,
	}
}

// Run pairs queued players every interval until ctx is done.
func (gm *GameManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest-waiting players. It reports whether a game
// was created.
func (gm *GameManager) matchOnce() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	gameID := gm.opts.NewID()
	game := model.NewGame(gameID, gm.opts.ClockTime)
	p1Color, err := game.AddPlayer(player1.ID)
	if err != nil {
		log.Errorf("matchmaking: seat %s: %v", player1.ID, err)
		return false
	}
	p2Color, err := game.AddPlayer(player2.ID)
	if err != nil {
		log.Errorf("matchmaking: seat %s: %v", player2.ID, err)
		return false
	}
	gm.games[gameID] = game
	log.Infof("matchmaking: %s (%s) vs %s (%s) in game %s", player1.ID, p1Color, player2.ID, p2Color, gameID)

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

// notifyMatch sends event on the player's channel and retires the channel.
// Callers hold gm.mu.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warnf("matchmaking: no channel for player %s", playerID)
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Errorf("matchmaking: marshal event: %v", err)
		return
	}
	select {
	case ch <- string(data):
	default:
		log.Warnf("matchmaking: channel for player %s is full", playerID)
	}
	delete(gm.matchingChannels, playerID)
	close(ch)
}

// RegisterMatchmakingChannel sets where playerID's match notice goes. A
// previous channel for the same player is closed.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch and takes the player out of the
// queue. The channel is left open; its creator owns it.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, exists := gm.matchingChannels[playerID]; exists && current == ch {
		delete(gm.matchingChannels, playerID)
		gm.queue.RemovePlayer(playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return err
	}
	log.Debugf("matchmaking: %s queued", playerID)
	return nil
}

func (gm *GameManager) QueueSize() int {
	return gm.queue.Size()
}

// CreateGame registers an empty game under gameID.
func (gm *GameManager) CreateGame(gameID string) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrGameExists, gameID)
	}
	game := model.NewGame(gameID, gm.opts.ClockTime)
	gm.games[gameID] = game
	return game, nil
}

// CreateBotGame seats playerID as white against the computer.
func (gm *GameManager) CreateBotGame(playerID string) (string, model.PlayerColor, error) {
	if gm.opts.Bot == nil {
		return "", "", errors.New("no bot configured")
	}
	game, err := gm.CreateGame(gm.opts.NewID())
	if err != nil {
		return "", "", err
	}
	color, err := game.AddPlayer(playerID)
	if err != nil {
		return "", "", err
	}
	if _, err := game.AddBot(); err != nil {
		return "", "", err
	}
	return game.ID, color, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (model.PlayerColor, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) GetGameView(gameID string) (model.GameView, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameView{}, err
	}
	return game.View(), nil
}

func (gm *GameManager) LegalMoves(gameID string) ([]model.Move, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(), nil
}

// MakeMove plays playerID's move, then lets a bot opponent answer.
func (gm *GameManager) MakeMove(gameID string, playerID string, move model.Move) (string, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return "", err
	}

	notation, err := game.MakeMove(playerID, move)
	defer gm.archiveIfOver(game)
	if err != nil {
		return "", err
	}
	gm.botReply(game)
	return notation, nil
}

func (gm *GameManager) botReply(game *model.Game) {
	if gm.opts.Bot == nil || game.IsOver() {
		return
	}
	seat, ok := game.PlayerAt(game.State().ToMove)
	if !ok || !seat.Bot {
		return
	}
	notation, err := game.PlayStrategy(seat.ID, gm.opts.Bot)
	if err != nil {
		log.Warnf("game %s: bot move: %v", game.ID, err)
		return
	}
	log.Debugf("game %s: bot played %s", game.ID, notation)
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Resign(playerID); err != nil {
		return err
	}
	gm.archiveIfOver(game)
	return nil
}

// archiveIfOver stores a finished game once.
func (gm *GameManager) archiveIfOver(game *model.Game) {
	if gm.opts.Archive == nil || !game.IsOver() {
		return
	}
	gm.mu.Lock()
	if gm.archived[game.ID] {
		gm.mu.Unlock()
		return
	}
	gm.archived[game.ID] = true
	gm.mu.Unlock()

	if err := gm.opts.Archive.SaveGame(recordFor(game.View())); err != nil {
		log.Errorf("game %s: archive: %v", game.ID, err)
		return
	}
	log.Infof("game %s: archived", game.ID)
}

func recordFor(v model.GameView) storage.Record {
	rec := storage.Record{
		ID:         v.ID,
		White:      v.Players.White.ID,
		Black:      v.Players.Black.ID,
		Moves:      v.MoveHistory,
		FinishedAt: time.Now(),
	}
	if v.Result != nil {
		rec.Result = string(*v.Result)
	}
	if v.Winner != nil {
		rec.Winner = string(*v.Winner)
	}
	return rec
}

// ArchivedGame looks up a finished game in the archive.
func (gm *GameManager) ArchivedGame(gameID string) (storage.Record, error) {
	if gm.opts.Archive == nil {
		return storage.Record{}, fmt.Errorf("%w: %s", storage.ErrGameNotFound, gameID)
	}
	return gm.opts.Archive.LoadGame(gameID)
}

// ArchivedGames lists every finished game in the archive.
func (gm *GameManager) ArchivedGames() ([]storage.Record, error) {
	if gm.opts.Archive == nil {
		return []storage.Record{}, nil
	}
	return gm.opts.Archive.ListGames()
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
