package service

import (
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/google/uuid"
)

// GameService is the API the controllers talk to.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func newGameID() string {
	return uuid.New().String()
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := gs.gameManager.opts.NewID()

	if _, err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) CreateBotGame(playerID string) (string, model.PlayerColor, error) {
	return gs.gameManager.CreateBotGame(playerID)
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.PlayerColor, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameView(gameID string) (model.GameView, error) {
	return gs.gameManager.GetGameView(gameID)
}

func (gs *GameService) LegalMoves(gameID string) ([]model.Move, error) {
	return gs.gameManager.LegalMoves(gameID)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.Move) (string, error) {
	return gs.gameManager.MakeMove(gameID, playerID, move)
}

func (gs *GameService) Resign(gameID string, playerID string) error {
	return gs.gameManager.Resign(gameID, playerID)
}

func (gs *GameService) ArchivedGame(gameID string) (storage.Record, error) {
	return gs.gameManager.ArchivedGame(gameID)
}

func (gs *GameService) ArchivedGames() ([]storage.Record, error) {
	return gs.gameManager.ArchivedGames()
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
