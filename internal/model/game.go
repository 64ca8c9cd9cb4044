package model

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
)

// BotPlayerID is the seat id used for computer opponents.
const BotPlayerID = "bot"

type Result string

const (
	ResultCheckmate Result = "checkmate"
	ResultStalemate Result = "stalemate"
	ResultTimeout   Result = "timeout"
	ResultResigned  Result = "resigned"
)

// MoveChooser picks a move for a computer-controlled seat.
type MoveChooser interface {
	ChooseMove(state GameState) (Move, bool)
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game serializes every read and move of one GameState behind a mutex, so a
// validate-then-apply sequence is never observed half done.
type Game struct {
	ID          string
	mu          sync.Mutex
	state       GameState
	white       *Player
	black       *Player
	connections *GameConnections
	whiteClock  *Clock
	blackClock  *Clock
	status      Status
	result      *Result
	winner      *PlayerColor
	lastMove    *Ply
}

// GameView is the snapshot sent to clients.
type GameView struct {
	ID              string       `json:"id"`
	Board           Board        `json:"board"`
	ToMove          PlayerColor  `json:"toMove"`
	EnPassantTarget *Position    `json:"enPassantTarget"`
	MoveHistory     []string     `json:"moveHistory"`
	Status          Status       `json:"status"`
	IsCheck         bool         `json:"isCheck"`
	Result          *Result      `json:"result"`
	Winner          *PlayerColor `json:"winner"`
	LastMove        *Ply         `json:"lastMove"`
	Players         struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

func NewGame(id string, clockTime time.Duration) *Game {
	return &Game{
		ID:          id,
		state:       NewGameState(),
		connections: NewGameConnections(),
		whiteClock:  NewClock(clockTime),
		blackClock:  NewClock(clockTime),
		status:      StatusOngoing,
	}
}

// NewGameFromState starts a game from a prepared position.
func NewGameFromState(id string, state GameState, clockTime time.Duration) *Game {
	g := NewGame(id, clockTime)
	g.state = state
	g.status = state.Status()
	g.checkFinished()
	return g
}

// AddPlayer seats playerID in the first free colour, white first. A player
// already seated gets their colour back.
func (g *Game) AddPlayer(playerID string) (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seat(Player{ID: playerID})
}

// AddBot gives the next free seat to a computer opponent.
func (g *Game) AddBot() (PlayerColor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seat(Player{ID: BotPlayerID, Bot: true})
}

func (g *Game) seat(p Player) (PlayerColor, error) {
	if seated, ok := g.playerByID(p.ID); ok {
		return seated.Color, nil
	}
	switch {
	case g.white == nil:
		p.Color = PlayerColorWhite
		g.white = &p
	case g.black == nil:
		p.Color = PlayerColorBlack
		g.black = &p
	default:
		return "", ErrGameFull
	}
	return p.Color, nil
}

func (g *Game) playerByID(playerID string) (Player, bool) {
	if g.white != nil && g.white.ID == playerID {
		return *g.white, true
	}
	if g.black != nil && g.black.ID == playerID {
		return *g.black, true
	}
	return Player{}, false
}

// PlayerAt returns whoever holds the colour's seat.
func (g *Game) PlayerAt(color PlayerColor) (Player, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seat := g.white
	if color == PlayerColorBlack {
		seat = g.black
	}
	if seat == nil {
		return Player{}, false
	}
	return *seat, true
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.playerByID(playerID)
	return ok
}

// State returns a copy of the current position.
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Game) View() GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result != nil
}

// LegalMoves lists the moves available to the side to move.
func (g *Game) LegalMoves() []Move {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result != nil {
		return []Move{}
	}
	return g.state.LegalMoves()
}

// MakeMove plays a move for playerID and returns its notation.
func (g *Game) MakeMove(playerID string, move Move) (string, error) {
	return g.play(playerID, func(GameState) (Move, error) {
		return move, nil
	})
}

// PlayStrategy lets chooser pick and play the move for playerID's seat.
func (g *Game) PlayStrategy(playerID string, chooser MoveChooser) (string, error) {
	return g.play(playerID, func(state GameState) (Move, error) {
		move, ok := chooser.ChooseMove(state)
		if !ok {
			return Move{}, ErrNoMoves
		}
		return move, nil
	})
}

func (g *Game) play(playerID string, pick func(GameState) (Move, error)) (string, error) {
	g.mu.Lock()
	wasOver := g.result != nil
	notation, err := g.makeMove(playerID, pick)
	changed := err == nil || (!wasOver && g.result != nil)
	view := g.view()
	g.mu.Unlock()

	if changed {
		g.broadcastState(view)
	}
	return notation, err
}

func (g *Game) makeMove(playerID string, pick func(GameState) (Move, error)) (string, error) {
	if g.result != nil {
		return "", ErrGameOver
	}
	player, ok := g.playerByID(playerID)
	if !ok {
		return "", ErrNotInGame
	}
	if player.Color != g.state.ToMove {
		return "", ErrNotYourTurn
	}

	clock, opponentClock := g.whiteClock, g.blackClock
	if player.Color == PlayerColorBlack {
		clock, opponentClock = g.blackClock, g.whiteClock
	}
	if clock.Expired() {
		g.finish(ResultTimeout, player.Color.Opposite())
		return "", ErrGameOver
	}

	move, err := pick(g.state)
	if err != nil {
		return "", err
	}
	next, notation, err := g.state.Apply(move.From, move.To)
	if err != nil {
		return "", err
	}

	clock.Stop()
	opponentClock.Start()

	g.state = next
	g.lastMove = &Ply{Color: player.Color, From: move.From, To: move.To, Notation: notation}
	g.status = next.Status()
	g.checkFinished()
	return notation, nil
}

// checkFinished records a result when the side to move is mated or stalemated.
func (g *Game) checkFinished() {
	switch g.status {
	case StatusCheckmate:
		g.finish(ResultCheckmate, g.state.ToMove.Opposite())
	case StatusStalemate:
		g.finish(ResultStalemate, "")
	}
}

func (g *Game) finish(result Result, winner PlayerColor) {
	g.result = &result
	if winner != "" {
		g.winner = &winner
	}
	g.whiteClock.Stop()
	g.blackClock.Stop()
}

// Resign ends the game in favour of playerID's opponent.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	if g.result != nil {
		g.mu.Unlock()
		return ErrGameOver
	}
	player, ok := g.playerByID(playerID)
	if !ok {
		g.mu.Unlock()
		return ErrNotInGame
	}
	g.finish(ResultResigned, player.Color.Opposite())
	view := g.view()
	g.mu.Unlock()

	g.broadcastState(view)
	return nil
}

func (g *Game) view() GameView {
	v := GameView{
		ID:              g.ID,
		Board:           g.state.Board,
		ToMove:          g.state.ToMove,
		EnPassantTarget: g.state.EnPassantTarget,
		MoveHistory:     append([]string(nil), g.state.MoveHistory...),
		Status:          g.status,
		IsCheck:         g.status == StatusCheck || g.status == StatusCheckmate,
		Result:          g.result,
		Winner:          g.winner,
		LastMove:        g.lastMove,
	}
	if v.MoveHistory == nil {
		v.MoveHistory = []string{}
	}
	v.Players.White = clientPlayer(g.white, PlayerColorWhite, g.whiteClock)
	v.Players.Black = clientPlayer(g.black, PlayerColorBlack, g.blackClock)
	return v
}

func clientPlayer(p *Player, color PlayerColor, clock *Clock) ClientPlayer {
	cp := ClientPlayer{Color: color, TimeLeft: clock.tenths()}
	if p != nil {
		cp.ID = p.ID
		cp.Bot = p.Bot
	}
	return cp
}

// RegisterConnection subscribes conn to state updates. A second connection
// for the same player replaces the first.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.connections.mu.Lock()
	if old, exists := g.connections.connections[playerID]; exists {
		old.Close()
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection for player %s", g.ID, playerID)

	g.broadcastState(g.View())
	return nil
}

// UnregisterConnection drops playerID's connection if it is still conn.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
	}
}

func (g *Game) broadcastState(view GameView) {
	payload, err := json.Marshal(view)
	if err != nil {
		log.Errorf("game %s: marshal state: %v", g.ID, err)
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: payload}

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send state to %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
