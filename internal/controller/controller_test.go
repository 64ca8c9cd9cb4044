package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/bot"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/storage"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

type testServer struct {
	app     *fiber.App
	service *service.GameService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	archive, err := storage.Open("")
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { archive.Close() })

	n := 0
	manager := service.NewGameManager(service.Options{
		ClockTime: time.Hour,
		Archive:   archive,
		Bot:       bot.NewRandomMoverWithSeed(1),
		NewID: func() string {
			n++
			return fmt.Sprintf("game-%d", n)
		},
	})
	gs := service.NewGameService(manager)

	app := fiber.New()
	RegisterRoutes(app, gs, nil)
	return &testServer{app: app, service: gs}
}

func (s *testServer) do(t *testing.T, method, target, player, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()

	out := map[string]json.RawMessage{}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, target, data, err)
		}
	}
	return resp.StatusCode, out
}

func str(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.Fatalf("decode string %s: %v", raw, err)
	}
	return s
}

func TestRequiresPlayerID(t *testing.T) {
	s := newTestServer(t)
	status, _ := s.do(t, http.MethodPost, "/api/game/create", "", "")
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
}

func TestSeatsSurviveLaterRequests(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, "/api/game/create", "alice", "")
	gameID := str(t, body["game_id"])
	s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "alice", "")
	s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "bob", "")

	status, body := s.do(t, http.MethodGet, "/api/game/"+gameID, "zzzzz", "")
	if status != http.StatusOK {
		t.Fatalf("state status = %d", status)
	}
	var players struct {
		White model.ClientPlayer `json:"white"`
		Black model.ClientPlayer `json:"black"`
	}
	if err := json.Unmarshal(body["players"], &players); err != nil {
		t.Fatal(err)
	}
	if players.White.ID != "alice" || players.Black.ID != "bob" {
		t.Errorf("seats = %q/%q, want alice/bob", players.White.ID, players.Black.ID)
	}

	if status, _ := s.do(t, http.MethodPost, "/api/game/"+gameID+"/move", "mallo", `{"from":"e2","to":"e4"}`); status != http.StatusForbidden {
		t.Errorf("outsider move status = %d, want 403", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "carol", ""); status != http.StatusConflict {
		t.Errorf("join of full game status = %d, want 409", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/api/game/"+gameID+"/move", "alice", `{"from":"e2","to":"e4"}`); status != http.StatusOK {
		t.Errorf("seated white move status = %d, want 200", status)
	}
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(t, http.MethodPost, "/api/game/create", "alice", "")
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	gameID := str(t, body["game_id"])

	for _, tt := range []struct{ player, color string }{{"alice", "white"}, {"bob", "black"}} {
		status, body := s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", tt.player, "")
		if status != http.StatusOK || str(t, body["color"]) != tt.color {
			t.Fatalf("join %s = %d %s, want %s", tt.player, status, body["color"], tt.color)
		}
	}
	if status, _ := s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "carol", ""); status != http.StatusConflict {
		t.Errorf("third join status = %d, want 409", status)
	}

	status, body = s.do(t, http.MethodGet, "/api/game/"+gameID+"/moves", "alice", "")
	if status != http.StatusOK {
		t.Fatalf("moves status = %d", status)
	}
	var moves []model.Move
	if err := json.Unmarshal(body["moves"], &moves); err != nil {
		t.Fatal(err)
	}
	if len(moves) != 20 {
		t.Errorf("opening has %d legal moves, want 20", len(moves))
	}

	status, body = s.do(t, http.MethodPost, "/api/game/"+gameID+"/move", "alice", `{"from":"e2","to":"e4"}`)
	if status != http.StatusOK {
		t.Fatalf("move status = %d body %s", status, body["error"])
	}
	if got := str(t, body["notation"]); got != "Pe2e4" {
		t.Errorf("notation = %q, want Pe2e4", got)
	}

	status, body = s.do(t, http.MethodGet, "/api/game/"+gameID, "bob", "")
	if status != http.StatusOK {
		t.Fatalf("state status = %d", status)
	}
	if got := str(t, body["toMove"]); got != "black" {
		t.Errorf("toMove = %q, want black", got)
	}
	var target model.Position
	if err := json.Unmarshal(body["enPassantTarget"], &target); err != nil {
		t.Fatal(err)
	}
	if target != model.Sq("e3") {
		t.Errorf("enPassantTarget = %v, want e3", target)
	}

	// board coordinates work too: e7 -> e5
	status, _ = s.do(t, http.MethodPost, "/api/game/"+gameID+"/move", "bob", `{"from":{"row":6,"col":4},"to":{"row":4,"col":4}}`)
	if status != http.StatusOK {
		t.Errorf("coordinate move status = %d", status)
	}
}

func TestMoveErrors(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, "/api/game/create", "alice", "")
	gameID := str(t, body["game_id"])
	s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "alice", "")
	s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "bob", "")

	tests := []struct {
		name       string
		gameID     string
		player     string
		body       string
		wantStatus int
	}{
		{"illegal", gameID, "alice", `{"from":"e2","to":"e5"}`, http.StatusUnprocessableEntity},
		{"bad square", gameID, "alice", `{"from":"z9","to":"e4"}`, http.StatusBadRequest},
		{"malformed", gameID, "alice", `{"from":`, http.StatusBadRequest},
		{"not your turn", gameID, "bob", `{"from":"e7","to":"e5"}`, http.StatusConflict},
		{"spectator", gameID, "carol", `{"from":"e2","to":"e4"}`, http.StatusForbidden},
		{"unknown game", "nope", "alice", `{"from":"e2","to":"e4"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPost, "/api/game/"+tt.gameID+"/move", tt.player, tt.body)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d (error %s)", status, tt.wantStatus, body["error"])
			}
			if _, ok := body["error"]; !ok {
				t.Error("response has no error field")
			}
		})
	}
}

func TestResignAndArchive(t *testing.T) {
	s := newTestServer(t)
	_, body := s.do(t, http.MethodPost, "/api/game/create", "alice", "")
	gameID := str(t, body["game_id"])
	s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "alice", "")
	s.do(t, http.MethodPost, "/api/game/"+gameID+"/join", "bob", "")

	if status, _ := s.do(t, http.MethodGet, "/api/archive/"+gameID, "alice", ""); status != http.StatusNotFound {
		t.Errorf("archive before finish status = %d, want 404", status)
	}

	status, body := s.do(t, http.MethodPost, "/api/game/"+gameID+"/resign", "bob", "")
	if status != http.StatusOK {
		t.Fatalf("resign status = %d", status)
	}
	if got := str(t, body["result"]); got != "resigned" {
		t.Errorf("result = %q, want resigned", got)
	}
	if got := str(t, body["winner"]); got != "white" {
		t.Errorf("winner = %q, want white", got)
	}

	status, body = s.do(t, http.MethodGet, "/api/archive/"+gameID, "alice", "")
	if status != http.StatusOK {
		t.Fatalf("archive status = %d", status)
	}
	if got := str(t, body["result"]); got != "resigned" {
		t.Errorf("archived result = %q", got)
	}

	status, body = s.do(t, http.MethodGet, "/api/archive", "alice", "")
	if status != http.StatusOK {
		t.Fatalf("archive list status = %d", status)
	}
	var games []storage.Record
	if err := json.Unmarshal(body["games"], &games); err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || games[0].ID != gameID {
		t.Errorf("archive list = %+v, want only %s", games, gameID)
	}
}

func TestBotGame(t *testing.T) {
	s := newTestServer(t)
	status, body := s.do(t, http.MethodPost, "/api/game/bot", "alice", "")
	if status != http.StatusCreated {
		t.Fatalf("bot game status = %d", status)
	}
	if got := str(t, body["color"]); got != "white" {
		t.Errorf("color = %q, want white", got)
	}
	gameID := str(t, body["game_id"])

	status, body = s.do(t, http.MethodPost, "/api/game/"+gameID+"/move", "alice", `{"from":"d2","to":"d4"}`)
	if status != http.StatusOK {
		t.Fatalf("move status = %d", status)
	}
	var view model.GameView
	if err := json.Unmarshal(body["game"], &view); err != nil {
		t.Fatal(err)
	}
	if len(view.MoveHistory) != 2 || view.ToMove != model.PlayerColorWhite {
		t.Errorf("after bot reply history = %v, toMove = %s", view.MoveHistory, view.ToMove)
	}
}

func TestJoinMatchmaking(t *testing.T) {
	s := newTestServer(t)
	if status, _ := s.do(t, http.MethodPost, "/api/matchmaking/join", "alice", ""); status != http.StatusOK {
		t.Errorf("join status = %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/api/matchmaking/join", "alice", ""); status != http.StatusConflict {
		t.Errorf("second join status = %d, want 409", status)
	}
}

func TestWebSocketRouteRejectsPlainRequests(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/ws/game/g?playerId=alice", nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

type recordingConn struct{ msgs []ws.Message }

func (r *recordingConn) WriteJSON(v interface{}) error {
	r.msgs = append(r.msgs, v.(ws.Message))
	return nil
}

func (r *recordingConn) Close() error { return nil }

func TestHandleMessage(t *testing.T) {
	s := newTestServer(t)
	gameID, err := s.service.CreateGame()
	if err != nil {
		t.Fatal(err)
	}
	s.service.JoinGame(gameID, "alice")
	s.service.JoinGame(gameID, "bob")

	conn := &recordingConn{}
	if err := s.service.RegisterConnection(gameID, "bob", conn); err != nil {
		t.Fatal(err)
	}

	wsc := NewWebSocketController(s.service)
	move := ws.Message{Type: ws.MessageTypeMove, Payload: json.RawMessage(`{"from":"g1","to":"f3"}`)}
	if err := wsc.handleMessage(gameID, "alice", move); err != nil {
		t.Fatalf("move message: %v", err)
	}
	if err := wsc.handleMessage(gameID, "alice", move); !errors.Is(err, model.ErrNotYourTurn) {
		t.Errorf("repeat move error = %v, want ErrNotYourTurn", err)
	}
	if err := wsc.handleMessage(gameID, "bob", ws.Message{Type: "dance"}); err == nil {
		t.Error("unknown message type accepted")
	}
	bad := ws.Message{Type: ws.MessageTypeMove, Payload: json.RawMessage(`{"from":"x"}`)}
	if err := wsc.handleMessage(gameID, "bob", bad); err == nil {
		t.Error("bad payload accepted")
	}
	if err := wsc.handleMessage(gameID, "bob", ws.Message{Type: ws.MessageTypeResign}); err != nil {
		t.Fatalf("resign message: %v", err)
	}

	var types []ws.MessageType
	for _, m := range conn.msgs {
		types = append(types, m.Type)
	}
	want := []ws.MessageType{ws.MessageTypeGameState, ws.MessageTypeGameState, ws.MessageTypeGameState}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("broadcasts mismatch (-want +got):\n%s", diff)
	}
}
