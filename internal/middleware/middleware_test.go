package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c))
	})
	app.Get("/ws", WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendString("upgraded")
	})
	return app
}

func TestEnsurePlayerID(t *testing.T) {
	app := newTestApp()

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"header", "/whoami", "alice", http.StatusOK, "alice"},
		{"query", "/whoami?playerId=bob", "", http.StatusOK, "bob"},
		{"header wins", "/whoami?playerId=bob", "alice", http.StatusOK, "alice"},
		{"missing", "/whoami", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("X-Player-ID", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
		})
	}
}

func TestWebSocketUpgradeRequiresUpgrade(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("X-Player-ID", "alice")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusUpgradeRequired)
	}
}

func TestWebSocketUpgradeAllowsUpgrade(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/ws?playerId=alice", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestEnsurePlayerIDOutlivesRequest(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Use(EnsurePlayerID())
	app.Get("/seat", func(c *fiber.Ctx) error {
		seen = append(seen, PlayerID(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	ids := []string{"alice", "bob", "zzzzz", "mallory"}
	for i, id := range ids {
		req := httptest.NewRequest(http.MethodGet, "/seat", nil)
		if i%2 == 0 {
			req.Header.Set("X-Player-ID", id)
		} else {
			req = httptest.NewRequest(http.MethodGet, "/seat?playerId="+id, nil)
		}
		if _, err := app.Test(req); err != nil {
			t.Fatal(err)
		}
	}
	for i, id := range ids {
		if seen[i] != id {
			t.Errorf("id from request %d = %q after later requests, want %q", i, seen[i], id)
		}
	}
}
