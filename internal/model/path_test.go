package model

import "testing"

func TestIsClear(t *testing.T) {
	b := boardWith(map[string]Piece{
		"d4": wP,
		"a1": wR,
		"h8": bR,
	})

	tests := []struct {
		name     string
		from, to string
		want     bool
	}{
		{"rank blocked", "a4", "h4", false},
		{"rank clear", "a5", "h5", true},
		{"file blocked", "d1", "d8", false},
		{"file clear", "e1", "e8", true},
		{"diagonal blocked", "a1", "h8", false},
		{"anti-diagonal clear", "a8", "h1", true},
		{"adjacent", "d4", "d5", true},
		{"ends occupied but between empty", "d4", "d8", true},
		{"walks backwards", "h4", "a4", false},
		{"blocker on target excluded", "a4", "d4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.isClear(Sq(tt.from), Sq(tt.to)); got != tt.want {
				t.Errorf("isClear(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
