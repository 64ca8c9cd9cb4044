package model

// Move is a from/to square pair; promotion is always to a queen.
type Move struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

func (m Move) String() string {
	return m.From.String() + " " + m.To.String()
}

// Ply is one recorded half-move.
type Ply struct {
	Color    PlayerColor `json:"color"`
	From     Position    `json:"from"`
	To       Position    `json:"to"`
	Notation string      `json:"notation"`
}
