package types

import "github.com/cardroom/spades-backend/internal/cards"

// Client -> Server intents. Join must be the first message on a connection;
// afterwards the client sends SubmitBid and PlayCard as the turn token
// reaches its seat.
type ClientMessage struct {
	Type string      `json:"type"` // "Join" | "SubmitBid" | "PlayCard"
	Name string      `json:"name,omitempty"`
	Bid  int         `json:"bid,omitempty"`
	Card *cards.Card `json:"card,omitempty"`
}

// Server -> Client. Every state change arrives as a full RoomSnapshot; the
// client re-derives its entire display from each one.
type ServerMessage struct {
	Type    string    `json:"type"` // "RoomSnapshot" | "Error"
	Version int       `json:"version,omitempty"`
	View    *RoomView `json:"view,omitempty"`
	Error   string    `json:"error,omitempty"`
}
