package room

import (
	"maps"
	"slices"

	"github.com/cardroom/spades-backend/internal/cards"
)

type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhaseDealing  Phase = "dealing"
	PhaseBidding  Phase = "bidding"
	PhasePlaying  Phase = "playing"
	PhaseRoundEnd Phase = "roundEnd"
	PhaseGameEnd  Phase = "gameEnd"
)

// Seats is the fixed table size; MaxRounds ends the game.
const (
	Seats     = 4
	MaxRounds = 5
	HandSize  = 13
)

type PlayerInfo struct {
	Name string
	Seat int
}

// Room is the single shared mutable document all four clients coordinate
// through. Players and hands are keyed by identity; bids, tricks and scores
// are keyed by seat.
type Room struct {
	Phase         Phase
	Players       map[string]PlayerInfo
	PlayerOrder   []string
	Round         int
	DealerSeat    int
	Scores        map[int]float64
	Hands         map[string][]cards.Card // nil until the round is dealt
	Bids          map[int]int
	TricksWon     map[int]int
	CurrentTrick  map[int]cards.Card
	LedSuit       cards.Suit // "" while the trick is empty
	PlayedCount   int
	TurnSeat      int
	CurrentBidder int
	FinalScores   map[int]float64 // set once, at gameEnd
}

// New returns a fresh waiting room with the creator seated at 0.
func New(creatorID, name string) Room {
	return Room{
		Phase:       PhaseWaiting,
		Players:     map[string]PlayerInfo{creatorID: {Name: name, Seat: 0}},
		PlayerOrder: []string{creatorID},
		Round:       1,
		DealerSeat:  0,
		Scores:      map[int]float64{0: 0, 1: 0, 2: 0, 3: 0},
	}
}

// SeatOf returns the seat held by the given identity.
func (r Room) SeatOf(id string) (int, bool) {
	p, ok := r.Players[id]
	if !ok {
		return 0, false
	}
	return p.Seat, true
}

// IdentityAt returns the identity seated at the given position.
func (r Room) IdentityAt(seat int) (string, bool) {
	if seat < 0 || seat >= len(r.PlayerOrder) {
		return "", false
	}
	return r.PlayerOrder[seat], true
}

// SeatCount is the number of claimed seats.
func (r Room) SeatCount() int {
	return len(r.PlayerOrder)
}

// Open reports whether the room can still accept a player.
func (r Room) Open() bool {
	return r.Phase == PhaseWaiting && len(r.PlayerOrder) < Seats
}

// TotalTricks sums tricks won across all seats this round.
func (r Room) TotalTricks() int {
	total := 0
	for _, n := range r.TricksWon {
		total += n
	}
	return total
}

// AllBidsIn reports whether every seat has recorded a bid.
func (r Room) AllBidsIn() bool {
	for seat := 0; seat < Seats; seat++ {
		if _, ok := r.Bids[seat]; !ok {
			return false
		}
	}
	return true
}

// Clone deep-copies the document so snapshot readers never share maps with
// the live copy.
func (r Room) Clone() Room {
	out := r
	out.Players = maps.Clone(r.Players)
	out.PlayerOrder = slices.Clone(r.PlayerOrder)
	out.Scores = maps.Clone(r.Scores)
	out.Bids = maps.Clone(r.Bids)
	out.TricksWon = maps.Clone(r.TricksWon)
	out.CurrentTrick = maps.Clone(r.CurrentTrick)
	out.FinalScores = maps.Clone(r.FinalScores)
	if r.Hands != nil {
		out.Hands = make(map[string][]cards.Card, len(r.Hands))
		for id, hand := range r.Hands {
			out.Hands[id] = slices.Clone(hand)
		}
	}
	return out
}
