package room

import (
	"testing"

	"github.com/cardroom/spades-backend/internal/cards"
)

func TestNewRoom(t *testing.T) {
	r := New("uid-1", "Alice")
	if r.Phase != PhaseWaiting {
		t.Errorf("phase = %s, want waiting", r.Phase)
	}
	if seat, ok := r.SeatOf("uid-1"); !ok || seat != 0 {
		t.Errorf("creator seat = %d, %v", seat, ok)
	}
	if r.Round != 1 || r.DealerSeat != 0 {
		t.Errorf("round %d dealer %d, want 1 and 0", r.Round, r.DealerSeat)
	}
	for seat := 0; seat < Seats; seat++ {
		if r.Scores[seat] != 0 {
			t.Errorf("seat %d starts with score %v", seat, r.Scores[seat])
		}
	}
}

func TestOpen(t *testing.T) {
	r := New("a", "A")
	if !r.Open() {
		t.Error("one-seat waiting room should be open")
	}
	for _, id := range []string{"b", "c", "d"} {
		r.Players[id] = PlayerInfo{Name: id, Seat: len(r.PlayerOrder)}
		r.PlayerOrder = append(r.PlayerOrder, id)
	}
	if r.Open() {
		t.Error("full room should not be open")
	}
	short := New("a", "A")
	short.Phase = PhaseBidding
	if short.Open() {
		t.Error("room past waiting should not be open")
	}
}

func TestAllBidsIn(t *testing.T) {
	r := New("a", "A")
	r.Bids = map[int]int{0: 3, 1: 2, 2: 5}
	if r.AllBidsIn() {
		t.Error("three bids should not count as all in")
	}
	r.Bids[3] = 1
	if !r.AllBidsIn() {
		t.Error("four bids should count as all in")
	}
}

func TestCloneIsDeep(t *testing.T) {
	r := New("a", "A")
	r.Hands = map[string][]cards.Card{
		"a": {{Suit: cards.Clubs, Rank: cards.Two}},
	}
	r.CurrentTrick = map[int]cards.Card{0: {Suit: cards.Hearts, Rank: cards.Ace}}

	c := r.Clone()
	c.Players["b"] = PlayerInfo{Name: "B", Seat: 1}
	c.PlayerOrder = append(c.PlayerOrder, "b")
	c.Hands["a"][0] = cards.Card{Suit: cards.Spades, Rank: cards.Ace}
	c.CurrentTrick[1] = cards.Card{Suit: cards.Spades, Rank: cards.Two}
	c.Scores[0] = 99

	if len(r.Players) != 1 || len(r.PlayerOrder) != 1 {
		t.Error("clone shares player maps")
	}
	if r.Hands["a"][0] != (cards.Card{Suit: cards.Clubs, Rank: cards.Two}) {
		t.Error("clone shares hand slices")
	}
	if len(r.CurrentTrick) != 1 {
		t.Error("clone shares trick map")
	}
	if r.Scores[0] != 0 {
		t.Error("clone shares score map")
	}
}

func TestTotalTricks(t *testing.T) {
	r := New("a", "A")
	r.TricksWon = map[int]int{0: 3, 1: 4, 2: 1, 3: 5}
	if got := r.TotalTricks(); got != 13 {
		t.Errorf("TotalTricks = %d, want 13", got)
	}
}
