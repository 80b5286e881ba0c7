package engine

import (
	"errors"

	"github.com/cardroom/spades-backend/internal/cards"
	"github.com/cardroom/spades-backend/internal/room"
)

var ErrWrongTurn = errors.New("not this seat's turn")
var ErrInvalidBid = errors.New("invalid bid")
var ErrNotInHand = errors.New("card not in hand")
var ErrIllegalPlay = errors.New("illegal play")

const (
	MinBid = 1
	MaxBid = 13
)

// NextSeat advances the turn token one seat clockwise.
func NextSeat(seat int) int {
	return (seat + 1) % room.Seats
}

// ValidBid reports whether a bid value is inside the legal range.
func ValidBid(value int) bool {
	return value >= MinBid && value <= MaxBid
}

// CanPlay applies the follow-suit rule: the first card of a trick is always
// legal; after that a card must match the led suit unless the hand holds
// none of it.
func CanPlay(hand []cards.Card, card cards.Card, led cards.Suit) bool {
	if !cards.Contains(hand, card) {
		return false
	}
	if led == "" || card.Suit == led {
		return true
	}
	for _, c := range hand {
		if c.Suit == led {
			return false
		}
	}
	return true
}

// PlayableCards returns the subset of the hand that may legally be played
// against the led suit. With no led suit the whole hand is playable.
func PlayableCards(hand []cards.Card, led cards.Suit) []cards.Card {
	out := make([]cards.Card, 0, len(hand))
	for _, c := range hand {
		if CanPlay(hand, c, led) {
			out = append(out, c)
		}
	}
	return out
}

// Beats reports whether candidate takes the trick from best. Spades trump
// everything; otherwise only a higher card of the same suit wins.
func Beats(candidate, best cards.Card) bool {
	if candidate.Suit == cards.Trump && best.Suit != cards.Trump {
		return true
	}
	return candidate.Suit == best.Suit && candidate.Rank.Value() > best.Rank.Value()
}

// TrickWinner resolves a complete trick to the winning seat. Seats are
// visited in play order starting from the seat that led, so the running
// best starts at the card that set the led suit.
func TrickWinner(trick map[int]cards.Card, leadSeat int) int {
	winner := -1
	var best cards.Card
	for i := 0; i < room.Seats; i++ {
		seat := (leadSeat + i) % room.Seats
		c, present := trick[seat]
		if !present {
			continue
		}
		if winner < 0 || Beats(c, best) {
			winner, best = seat, c
		}
	}
	return winner
}

// Contribution scores one seat's round: a made bid earns the bid plus a
// tenth per overtrick (bag); a failed bid loses the full bid.
func Contribution(bid, tricks int) float64 {
	if tricks >= bid {
		return float64(bid) + 0.1*float64(tricks-bid)
	}
	return -float64(bid)
}

// RoundScores folds one round's contributions into the prior cumulative
// scores and returns the new totals.
func RoundScores(bids map[int]int, tricks map[int]int, prior map[int]float64) map[int]float64 {
	out := make(map[int]float64, room.Seats)
	for seat := 0; seat < room.Seats; seat++ {
		out[seat] = prior[seat] + Contribution(bids[seat], tricks[seat])
	}
	return out
}
