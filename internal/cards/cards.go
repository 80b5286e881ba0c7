package cards

import (
	"math/rand"
	"sort"
)

// Suit values match the wire format the clients exchange.
type Suit string

const (
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Hearts   Suit = "hearts"
	Spades   Suit = "spades"
)

// Trump is fixed for the whole game.
const Trump = Spades

var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

type Rank string

const (
	Two   Rank = "2"
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

var Ranks = []Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

var rankValues = map[Rank]int{
	Two: 2, Three: 3, Four: 4, Five: 5, Six: 6, Seven: 7, Eight: 8,
	Nine: 9, Ten: 10, Jack: 11, Queen: 12, King: 13, Ace: 14,
}

// Value returns the rank's strength, 2 low through Ace high.
func (r Rank) Value() int {
	return rankValues[r]
}

type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

func (c Card) String() string {
	return string(c.Rank) + " of " + string(c.Suit)
}

// Red reports whether the card renders in red.
func (c Card) Red() bool {
	return c.Suit == Hearts || c.Suit == Diamonds
}

var glyphs = map[Suit]map[Rank]string{
	Clubs:    {Ace: "🃑", King: "🃞", Queen: "🃝", Jack: "🃛", Ten: "🃚", Nine: "🃙", Eight: "🃘", Seven: "🃗", Six: "🃖", Five: "🃕", Four: "🃔", Three: "🃓", Two: "🃒"},
	Diamonds: {Ace: "🃁", King: "🃎", Queen: "🃍", Jack: "🃋", Ten: "🃊", Nine: "🃉", Eight: "🃈", Seven: "🃇", Six: "🃆", Five: "🃅", Four: "🃄", Three: "🃃", Two: "🃂"},
	Hearts:   {Ace: "🂱", King: "🂾", Queen: "🂽", Jack: "🂻", Ten: "🂺", Nine: "🂹", Eight: "🂸", Seven: "🂷", Six: "🂶", Five: "🂵", Four: "🂴", Three: "🂳", Two: "🂲"},
	Spades:   {Ace: "🂡", King: "🂮", Queen: "🂭", Jack: "🂫", Ten: "🂪", Nine: "🂩", Eight: "🂨", Seven: "🂧", Six: "🂦", Five: "🂥", Four: "🂤", Three: "🂣", Two: "🂢"},
}

// Glyph returns the unicode playing-card glyph for the card.
func (c Card) Glyph() string {
	return glyphs[c.Suit][c.Rank]
}

// Back is the face-down card glyph shown for opponents' hands.
const Back = "🂠"

// NewDeck returns all 52 distinct cards in a fixed order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle applies a Fisher–Yates shuffle in place using the given source.
func Shuffle(deck []Card, rng *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

var suitOrder = map[Suit]int{Clubs: 0, Diamonds: 1, Hearts: 2, Spades: 3}

// SortHand orders a hand by suit, descending rank within each suit.
func SortHand(hand []Card) {
	sort.SliceStable(hand, func(i, j int) bool {
		if hand[i].Suit != hand[j].Suit {
			return suitOrder[hand[i].Suit] < suitOrder[hand[j].Suit]
		}
		return hand[i].Rank.Value() > hand[j].Rank.Value()
	})
}

// Contains reports whether the hand holds the exact card.
func Contains(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}

// Remove returns the hand without the first occurrence of card.
func Remove(hand []Card, card Card) []Card {
	out := make([]Card, 0, len(hand))
	removed := false
	for _, c := range hand {
		if !removed && c == card {
			removed = true
			continue
		}
		out = append(out, c)
	}
	return out
}
