package engine

import (
	"math"
	"testing"

	"github.com/cardroom/spades-backend/internal/cards"
)

func card(s cards.Suit, r cards.Rank) cards.Card {
	return cards.Card{Suit: s, Rank: r}
}

func TestCanPlayFollowSuit(t *testing.T) {
	cases := []struct {
		name string
		hand []cards.Card
		play cards.Card
		led  cards.Suit
		want bool
	}{
		{
			name: "must follow led suit when held",
			hand: []cards.Card{card(cards.Clubs, cards.Two), card(cards.Hearts, cards.King)},
			play: card(cards.Hearts, cards.King),
			led:  cards.Clubs,
			want: false,
		},
		{
			name: "club is playable against led clubs",
			hand: []cards.Card{card(cards.Clubs, cards.Two), card(cards.Hearts, cards.King)},
			play: card(cards.Clubs, cards.Two),
			led:  cards.Clubs,
			want: true,
		},
		{
			name: "void in led suit frees the whole hand",
			hand: []cards.Card{card(cards.Hearts, cards.King), card(cards.Diamonds, cards.Three)},
			play: card(cards.Hearts, cards.King),
			led:  cards.Clubs,
			want: true,
		},
		{
			name: "void in led suit allows spades too",
			hand: []cards.Card{card(cards.Spades, cards.Two), card(cards.Diamonds, cards.Three)},
			play: card(cards.Spades, cards.Two),
			led:  cards.Clubs,
			want: true,
		},
		{
			name: "first card of a trick is always legal",
			hand: []cards.Card{card(cards.Spades, cards.Two)},
			play: card(cards.Spades, cards.Two),
			led:  "",
			want: true,
		},
		{
			name: "card not in hand is never legal",
			hand: []cards.Card{card(cards.Clubs, cards.Two)},
			play: card(cards.Clubs, cards.Three),
			led:  "",
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanPlay(tc.hand, tc.play, tc.led); got != tc.want {
				t.Fatalf("CanPlay = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlayableCards(t *testing.T) {
	hand := []cards.Card{card(cards.Clubs, cards.Two), card(cards.Hearts, cards.King)}
	got := PlayableCards(hand, cards.Clubs)
	if len(got) != 1 || got[0] != card(cards.Clubs, cards.Two) {
		t.Fatalf("expected only the club, got %v", got)
	}

	void := []cards.Card{card(cards.Hearts, cards.King), card(cards.Diamonds, cards.Three)}
	got = PlayableCards(void, cards.Clubs)
	if len(got) != 2 {
		t.Fatalf("void hand should be fully playable, got %v", got)
	}

	got = PlayableCards(hand, "")
	if len(got) != 2 {
		t.Fatalf("empty trick should allow the whole hand, got %v", got)
	}
}

func TestTrickWinner(t *testing.T) {
	cases := []struct {
		name     string
		trick    map[int]cards.Card
		leadSeat int
		want     int
	}{
		{
			name: "lowest spade beats every club",
			trick: map[int]cards.Card{
				0: card(cards.Spades, cards.Five),
				1: card(cards.Clubs, cards.King),
				2: card(cards.Clubs, cards.Ace),
				3: card(cards.Spades, cards.Two),
			},
			leadSeat: 1,
			want:     0,
		},
		{
			name: "highest of led suit wins without trumps",
			trick: map[int]cards.Card{
				0: card(cards.Clubs, cards.Ten),
				1: card(cards.Clubs, cards.Four),
				2: card(cards.Hearts, cards.Ace),
				3: card(cards.Clubs, cards.Queen),
			},
			leadSeat: 1,
			want:     3,
		},
		{
			name: "off-suit ace cannot take the trick",
			trick: map[int]cards.Card{
				0: card(cards.Diamonds, cards.Ace),
				1: card(cards.Hearts, cards.Two),
				2: card(cards.Hearts, cards.Seven),
				3: card(cards.Diamonds, cards.King),
			},
			leadSeat: 1,
			want:     2,
		},
		{
			name: "higher spade beats lower spade",
			trick: map[int]cards.Card{
				0: card(cards.Spades, cards.Nine),
				1: card(cards.Diamonds, cards.Ace),
				2: card(cards.Spades, cards.Jack),
				3: card(cards.Diamonds, cards.Two),
			},
			leadSeat: 1,
			want:     2,
		},
		{
			name: "leader holds an all-spade trick",
			trick: map[int]cards.Card{
				0: card(cards.Spades, cards.Ace),
				1: card(cards.Spades, cards.Two),
				2: card(cards.Spades, cards.Three),
				3: card(cards.Spades, cards.Four),
			},
			leadSeat: 0,
			want:     0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TrickWinner(tc.trick, tc.leadSeat); got != tc.want {
				t.Fatalf("TrickWinner = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestContribution(t *testing.T) {
	cases := []struct {
		name        string
		bid, tricks int
		want        float64
	}{
		{name: "made bid with two bags", bid: 5, tricks: 7, want: 5.2},
		{name: "exact bid", bid: 5, tricks: 5, want: 5},
		{name: "failed bid loses full value", bid: 5, tricks: 3, want: -5},
		{name: "minimum bid made", bid: 1, tricks: 1, want: 1},
		{name: "maximum bid failed", bid: 13, tricks: 12, want: -13},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Contribution(tc.bid, tc.tricks)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("Contribution(%d, %d) = %v, want %v", tc.bid, tc.tricks, got, tc.want)
			}
		})
	}
}

func TestRoundScoresAccumulate(t *testing.T) {
	prior := map[int]float64{0: 2, 1: -1, 2: 0, 3: 5.1}
	bids := map[int]int{0: 3, 1: 2, 2: 4, 3: 4}
	tricks := map[int]int{0: 4, 1: 1, 2: 4, 3: 4}
	got := RoundScores(bids, tricks, prior)
	want := map[int]float64{0: 5.1, 1: -3, 2: 4, 3: 9.1}
	for seat := 0; seat < 4; seat++ {
		if math.Abs(got[seat]-want[seat]) > 1e-9 {
			t.Errorf("seat %d: got %v, want %v", seat, got[seat], want[seat])
		}
	}
}

func TestValidBid(t *testing.T) {
	for _, v := range []int{1, 7, 13} {
		if !ValidBid(v) {
			t.Errorf("bid %d should be valid", v)
		}
	}
	for _, v := range []int{0, -1, 14, 100} {
		if ValidBid(v) {
			t.Errorf("bid %d should be invalid", v)
		}
	}
}

func TestNextSeatWraps(t *testing.T) {
	want := []int{1, 2, 3, 0}
	for seat := 0; seat < 4; seat++ {
		if got := NextSeat(seat); got != want[seat] {
			t.Errorf("NextSeat(%d) = %d, want %d", seat, got, want[seat])
		}
	}
}
