package types

import (
	"slices"

	"github.com/cardroom/spades-backend/internal/cards"
	"github.com/cardroom/spades-backend/internal/engine"
	"github.com/cardroom/spades-backend/internal/room"
)

// CardView is a card ready to render: glyph, color, and whether the viewer
// may legally play it right now.
type CardView struct {
	Suit     cards.Suit `json:"suit"`
	Rank     cards.Rank `json:"rank"`
	Glyph    string     `json:"glyph"`
	Red      bool       `json:"red"`
	Playable bool       `json:"playable,omitempty"`
}

// SeatView is the public face of one seat: everything every player may see.
type SeatView struct {
	Seat      int     `json:"seat"`
	Name      string  `json:"name"`
	Bid       *int    `json:"bid,omitempty"`
	Tricks    int     `json:"tricks"`
	Score     float64 `json:"score"`
	HandCount int     `json:"hand_count"`
}

// RoomView is the read-only projection of the room document for one viewer.
// Only the viewer's own hand is included; opponents appear as card counts.
type RoomView struct {
	RoomID        string              `json:"room_id"`
	Phase         room.Phase          `json:"phase"`
	Round         int                 `json:"round"`
	DealerSeat    int                 `json:"dealer_seat"`
	TurnSeat      int                 `json:"turn_seat"`
	CurrentBidder int                 `json:"current_bidder"`
	LedSuit       cards.Suit          `json:"led_suit,omitempty"`
	Seated        int                 `json:"seated"`
	Capacity      int                 `json:"capacity"`
	Seats         []SeatView          `json:"seats"`
	Trick         map[int]CardView    `json:"trick,omitempty"`
	YourSeat      int                 `json:"your_seat"`
	YourTurn      bool                `json:"your_turn"`
	YourBidTurn   bool                `json:"your_bid_turn"`
	YourHand      []CardView          `json:"your_hand,omitempty"`
	FinalScores   map[int]float64     `json:"final_scores,omitempty"`
}

func cardView(c cards.Card, playable bool) CardView {
	return CardView{Suit: c.Suit, Rank: c.Rank, Glyph: c.Glyph(), Red: c.Red(), Playable: playable}
}

// ProjectRoom redacts the shared document down to what one viewer may see.
func ProjectRoom(roomID string, r room.Room, viewerID string) RoomView {
	viewerSeat := -1
	if seat, ok := r.SeatOf(viewerID); ok {
		viewerSeat = seat
	}

	view := RoomView{
		RoomID:        roomID,
		Phase:         r.Phase,
		Round:         r.Round,
		DealerSeat:    r.DealerSeat,
		TurnSeat:      r.TurnSeat,
		CurrentBidder: r.CurrentBidder,
		LedSuit:       r.LedSuit,
		Seated:        r.SeatCount(),
		Capacity:      room.Seats,
		YourSeat:      viewerSeat,
		YourTurn:      r.Phase == room.PhasePlaying && viewerSeat == r.TurnSeat,
		YourBidTurn:   r.Phase == room.PhaseBidding && viewerSeat == r.CurrentBidder,
		FinalScores:   r.FinalScores,
	}

	for seat, id := range r.PlayerOrder {
		p := r.Players[id]
		sv := SeatView{
			Seat:      seat,
			Name:      p.Name,
			Tricks:    r.TricksWon[seat],
			Score:     r.Scores[seat],
			HandCount: len(r.Hands[id]),
		}
		if bid, ok := r.Bids[seat]; ok {
			b := bid
			sv.Bid = &b
		}
		view.Seats = append(view.Seats, sv)
	}

	if len(r.CurrentTrick) > 0 {
		view.Trick = make(map[int]CardView, len(r.CurrentTrick))
		for seat, c := range r.CurrentTrick {
			view.Trick[seat] = cardView(c, false)
		}
	}

	if viewerSeat >= 0 && r.Hands != nil {
		hand := slices.Clone(r.Hands[viewerID])
		cards.SortHand(hand)
		mayPlay := view.YourTurn && r.PlayedCount < room.Seats
		for _, c := range hand {
			playable := mayPlay && engine.CanPlay(hand, c, r.LedSuit)
			view.YourHand = append(view.YourHand, cardView(c, playable))
		}
	}
	return view
}
