package player

import (
	"context"
	"errors"
	"maps"
	"math/rand"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/cardroom/spades-backend/internal/cards"
	"github.com/cardroom/spades-backend/internal/engine"
	"github.com/cardroom/spades-backend/internal/room"
	"github.com/cardroom/spades-backend/internal/session"
	"github.com/cardroom/spades-backend/internal/store"
)

var ErrClientClosed = errors.New("player client closed")

type intentKind int

const (
	intentBid intentKind = iota
	intentPlay
)

type intent struct {
	kind  intentKind
	bid   int
	card  cards.Card
	reply chan error
}

// Client is one seat's reactive game client. It holds a single live
// subscription to the room document and re-runs its reaction logic on every
// delivered snapshot: the dealer deals, a completed trick is resolved after
// a settle delay, a finished round is scored. Every phase-effecting write
// re-checks its precondition against the committed document, so reactions
// stay idempotent under repeated snapshots and under four clients observing
// the same trigger.
type Client struct {
	playerID string
	seat     int
	doc      *store.Document
	rng      *rand.Rand
	settle   time.Duration
	log      *zap.Logger

	snaps   <-chan store.Snapshot
	intents chan intent
	out     chan store.Snapshot
	done    chan struct{}

	last room.Room // latest snapshot, owned by the run loop
}

// New subscribes the client to its room. Run must be started for the client
// to make progress.
func New(seat *session.Seat, settle time.Duration, rng *rand.Rand, log *zap.Logger) (*Client, error) {
	snaps, err := seat.Doc.Subscribe(seat.PlayerID)
	if err != nil {
		return nil, err
	}
	return &Client{
		playerID: seat.PlayerID,
		seat:     seat.Position,
		doc:      seat.Doc,
		rng:      rng,
		settle:   settle,
		log: log.With(
			zap.String("room", seat.RoomID),
			zap.Int("seat", seat.Position)),
		snaps:   snaps,
		intents: make(chan intent),
		out:     make(chan store.Snapshot, 32),
		done:    make(chan struct{}),
	}, nil
}

func (c *Client) Seat() int        { return c.seat }
func (c *Client) PlayerID() string { return c.playerID }

// Snapshots republishes every observed snapshot for the presentation layer.
// When the consumer lags, the oldest snapshot is discarded; only the latest
// state matters to a renderer.
func (c *Client) Snapshots() <-chan store.Snapshot { return c.out }

// Close detaches the client from the room, firing its disconnect cleanup.
func (c *Client) Close() {
	c.doc.Unsubscribe(c.playerID)
}

// Run drives the client until its subscription closes or ctx is canceled.
// All state access happens on this goroutine.
func (c *Client) Run(ctx context.Context) error {
	defer close(c.done)

	var settleC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snap, ok := <-c.snaps:
			if !ok {
				return nil
			}
			c.last = snap.Room
			c.react(snap.Room, &settleC)
			c.publish(snap)

		case <-settleC:
			settleC = nil
			c.resolveTrick()

		case in := <-c.intents:
			in.reply <- c.handleIntent(in)
		}
	}
}

// react inspects a fresh snapshot and performs whatever side effect this
// client currently has agency over.
func (c *Client) react(r room.Room, settleC *<-chan time.Time) {
	if _, seated := r.Players[c.playerID]; !seated {
		return
	}
	switch r.Phase {
	case room.PhaseDealing:
		if r.DealerSeat == c.seat && r.Hands == nil {
			c.deal()
		}
	case room.PhasePlaying:
		// Let everyone see the fourth card before the trick clears.
		if r.PlayedCount == room.Seats && *settleC == nil {
			*settleC = time.After(c.settle)
		}
	case room.PhaseRoundEnd:
		c.endRound()
	}
}

// deal builds and distributes one round's hands. The guard on Hands makes
// the deal happen once even if the dealer observes the trigger repeatedly.
func (c *Client) deal() {
	err := c.doc.Update(func(r *room.Room) {
		if r.Phase != room.PhaseDealing || r.Hands != nil || r.DealerSeat != c.seat {
			return
		}
		deck := cards.NewDeck()
		cards.Shuffle(deck, c.rng)
		hands := make(map[string][]cards.Card, room.Seats)
		for _, id := range r.PlayerOrder {
			hands[id] = slices.Clone(deck[:room.HandSize])
			deck = deck[room.HandSize:]
		}
		first := engine.NextSeat(r.DealerSeat)
		r.Hands = hands
		r.Bids = map[int]int{}
		r.TricksWon = map[int]int{0: 0, 1: 0, 2: 0, 3: 0}
		r.CurrentTrick = map[int]cards.Card{}
		r.LedSuit = ""
		r.PlayedCount = 0
		r.TurnSeat = first
		r.CurrentBidder = first
		r.Phase = room.PhaseBidding
	})
	if err != nil {
		c.log.Debug("deal skipped", zap.Error(err))
		return
	}
	c.log.Info("dealt round")
}

// resolveTrick runs once the settle delay elapses. Any of the four clients
// may resolve; the PlayedCount re-check means only the first write counts.
func (c *Client) resolveTrick() {
	err := c.doc.Update(func(r *room.Room) {
		if r.Phase != room.PhasePlaying || r.PlayedCount != room.Seats {
			return
		}
		// After four plays the turn token has rotated back to the leader.
		winner := engine.TrickWinner(r.CurrentTrick, r.TurnSeat)
		r.TricksWon[winner]++
		r.CurrentTrick = map[int]cards.Card{}
		r.LedSuit = ""
		r.PlayedCount = 0
		r.TurnSeat = winner
		if r.TotalTricks() == room.HandSize {
			r.Phase = room.PhaseRoundEnd
		}
	})
	if err != nil {
		c.log.Debug("trick resolution skipped", zap.Error(err))
	}
}

// endRound folds the round into the cumulative scores, rotates the dealer
// and either deals again or ends the game after the final round.
func (c *Client) endRound() {
	var finished bool
	err := c.doc.Update(func(r *room.Room) {
		if r.Phase != room.PhaseRoundEnd {
			return
		}
		r.Scores = engine.RoundScores(r.Bids, r.TricksWon, r.Scores)
		if r.Round >= room.MaxRounds {
			r.FinalScores = maps.Clone(r.Scores)
			r.Phase = room.PhaseGameEnd
			finished = true
			return
		}
		r.DealerSeat = engine.NextSeat(r.DealerSeat)
		r.Round++
		r.Hands = nil
		r.Phase = room.PhaseDealing
	})
	if err != nil {
		c.log.Debug("round finalization skipped", zap.Error(err))
		return
	}
	if finished {
		c.log.Info("game over")
	}
}

// SubmitBid records this seat's bid. Invalid values and out-of-turn calls
// are rejected locally, before any write reaches the document.
func (c *Client) SubmitBid(ctx context.Context, value int) error {
	return c.send(ctx, intent{kind: intentBid, bid: value})
}

// PlayCard plays a card from this seat's hand, enforcing the follow-suit
// rule locally before writing.
func (c *Client) PlayCard(ctx context.Context, card cards.Card) error {
	return c.send(ctx, intent{kind: intentPlay, card: card})
}

func (c *Client) send(ctx context.Context, in intent) error {
	in.reply = make(chan error, 1)
	select {
	case c.intents <- in:
	case <-c.done:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-in.reply:
		return err
	case <-c.done:
		return ErrClientClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) handleIntent(in intent) error {
	switch in.kind {
	case intentBid:
		return c.submitBid(in.bid)
	case intentPlay:
		return c.playCard(in.card)
	}
	return nil
}

func (c *Client) submitBid(value int) error {
	if !engine.ValidBid(value) {
		return engine.ErrInvalidBid
	}
	if c.last.Phase != room.PhaseBidding || c.last.CurrentBidder != c.seat {
		return engine.ErrWrongTurn
	}
	return c.doc.Update(func(r *room.Room) {
		if r.Phase != room.PhaseBidding || r.CurrentBidder != c.seat {
			return
		}
		if _, bid := r.Bids[c.seat]; bid {
			return
		}
		r.Bids[c.seat] = value
		r.CurrentBidder = engine.NextSeat(c.seat)
		// One full rotation from the seat left of the dealer, all bids in.
		if r.CurrentBidder == engine.NextSeat(r.DealerSeat) && r.AllBidsIn() {
			r.Phase = room.PhasePlaying
		}
	})
}

func (c *Client) playCard(card cards.Card) error {
	r := c.last
	if r.Phase != room.PhasePlaying {
		return engine.ErrWrongTurn
	}
	if r.TurnSeat != c.seat || r.PlayedCount == room.Seats {
		return engine.ErrWrongTurn
	}
	hand := r.Hands[c.playerID]
	if !cards.Contains(hand, card) {
		return engine.ErrNotInHand
	}
	if !engine.CanPlay(hand, card, r.LedSuit) {
		return engine.ErrIllegalPlay
	}
	return c.doc.Update(func(r *room.Room) {
		if r.Phase != room.PhasePlaying || r.TurnSeat != c.seat {
			return
		}
		if _, played := r.CurrentTrick[c.seat]; played {
			return
		}
		hand := r.Hands[c.playerID]
		if !engine.CanPlay(hand, card, r.LedSuit) {
			return
		}
		if r.PlayedCount == 0 {
			// The first card of a trick always sets the led suit, written
			// atomically with the card itself.
			r.LedSuit = card.Suit
		}
		r.Hands[c.playerID] = cards.Remove(hand, card)
		r.CurrentTrick[c.seat] = card
		r.PlayedCount++
		r.TurnSeat = engine.NextSeat(c.seat)
	})
}

func (c *Client) publish(snap store.Snapshot) {
	for {
		select {
		case c.out <- snap:
			return
		default:
			select {
			case <-c.out:
			default:
			}
		}
	}
}
