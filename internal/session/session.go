package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardroom/spades-backend/internal/room"
	"github.com/cardroom/spades-backend/internal/store"
)

var ErrNoSeat = errors.New("no seat available")

// joinRetries bounds how many lost seat races we absorb before giving up.
// Each retry re-scans the collection, so hitting the bound means creation
// itself kept failing.
const joinRetries = 8

// Seat is the outcome of a join: an identity token, a claimed seat and the
// room document the client should subscribe to.
type Seat struct {
	RoomID   string
	PlayerID string
	Position int
	Doc      *store.Document
}

// Manager assigns seats. Joins are the one write path that must be
// transactional: two clients scanning at the same time can race for the last
// seat, and only the commit-time re-check decides the winner.
type Manager struct {
	store *store.Store
	log   *zap.Logger
}

func NewManager(st *store.Store, log *zap.Logger) *Manager {
	return &Manager{store: st, log: log}
}

// FindOrJoin scans for an open room and claims the next seat in it, or
// creates a fresh room with the caller at seat 0. The claim transaction
// re-checks phase and capacity against the committed document; a lost race
// falls back to another scan, since the same room may still have space.
func (m *Manager) FindOrJoin(name string) (*Seat, error) {
	playerID := uuid.NewString()

	for attempt := 0; attempt < joinRetries; attempt++ {
		doc, ok := m.store.Find(func(r room.Room) bool { return r.Open() })
		if !ok {
			seat, err := m.create(playerID, name)
			if err != nil {
				return nil, err
			}
			return seat, nil
		}

		claimed := -1
		err := doc.Txn(func(r *room.Room) bool {
			if !r.Open() {
				return false
			}
			claimed = len(r.PlayerOrder)
			r.Players[playerID] = room.PlayerInfo{Name: name, Seat: claimed}
			r.PlayerOrder = append(r.PlayerOrder, playerID)
			if len(r.PlayerOrder) == room.Seats {
				r.Phase = room.PhaseDealing
			}
			return true
		})
		switch {
		case err == nil:
			m.registerCleanup(doc, playerID)
			m.log.Info("seat claimed",
				zap.String("room", doc.ID()),
				zap.String("player", playerID),
				zap.Int("seat", claimed))
			return &Seat{RoomID: doc.ID(), PlayerID: playerID, Position: claimed, Doc: doc}, nil
		case errors.Is(err, store.ErrTxnAborted) || errors.Is(err, store.ErrRoomClosed):
			m.log.Debug("seat race lost, rescanning", zap.String("room", doc.ID()))
			continue
		default:
			return nil, fmt.Errorf("joining room %s: %w", doc.ID(), err)
		}
	}
	return nil, ErrNoSeat
}

func (m *Manager) create(playerID, name string) (*Seat, error) {
	doc, err := m.store.CreateRoom(room.New(playerID, name))
	if err != nil {
		return nil, fmt.Errorf("creating room: %w", err)
	}
	m.registerCleanup(doc, playerID)
	m.log.Info("room opened", zap.String("room", doc.ID()), zap.String("player", playerID))
	return &Seat{RoomID: doc.ID(), PlayerID: playerID, Position: 0, Doc: doc}, nil
}

// registerCleanup removes the player's entry when the connection drops. The
// seat slot itself is not reclaimed; an abandoned room stays a seat short.
func (m *Manager) registerCleanup(doc *store.Document, playerID string) {
	doc.OnDisconnect(playerID, func(r *room.Room) {
		delete(r.Players, playerID)
	})
}
