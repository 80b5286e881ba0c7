package store

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardroom/spades-backend/internal/room"
)

type storeMsg interface{ isStoreMsg() }

type createRoom struct {
	initial room.Room
	reply   chan *Document
}

type getRoom struct {
	id    string
	reply chan *Document
}

type findRoom struct {
	pred  func(room.Room) bool
	reply chan *Document
}

type removeRoom struct{ id string }

type listRooms struct {
	reply chan []Summary
}

type shutdownStore struct{}

func (createRoom) isStoreMsg()    {}
func (getRoom) isStoreMsg()       {}
func (findRoom) isStoreMsg()      {}
func (removeRoom) isStoreMsg()    {}
func (listRooms) isStoreMsg()     {}
func (shutdownStore) isStoreMsg() {}

// Summary is the room-listing projection served by the HTTP API.
type Summary struct {
	ID      string     `json:"id"`
	Phase   room.Phase `json:"phase"`
	Seated  int        `json:"seated"`
	Round   int        `json:"round"`
	Version int        `json:"version"`
}

// Store is the collection of room documents. A single goroutine owns the
// registry; individual documents run their own loops.
type Store struct {
	inbox    chan storeMsg
	docs     map[string]*Document
	onCreate func(*Document)
	ctx      context.Context
	cancel   context.CancelFunc
	log      *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithCreateHook runs fn for every room document created, before it is
// returned to the creator. Used to attach observers such as the archive.
func WithCreateHook(fn func(*Document)) Option {
	return func(s *Store) { s.onCreate = fn }
}

func New(parent context.Context, log *zap.Logger, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(parent)
	s := &Store{
		inbox:  make(chan storeMsg, 64),
		docs:   make(map[string]*Document),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s
}

// CreateRoom registers a new document seeded with the given state.
func (s *Store) CreateRoom(initial room.Room) (*Document, error) {
	reply := make(chan *Document, 1)
	select {
	case s.inbox <- createRoom{initial: initial, reply: reply}:
	case <-s.ctx.Done():
		return nil, ErrStoreShutdown
	}
	select {
	case doc := <-reply:
		return doc, nil
	case <-s.ctx.Done():
		return nil, ErrStoreShutdown
	}
}

// Room returns the document with the given id, or false.
func (s *Store) Room(id string) (*Document, bool) {
	reply := make(chan *Document, 1)
	select {
	case s.inbox <- getRoom{id: id, reply: reply}:
	case <-s.ctx.Done():
		return nil, false
	}
	select {
	case doc := <-reply:
		return doc, doc != nil
	case <-s.ctx.Done():
		return nil, false
	}
}

// Find scans the collection for the first document whose current state
// matches pred. The match is a point-in-time read; callers that go on to
// write must re-check their preconditions inside a Txn.
func (s *Store) Find(pred func(room.Room) bool) (*Document, bool) {
	reply := make(chan *Document, 1)
	select {
	case s.inbox <- findRoom{pred: pred, reply: reply}:
	case <-s.ctx.Done():
		return nil, false
	}
	select {
	case doc := <-reply:
		return doc, doc != nil
	case <-s.ctx.Done():
		return nil, false
	}
}

// List returns a summary of every room.
func (s *Store) List() []Summary {
	reply := make(chan []Summary, 1)
	select {
	case s.inbox <- listRooms{reply: reply}:
	case <-s.ctx.Done():
		return nil
	}
	select {
	case out := <-reply:
		return out
	case <-s.ctx.Done():
		return nil
	}
}

// Remove drops a document from the registry and shuts it down.
func (s *Store) Remove(id string) {
	select {
	case s.inbox <- removeRoom{id: id}:
	case <-s.ctx.Done():
	}
}

// Close shuts down the registry and every document.
func (s *Store) Close() {
	select {
	case s.inbox <- shutdownStore{}:
	case <-s.ctx.Done():
	}
}

func (s *Store) loop() {
	for {
		select {
		case <-s.ctx.Done():
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case createRoom:
				id := uuid.NewString()
				doc := newDocument(s.ctx, id, msg.initial, s.log)
				s.docs[id] = doc
				if s.onCreate != nil {
					s.onCreate(doc)
				}
				s.log.Info("room created", zap.String("room", id))
				msg.reply <- doc

			case getRoom:
				msg.reply <- s.docs[msg.id] // may be nil

			case findRoom:
				var found *Document
				for _, doc := range s.docs {
					if msg.pred(doc.View().Room) {
						found = doc
						break
					}
				}
				msg.reply <- found

			case listRooms:
				out := make([]Summary, 0, len(s.docs))
				for id, doc := range s.docs {
					snap := doc.View()
					out = append(out, Summary{
						ID:      id,
						Phase:   snap.Room.Phase,
						Seated:  snap.Room.SeatCount(),
						Round:   snap.Room.Round,
						Version: snap.Version,
					})
				}
				msg.reply <- out

			case removeRoom:
				if doc := s.docs[msg.id]; doc != nil {
					doc.cancel()
					delete(s.docs, msg.id)
				}

			case shutdownStore:
				for id, doc := range s.docs {
					doc.cancel()
					delete(s.docs, id)
				}
				s.cancel()
				return
			}
		}
	}
}
