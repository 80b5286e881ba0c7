package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cardroom/spades-backend/internal/room"
)

var ErrRoomClosed = errors.New("room is closed to writes")
var ErrTxnAborted = errors.New("transaction aborted")
var ErrStoreShutdown = errors.New("store shut down")

// Snapshot is one full-document state delivered to subscribers. Versions are
// strictly increasing; readers re-derive everything from the whole document.
type Snapshot struct {
	Version int
	Room    room.Room
}

type docMsg interface{ isDocMsg() }

type subscribe struct {
	clientID string
	outbox   chan Snapshot
}

type unsubscribe struct{ clientID string }

type onDisconnect struct {
	clientID string
	fn       func(*room.Room)
}

type update struct {
	fn    func(*room.Room)
	reply chan error
}

type txn struct {
	fn    func(*room.Room) bool
	reply chan error
}

type getView struct {
	reply chan Snapshot
}

func (subscribe) isDocMsg()    {}
func (unsubscribe) isDocMsg()  {}
func (onDisconnect) isDocMsg() {}
func (update) isDocMsg()       {}
func (txn) isDocMsg()          {}
func (getView) isDocMsg()      {}

// Document is one replicated room document. A single goroutine owns the
// state; every read and write goes through the inbox, so writes apply in a
// total order and each subscriber observes a strictly increasing sequence of
// snapshots.
type Document struct {
	id      string
	inbox   chan docMsg
	state   room.Room
	version int
	subs    map[string]chan Snapshot
	cleanup map[string][]func(*room.Room)
	ctx     context.Context
	cancel  context.CancelFunc
	log     *zap.Logger
}

const outboxSize = 32

func newDocument(parent context.Context, id string, initial room.Room, log *zap.Logger) *Document {
	ctx, cancel := context.WithCancel(parent)
	d := &Document{
		id:      id,
		inbox:   make(chan docMsg, 64),
		state:   initial,
		version: 1,
		subs:    make(map[string]chan Snapshot),
		cleanup: make(map[string][]func(*room.Room)),
		ctx:     ctx,
		cancel:  cancel,
		log:     log.With(zap.String("room", id)),
	}
	go d.loop()
	return d
}

func (d *Document) ID() string { return d.id }

// Subscribe registers a client and immediately delivers the current
// snapshot. The channel is closed if the client falls too far behind or the
// document shuts down.
func (d *Document) Subscribe(clientID string) (<-chan Snapshot, error) {
	out := make(chan Snapshot, outboxSize)
	select {
	case d.inbox <- subscribe{clientID: clientID, outbox: out}:
		return out, nil
	case <-d.ctx.Done():
		return nil, ErrStoreShutdown
	}
}

// Unsubscribe detaches a client and fires its disconnect hooks.
func (d *Document) Unsubscribe(clientID string) {
	select {
	case d.inbox <- unsubscribe{clientID: clientID}:
	case <-d.ctx.Done():
	}
}

// OnDisconnect registers cleanup to run against the document when the client
// detaches, the server-side equivalent of a remove-on-disconnect hook.
func (d *Document) OnDisconnect(clientID string, fn func(*room.Room)) {
	select {
	case d.inbox <- onDisconnect{clientID: clientID, fn: fn}:
	case <-d.ctx.Done():
	}
}

// Update applies an unconditional field-merge write. The callback sees the
// current committed document, so idempotency guards belong inside it.
func (d *Document) Update(fn func(*room.Room)) error {
	reply := make(chan error, 1)
	select {
	case d.inbox <- update{fn: fn, reply: reply}:
	case <-d.ctx.Done():
		return ErrStoreShutdown
	}
	select {
	case err := <-reply:
		return err
	case <-d.ctx.Done():
		return ErrStoreShutdown
	}
}

// Txn applies a conditional read-modify-write: the callback re-checks its
// preconditions against the committed value and returns false to abort.
func (d *Document) Txn(fn func(*room.Room) bool) error {
	reply := make(chan error, 1)
	select {
	case d.inbox <- txn{fn: fn, reply: reply}:
	case <-d.ctx.Done():
		return ErrStoreShutdown
	}
	select {
	case err := <-reply:
		return err
	case <-d.ctx.Done():
		return ErrStoreShutdown
	}
}

// View returns the current snapshot without subscribing.
func (d *Document) View() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case d.inbox <- getView{reply: reply}:
	case <-d.ctx.Done():
		return Snapshot{}
	}
	select {
	case snap := <-reply:
		return snap
	case <-d.ctx.Done():
		return Snapshot{}
	}
}

func (d *Document) loop() {
	for {
		select {
		case <-d.ctx.Done():
			d.shutdown()
			return

		case m := <-d.inbox:
			switch msg := m.(type) {
			case subscribe:
				d.subs[msg.clientID] = msg.outbox
				msg.outbox <- Snapshot{Version: d.version, Room: d.state.Clone()}

			case unsubscribe:
				d.detach(msg.clientID)

			case onDisconnect:
				d.cleanup[msg.clientID] = append(d.cleanup[msg.clientID], msg.fn)

			case update:
				if d.state.Phase == room.PhaseGameEnd {
					msg.reply <- ErrRoomClosed
					break
				}
				msg.fn(&d.state)
				d.commit()
				msg.reply <- nil

			case txn:
				if d.state.Phase == room.PhaseGameEnd {
					msg.reply <- ErrRoomClosed
					break
				}
				// Run against a copy so an aborted transaction leaves the
				// committed document untouched.
				next := d.state.Clone()
				if !msg.fn(&next) {
					msg.reply <- ErrTxnAborted
					break
				}
				d.state = next
				d.commit()
				msg.reply <- nil

			case getView:
				msg.reply <- Snapshot{Version: d.version, Room: d.state.Clone()}
			}
		}
	}
}

// commit bumps the version and fans the new snapshot out to every
// subscriber. A subscriber with a full outbox is dropped as if it had
// disconnected.
func (d *Document) commit() {
	d.version++
	snap := Snapshot{Version: d.version, Room: d.state.Clone()}
	var dropped []string
	for id, ch := range d.subs {
		select {
		case ch <- snap:
		default:
			dropped = append(dropped, id)
		}
	}
	for _, id := range dropped {
		d.log.Warn("dropping slow subscriber", zap.String("client", id))
		d.detach(id)
	}
}

// detach closes the client's channel and runs its disconnect hooks. Hooks
// are skipped once the document is frozen at gameEnd.
func (d *Document) detach(clientID string) {
	if ch, ok := d.subs[clientID]; ok {
		close(ch)
		delete(d.subs, clientID)
	}
	hooks := d.cleanup[clientID]
	delete(d.cleanup, clientID)
	if len(hooks) == 0 || d.state.Phase == room.PhaseGameEnd {
		return
	}
	for _, fn := range hooks {
		fn(&d.state)
	}
	d.commit()
}

func (d *Document) shutdown() {
	for id, ch := range d.subs {
		close(ch)
		delete(d.subs, id)
	}
	d.cancel()
}
