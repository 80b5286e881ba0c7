package ws

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/cardroom/spades-backend/internal/engine"
	"github.com/cardroom/spades-backend/internal/player"
	"github.com/cardroom/spades-backend/internal/session"
	"github.com/cardroom/spades-backend/pkg/types"
)

const writeTimeout = 3 * time.Second

// Options carries the per-connection knobs the game client needs.
type Options struct {
	Settle time.Duration
	Seed   func() int64 // per-client shuffle seed source
	Logger *zap.Logger
}

// Handler upgrades the connection, seats the player on the first Join
// message and then bridges intents in and redacted snapshots out.
func Handler(sessions *session.Manager, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		seat, err := join(ctx, conn, sessions)
		if err != nil {
			writeError(ctx, conn, err)
			return
		}

		rng := rand.New(rand.NewSource(opts.Seed()))
		client, err := player.New(seat, opts.Settle, rng, opts.Logger)
		if err != nil {
			writeError(ctx, conn, err)
			return
		}
		defer client.Close()

		go func() {
			defer cancel()
			_ = client.Run(ctx)
		}()

		// Writer: project each snapshot for this viewer and push it out.
		go func() {
			defer cancel()
			for snap := range client.Snapshots() {
				view := types.ProjectRoom(seat.RoomID, snap.Room, seat.PlayerID)
				msg := types.ServerMessage{Type: "RoomSnapshot", Version: snap.Version, View: &view}
				payload, _ := json.Marshal(msg)
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err := conn.Write(wctx, websocket.MessageText, payload)
				wcancel()
				if err != nil {
					return
				}
			}
		}()

		// Reader: decode intents and hand them to the game client.
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				if s := websocket.CloseStatus(err); s != websocket.StatusNormalClosure && s != websocket.StatusGoingAway {
					opts.Logger.Debug("connection dropped", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(ctx, conn, errors.New("bad json"))
				continue
			}

			switch cm.Type {
			case "SubmitBid":
				if err := client.SubmitBid(ctx, cm.Bid); err != nil {
					writeError(ctx, conn, err)
				}
			case "PlayCard":
				if cm.Card == nil {
					writeError(ctx, conn, engine.ErrNotInHand)
					continue
				}
				if err := client.PlayCard(ctx, *cm.Card); err != nil {
					writeError(ctx, conn, err)
				}
			default:
				writeError(ctx, conn, errors.New("unknown type"))
			}
		}
	}
}

// join waits for the opening Join message and claims a seat.
func join(ctx context.Context, conn *websocket.Conn, sessions *session.Manager) (*session.Seat, error) {
	rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, data, err := conn.Read(rctx)
	if err != nil {
		return nil, err
	}
	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, errors.New("bad json")
	}
	if cm.Type != "Join" {
		return nil, errors.New("expected Join")
	}
	name := cm.Name
	if name == "" {
		name = "Player"
	}
	return sessions.FindOrJoin(name)
}

func writeError(ctx context.Context, conn *websocket.Conn, err error) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "Error", Error: err.Error()})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
