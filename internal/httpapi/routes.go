package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardroom/spades-backend/internal/session"
	"github.com/cardroom/spades-backend/internal/store"
	"github.com/cardroom/spades-backend/internal/ws"
)

func SetupRoutes(st *store.Store, sessions *session.Manager, wsOpts ws.Options) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/rooms", ListRooms(st))
	r.Get("/ws", ws.Handler(sessions, wsOpts))
	return r
}
