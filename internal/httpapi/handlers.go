package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/cardroom/spades-backend/internal/store"
)

// ListRooms reports every room's phase and occupancy, mainly for operators
// poking at a running server.
func ListRooms(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(st.List())
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
