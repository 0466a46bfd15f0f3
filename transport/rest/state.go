package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const defaultEventsLimit = 10

type StateHandler struct {
	logger *slog.Logger
	uGame  uGame
}

func NewStateHandler(logger *slog.Logger, uGame uGame) *StateHandler {
	return &StateHandler{
		logger: logger.With("component", "rest"),
		uGame:  uGame,
	}
}

// State returns the redacted match snapshot.
func (that *StateHandler) State(w http.ResponseWriter, r *http.Request) {
	that.writeJSON(w, http.StatusOK, that.uGame.Snapshot(r.Context()))
}

// Events returns the newest mirrored events, oldest first.
func (that *StateHandler) Events(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Events")

	limit := defaultEventsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := that.uGame.RecentEvents(r.Context(), limit)
	if err != nil {
		log.Error("failed to read recent events", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, records)
}

func (that *StateHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
