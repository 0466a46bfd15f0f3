package rest

import (
	"context"
	"net/http"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

type pingHandler struct {
	storage pinger
}

// NewPingHandler answers pong while storage is reachable.
func NewPingHandler(storage pinger) PingHandler {
	return &pingHandler{storage: storage}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if err := that.storage.Ping(r.Context()); err != nil {
		http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
