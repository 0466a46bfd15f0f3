package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type uGame interface {
	Snapshot(ctx context.Context) entity.MatchSnapshot
	RecentEvents(ctx context.Context, limit int) ([]entity.EventRecord, error)
}

// NewRouter wires the HTTP routes. metricsHandler serves /metrics.
func NewRouter(logger *slog.Logger, uGame uGame, storage pinger, metricsHandler http.Handler) http.Handler {
	pingHandler := NewPingHandler(storage)
	stateHandler := NewStateHandler(logger, uGame)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler.PingHandler)
	r.Get("/metrics", metricsHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", stateHandler.State)
		r.Get("/events", stateHandler.Events)
	})

	return r
}

// Start - starts HTTP server and shuts it down when ctx is done.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
