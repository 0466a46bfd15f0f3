package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

type uGame interface {
	Join(ctx context.Context, id string) ([]entity.Event, error)
	SetName(ctx context.Context, id, name string) ([]entity.Event, error)
	FinishPlacing(ctx context.Context, id string, role entity.Role, ships []entity.ShipPositions) ([]entity.Event, error)
	Attack(ctx context.Context, id string, attacker entity.Role, cell entity.Cell) ([]entity.Event, error)
	Reset(ctx context.Context, id string) ([]entity.Event, error)
	Leave(ctx context.Context, id string) []entity.Event
	RandomPlacement(ctx context.Context, id string) ([]entity.Event, error)
	Sync(ctx context.Context, id string) []entity.Event
}

type connectionObserver interface {
	ConnectionOpened()
	ConnectionClosed()
}

type handlerFunc func(ctx context.Context, client *client, message *Message) ([]entity.Event, error)

type Options struct {
	SendBuffer    int
	MaxNameLength int
}

type Server struct {
	logger   *slog.Logger
	uGame    uGame
	observer connectionObserver
	upgrader websocket.Upgrader
	validate *validator.Validate
	options  Options
	handlers map[string]handlerFunc

	dispatchMutex sync.Mutex

	connections      map[string]*client
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, uGame uGame, observer connectionObserver, options Options) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		uGame:    uGame,
		observer: observer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		validate: validator.New(),
		options:  options,

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*client),
	}

	server.handlers[actionJoin] = server.handleJoin
	server.handlers[actionSetName] = server.handleSetName
	server.handlers[actionFinishedPlacing] = server.handleFinishedPlacing
	server.handlers[actionAttack] = server.handleAttack
	server.handlers[actionResetGame] = server.handleResetGame
	server.handlers[actionRandomPlacement] = server.handleRandomPlacement
	server.handlers[actionSync] = server.handleSync

	return server
}

// Start - starts WebSocket server and shuts it down when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.ServeWS)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeWS upgrades the request and serves the connection until it closes.
func (that *Server) ServeWS(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, that.options.SendBuffer, that.logger)

	that.connectionsMutex.Lock()
	that.connections[client.id] = client
	that.connectionsMutex.Unlock()
	that.observer.ConnectionOpened()

	log.Info("WebSocket connection established", "playerID", client.id)

	go client.writePump()

	ctx := context.WithoutCancel(req.Context())
	client.readPump(func(raw []byte) {
		that.dispatch(ctx, client, raw)
	})

	that.handleDisconnect(ctx, client)
}

func (that *Server) handleDisconnect(ctx context.Context, client *client) {
	that.removeClient(client.id)
	that.observer.ConnectionClosed()

	that.dispatchMutex.Lock()
	defer that.dispatchMutex.Unlock()

	that.deliver(that.uGame.Leave(ctx, client.id))

	that.logger.Info("player disconnected", "method", "handleDisconnect", "playerID", client.id)
}

func (that *Server) removeClient(id string) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	client, ok := that.connections[id]
	if !ok {
		return
	}

	delete(that.connections, id)
	client.close()
}
