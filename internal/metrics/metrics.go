package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
	"github.com/rocketscienceinc/battleship-backend/internal/entity"
)

const namespace = "battleship"

// Metrics holds the game collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	players     prometheus.Gauge
	connections prometheus.Gauge
	attacks     *prometheus.CounterVec
	gamesOver   prometheus.Counter
	resets      prometheus.Counter
	rejections  *prometheus.CounterVec
}

func New() *Metrics {
	that := &Metrics{
		registry: prometheus.NewRegistry(),

		players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Registered sessions in the room.",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open websocket connections.",
		}),
		attacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attacks_total",
			Help:      "Resolved attacks by result.",
		}, []string{"result"}),
		gamesOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Matches that ended with a winner.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_resets_total",
			Help:      "Match resets.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Refused requests by action and reason.",
		}, []string{"action", "reason"}),
	}

	that.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		that.players,
		that.connections,
		that.attacks,
		that.gamesOver,
		that.resets,
		that.rejections,
	)

	return that
}

func (that *Metrics) ObserveEvents(events []entity.Event) {
	for _, event := range events {
		switch event.Type {
		case entity.EventAttackResult:
			switch {
			case event.ShipDestroyed != "":
				that.attacks.WithLabelValues("sunk").Inc()
			case event.Hit:
				that.attacks.WithLabelValues("hit").Inc()
			default:
				that.attacks.WithLabelValues("miss").Inc()
			}
		case entity.EventGameOver:
			that.gamesOver.Inc()
		case entity.EventGameReset:
			that.resets.Inc()
		}
	}
}

func (that *Metrics) ObserveRejection(action string, err error) {
	that.rejections.WithLabelValues(action, Reason(err)).Inc()
}

func (that *Metrics) SetPlayers(count int) {
	that.players.Set(float64(count))
}

func (that *Metrics) ConnectionOpened() {
	that.connections.Inc()
}

func (that *Metrics) ConnectionClosed() {
	that.connections.Dec()
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}

var reasons = []struct {
	err    error
	reason string
}{
	{apperror.ErrRoomFull, "room_full"},
	{apperror.ErrInvalidPlacement, "invalid_placement"},
	{apperror.ErrDuplicateSubmission, "duplicate_submission"},
	{apperror.ErrNotYourTurn, "not_your_turn"},
	{apperror.ErrGameFinished, "game_over"},
	{apperror.ErrAlreadyAttacked, "already_attacked"},
	{apperror.ErrGameIsNotStarted, "not_started"},
	{apperror.ErrPlacingFinished, "placing_finished"},
	{apperror.ErrInvalidCell, "invalid_cell"},
	{apperror.ErrNoRole, "no_role"},
	{apperror.ErrRoleMismatch, "role_mismatch"},
	{apperror.ErrSessionNotFound, "session_not_found"},
}

// Reason maps an error to a bounded label value.
func Reason(err error) string {
	for _, known := range reasons {
		if errors.Is(err, known.err) {
			return known.reason
		}
	}
	return "other"
}
