package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/battleship-backend/internal/entity"
	"github.com/rocketscienceinc/battleship-backend/internal/metrics"
	"github.com/rocketscienceinc/battleship-backend/internal/usecase"
)

type nopMirror struct{}

func (nopMirror) Publish(entity.MatchSnapshot, []entity.Event) {}

func (nopMirror) RecentEvents(context.Context, int) ([]entity.EventRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	recorder := metrics.New()
	manager := usecase.NewGameManager(logger, nopMirror{}, recorder, false)
	server := New(logger, manager, recorder, Options{SendBuffer: 32, MaxNameLength: 32})

	httpServer := httptest.NewServer(http.HandlerFunc(server.ServeWS))
	t.Cleanup(httpServer.Close)

	return httpServer
}

func dial(t *testing.T, httpServer *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	message := Message{Action: action}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		message.Payload = raw
	}

	require.NoError(t, conn.WriteJSON(message))
}

// expect reads messages until one with action arrives and returns its payload.
func expect(t *testing.T, conn *websocket.Conn, action string) json.RawMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	for {
		var message Message
		require.NoError(t, conn.ReadJSON(&message), "waiting for %s", action)

		if message.Action == action {
			return message.Payload
		}
	}
}

func testShips() []entity.ShipPositions {
	return []entity.ShipPositions{
		{Name: "Carrier", Positions: []entity.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}, {Row: 0, Col: 4}}},
		{Name: "Battleship", Positions: []entity.Cell{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 3}}},
		{Name: "Cruiser", Positions: []entity.Cell{{Row: 4, Col: 0}, {Row: 4, Col: 1}, {Row: 4, Col: 2}}},
		{Name: "Submarine", Positions: []entity.Cell{{Row: 6, Col: 0}, {Row: 6, Col: 1}, {Row: 6, Col: 2}}},
		{Name: "Destroyer", Positions: []entity.Cell{{Row: 8, Col: 0}, {Row: 8, Col: 1}}},
	}
}

// seat connects a player, joins and names them, and returns the connection with its role.
func seat(t *testing.T, httpServer *httptest.Server, name string) (*websocket.Conn, entity.Role) {
	t.Helper()

	conn := dial(t, httpServer)
	send(t, conn, actionJoin, nil)
	expect(t, conn, string(entity.EventPlayerCount))

	send(t, conn, actionSetName, setNamePayload{Name: name})

	var role entity.Role
	require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventAssignedRole)), &role))

	return conn, role
}

func TestServer_Match(t *testing.T) {
	httpServer := newTestServer(t)

	// Given: two seated players
	alice, aliceRole := seat(t, httpServer, "Alice")
	bob, bobRole := seat(t, httpServer, "Bob")
	require.Equal(t, entity.RoleFirst, aliceRole)
	require.Equal(t, entity.RoleSecond, bobRole)

	// When: both submit their fleets
	send(t, alice, actionFinishedPlacing, placementPayload{Role: aliceRole, Ships: testShips()})
	expect(t, bob, string(entity.EventOpponentReady))
	send(t, bob, actionFinishedPlacing, placementPayload{Role: bobRole, Ships: testShips()})

	// Then: both see the attack phase with first to move
	for _, conn := range []*websocket.Conn{alice, bob} {
		var phase entity.Phase
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventPhaseUpdate)), &phase))
		assert.Equal(t, entity.PhaseAttacking, phase)

		var turn entity.Role
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventTurnUpdate)), &turn))
		assert.Equal(t, entity.RoleFirst, turn)
	}

	// When: Alice misses
	send(t, alice, actionAttack, attackPayload{Attacker: aliceRole, Coordinates: &entity.Cell{Row: 9, Col: 9}})

	// Then: both see the result and the turn passes
	for _, conn := range []*websocket.Conn{alice, bob} {
		var result attackResultPayload
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventAttackResult)), &result))
		assert.Equal(t, entity.RoleFirst, result.Attacker)
		assert.Equal(t, entity.RoleSecond, result.Target)
		assert.False(t, result.Hit)
		assert.Equal(t, &entity.Cell{Row: 9, Col: 9}, result.Coordinates)

		var turn entity.Role
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventTurnUpdate)), &turn))
		assert.Equal(t, entity.RoleSecond, turn)
	}

	// And: attacking out of turn is refused privately
	send(t, alice, actionAttack, attackPayload{Attacker: aliceRole, Coordinates: &entity.Cell{Row: 0, Col: 0}})

	var message string
	require.NoError(t, json.Unmarshal(expect(t, alice, string(entity.EventGameError)), &message))
	assert.Contains(t, message, "not your turn")
}

func TestServer_Errors(t *testing.T) {
	httpServer := newTestServer(t)

	t.Run("Malformed message", func(t *testing.T) {
		conn := dial(t, httpServer)

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

		var message string
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventGameError)), &message))
		assert.Equal(t, errBadMessage.Error(), message)
	})

	t.Run("Unknown action", func(t *testing.T) {
		conn := dial(t, httpServer)

		send(t, conn, "fly", nil)

		var message string
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventGameError)), &message))
		assert.Contains(t, message, "unknown action")
	})

	t.Run("Attack without coordinates", func(t *testing.T) {
		conn := dial(t, httpServer)

		send(t, conn, actionAttack, map[string]string{"attacker": "first"})

		var message string
		require.NoError(t, json.Unmarshal(expect(t, conn, string(entity.EventGameError)), &message))
		assert.Contains(t, message, errBadMessage.Error())
	})

	t.Run("Name too long", func(t *testing.T) {
		conn := dial(t, httpServer)
		send(t, conn, actionJoin, nil)
		expect(t, conn, string(entity.EventPlayerCount))

		send(t, conn, actionSetName, setNamePayload{Name: strings.Repeat("x", 33)})

		expect(t, conn, string(entity.EventGameError))
	})
}

func TestServer_RoomFull(t *testing.T) {
	httpServer := newTestServer(t)
	seat(t, httpServer, "Alice")
	seat(t, httpServer, "Bob")

	// When: a third player joins a running match
	carol := dial(t, httpServer)
	send(t, carol, actionJoin, nil)

	// Then: the join is refused
	var message string
	require.NoError(t, json.Unmarshal(expect(t, carol, string(entity.EventGameError)), &message))
	assert.Contains(t, message, "game is full")
}

func TestServer_Disconnect(t *testing.T) {
	httpServer := newTestServer(t)
	alice, _ := seat(t, httpServer, "Alice")
	bob, _ := seat(t, httpServer, "Bob")

	// When: Alice drops
	require.NoError(t, alice.Close())

	// Then: Bob is told which seat is free
	var role entity.Role
	require.NoError(t, json.Unmarshal(expect(t, bob, string(entity.EventPlayerDisconnected)), &role))
	assert.Equal(t, entity.RoleFirst, role)
}

func TestServer_RandomPlacementAndSync(t *testing.T) {
	httpServer := newTestServer(t)
	alice, _ := seat(t, httpServer, "Alice")

	send(t, alice, actionRandomPlacement, nil)

	var suggestion suggestedFleetPayload
	require.NoError(t, json.Unmarshal(expect(t, alice, string(entity.EventSuggestedFleet)), &suggestion))
	assert.Len(t, suggestion.Ships, len(entity.Catalog))

	send(t, alice, actionSync, nil)

	var snapshot entity.MatchSnapshot
	require.NoError(t, json.Unmarshal(expect(t, alice, string(entity.EventGameState)), &snapshot))
	assert.Equal(t, entity.PhasePlacing, snapshot.Phase)
	require.Len(t, snapshot.Players, 1)
	assert.Equal(t, "Alice", snapshot.Players[0].Name)
}
