package syncserver

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ServerEventType enumerates the wire-level event kinds broadcast to
// WebSocket subscribers (spec.md §6).
type ServerEventType string

const (
	EventStateChanged      ServerEventType = "state_changed"
	EventClientConnected   ServerEventType = "client_connected"
	EventClientDisconnected ServerEventType = "client_disconnected"
	EventGitChanged        ServerEventType = "git_changed"
)

// ServerEvent is one JSON frame sent to every connected WebSocket client.
type ServerEvent struct {
	Type           ServerEventType `json:"type"`
	Repo           string          `json:"repo,omitempty"`
	ComparisonKey  string          `json:"comparison_key,omitempty"`
	Version        uint64          `json:"version,omitempty"`
	ClientID       string          `json:"client_id,omitempty"`
}

// client tracks one connected WebSocket subscriber.
type client struct {
	id          string
	connectedAt time.Time

	mu         sync.Mutex
	lastActive time.Time
}

func (c *client) touch() {
	c.mu.Lock()
	c.lastActive = time.Now()
	c.mu.Unlock()
}

// ClientInfo is the JSON shape returned by GET /api/server/clients.
type ClientInfo struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
	LastActive  time.Time `json:"last_active"`
}

func (s *Server) snapshotClients() []ClientInfo {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	out := make([]ClientInfo, 0, len(s.clients))
	for _, c := range s.clients {
		c.mu.Lock()
		out = append(out, ClientInfo{ID: c.id, ConnectedAt: c.connectedAt, LastActive: c.lastActive})
		c.mu.Unlock()
	}
	return out
}

// broadcast fans an event out to every subscriber's per-connection
// channel. Slow subscribers are dropped rather than allowed to stall the
// broadcaster (spec.md §5's single-local-channel ordering guarantee only
// promises order, not delivery to a wedged client).
func (s *Server) broadcast(ev ServerEvent) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// bearerSubprotocolPrefix is the WebSocket subprotocol browsers use to pass
// the bearer token, since they cannot set an Authorization header on the
// upgrade request (spec.md §4.7).
const bearerSubprotocolPrefix = "bearer-"

// handleEvents upgrades to a WebSocket, registers the client, and runs the
// forward/ping pair described in spec.md §4.7's WebSocket lifecycle.
func (s *Server) handleEvents(c echo.Context) error {
	var subprotocol string
	for _, p := range websocket.Subprotocols(c.Request()) {
		if strings.HasPrefix(p, bearerSubprotocolPrefix) {
			token := strings.TrimPrefix(p, bearerSubprotocolPrefix)
			if token == s.token {
				subprotocol = p
			}
			break
		}
	}
	if subprotocol == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid bearer subprotocol")
	}

	upgrader.Subprotocols = []string{subprotocol}
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	cl := &client{id: id, connectedAt: time.Now(), lastActive: time.Now()}

	s.clientsMu.Lock()
	s.clients[id] = cl
	s.clientsMu.Unlock()

	ch := make(chan ServerEvent, 32)
	s.subsMu.Lock()
	s.subs[id] = ch
	s.subsMu.Unlock()

	s.log.Info().Str("client_id", id).Msg("websocket client connected")
	s.broadcast(ServerEvent{Type: EventClientConnected, ClientID: id})

	done := make(chan struct{})
	var once sync.Once
	closeDone := func() { once.Do(func() { close(done) }) }

	// The server never initiates pings; it tracks liveness off pings the
	// client sends, per spec.md §4.7's "updates last_active on receiving
	// pings". gorilla/websocket surfaces those only via this handler.
	conn.SetPingHandler(func(appData string) error {
		cl.touch()
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	go func() {
		defer closeDone()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			cl.touch()
		}
	}()

	go func() {
		defer closeDone()
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	<-done

	s.clientsMu.Lock()
	delete(s.clients, id)
	s.clientsMu.Unlock()
	s.subsMu.Lock()
	delete(s.subs, id)
	s.subsMu.Unlock()
	close(ch)
	conn.Close()

	s.log.Info().Str("client_id", id).Msg("websocket client disconnected")
	s.broadcast(ServerEvent{Type: EventClientDisconnected, ClientID: id})
	return nil
}
