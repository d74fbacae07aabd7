package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bernotieno/mini-framework/pkg/state"
)

// changeEvent is one frame on the feed.
type changeEvent struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The inspection server is a local development surface.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleFeed upgrades the connection and streams every engine change to
// the client until it disconnects.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("feed upgrade failed", "error", err)
		return
	}

	c := s.hub.add(conn)
	s.logger.Info("feed client connected", "client", c.id)

	// Reads are only used to observe the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.remove(c)
			s.logger.Info("feed client disconnected", "client", c.id)
			return
		}
	}
}

// feedChange is the wildcard subscriber backing the feed. A frame carries
// the value at the changed path, or a full snapshot for whole-tree events
// (merge, restore, reset). The frame is serialized before this returns, so
// it reflects the state at notification time.
func (s *Server) feedChange(_ any, path string) {
	var value any
	if path == state.Wildcard {
		value = s.eng.Snapshot()
	} else {
		value = s.eng.Get(path)
	}
	s.hub.broadcast(changeEvent{Path: path, Value: value})
}

// client is one connected feed consumer.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// hub fans frames out to all connected clients.
type hub struct {
	logger  *slog.Logger
	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[uuid.UUID]*client),
	}
}

func (h *hub) add(conn *websocket.Conn) *client {
	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go c.writeLoop()
	return c
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

// broadcast sends one frame to every client. A client whose buffer is full
// gets the frame dropped rather than stalling dispatch: the feed is a
// best-effort view, not a replicated log.
func (h *hub) broadcast(ev changeEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("feed encode failed", "path", ev.Path, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("feed client lagging, frame dropped", "client", c.id)
		}
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
}
