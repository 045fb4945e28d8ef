package viewer

import (
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"osero_view/internal/render"
)

const (
	BlackCountID = "black-count"
	WhiteCountID = "white-count"

	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type CountMessage struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

type client struct {
	conn *websocket.Conn
	send chan CountMessage
}

// Hub pushes stone counts to every connected websocket viewer. Publishing
// never touches the network: each viewer has its own queue and writer, and a
// viewer whose queue is full is disconnected.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	last     map[string]int
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		last:    make(map[string]int),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Sink returns a count sink that publishes under id.
func (h *Hub) Sink(id string) render.CountSink {
	return hubSink{hub: h, id: id}
}

type hubSink struct {
	hub *Hub
	id  string
}

func (s hubSink) SetCount(n int) {
	s.hub.publish(s.id, n)
}

func (h *Hub) publish(id string, value int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last[id] = value
	msg := CountMessage{ID: id, Value: value}
	for c := range h.clients {
		h.enqueueLocked(c, msg)
	}
}

func (h *Hub) enqueueLocked(c *client, msg CountMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		h.log.Warnw("dropping slow viewer", "remote", c.conn.RemoteAddr().String())
		h.dropLocked(c)
		return false
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// ServeHTTP upgrades the request and keeps the viewer until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("websocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan CountMessage, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	for _, id := range slices.Sorted(maps.Keys(h.last)) {
		if !h.enqueueLocked(c, CountMessage{ID: id, Value: h.last[id]}) {
			break
		}
	}
	h.mu.Unlock()

	h.log.Infow("viewer connected", "remote", conn.RemoteAddr().String())
	go h.writePump(c)

	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.dropLocked(c)
	h.mu.Unlock()
}

// writePump owns all writes to the connection and closes it when the queue
// is closed or a write fails. A failed write also ends the read loop.
func (h *Hub) writePump(c *client) {
	defer func() { _ = c.conn.Close() }()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			h.log.Warnw("viewer write failed", "remote", c.conn.RemoteAddr().String(), "error", err)
			return
		}
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}
