package serve

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/vango-dev/vstore/pkg/store"
)

// sendBuffer is the number of messages queued per client before it is
// considered too slow and disconnected.
const sendBuffer = 16

// StreamMessage is sent to websocket clients on every change at their path.
type StreamMessage struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// StreamHub manages websocket clients, each backed by a selector.
type StreamHub struct {
	store    *store.Store[any]
	logger   *slog.Logger
	clients  map[*streamClient]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

type streamClient struct {
	conn *websocket.Conn
	path string
	send chan []byte
	done chan struct{}
	once sync.Once

	// sel is only touched by the handler goroutine.
	sel *store.Selection[string]
}

// NewStreamHub creates a hub streaming changes of s.
func NewStreamHub(s *store.Store[any], logger *slog.Logger) *StreamHub {
	return &StreamHub{
		store:   s,
		logger:  logger,
		clients: make(map[*streamClient]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// project returns a converter producing the raw JSON at path, or "null"
// when nothing is there.
func project(path string) func(any) string {
	return func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			return "null"
		}
		if path == "" {
			return string(data)
		}
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return "null"
		}
		return res.Raw
	}
}

// HandleWebSocket upgrades the connection and streams the value at the
// "path" query parameter: once on connect, then on every change.
func (h *StreamHub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	c := &streamClient{
		conn: conn,
		path: req.URL.Query().Get("path"),
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.sel = store.Select(h.store, project(c.path), c.enqueue)
	c.enqueue(c.sel.Get())

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	h.logger.Debug("stream connected", "path", c.path)

	go c.writeLoop()

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(c)
	h.logger.Debug("stream disconnected", "path", c.path)
}

func (h *StreamHub) remove(c *streamClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
	c.sel.Close()
}

// ClientCount returns the number of connected clients.
func (h *StreamHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *StreamHub) Close() {
	h.mu.Lock()
	clients := make([]*streamClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (c *streamClient) enqueue(raw string) {
	data, err := json.Marshal(StreamMessage{Path: c.path, Value: json.RawMessage(raw)})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		// Too slow to keep up; drop the client rather than block the store.
		c.close()
	}
}

func (c *streamClient) writeLoop() {
	for {
		select {
		case data := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *streamClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
