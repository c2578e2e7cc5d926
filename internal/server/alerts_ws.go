package server

import (
	"net/http"
	sc "sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/deltasync/deltasync/internal/core/alerting"
	"github.com/deltasync/deltasync/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	writeWait     = 5 * time.Second
	clientBacklog = 16
)

// AlertHub fans fired alerts out to every connected websocket client.
// Its Broadcast method is registered as an alerting handler, so clients
// see alerts as the monitoring loop raises them. A slow client that
// cannot keep up with its backlog is dropped rather than blocking the
// dispatch path.
type AlertHub struct {
	log log.Log

	mu      sc.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan alerting.Alert
}

func NewAlertHub(logger log.Log) *AlertHub {
	return &AlertHub{
		log:     logger,
		clients: make(map[*wsClient]struct{}),
	}
}

// Broadcast satisfies alerting.Handler.
func (h *AlertHub) Broadcast(alert alerting.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- alert:
		default:
			h.log.Warn("alert subscriber too slow, dropping",
				log.String("remote", client.conn.RemoteAddr().String()))
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Close disconnects every subscriber and rejects new ones.
func (h *AlertHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*wsClient]struct{})
}

func (h *AlertHub) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", log.Err(err))
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan alerting.Alert, clientBacklog),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.log.Info("alert subscriber connected", log.String("remote", conn.RemoteAddr().String()))
	go h.writeLoop(client)
	go h.readLoop(client)
}

func (h *AlertHub) writeLoop(client *wsClient) {
	defer func() { _ = client.conn.Close() }()
	for alert := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(alert); err != nil {
			h.remove(client)
			return
		}
	}
	_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = client.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
}

// readLoop only drains control frames; subscribers never send data. A
// read error means the peer went away.
func (h *AlertHub) readLoop(client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			h.remove(client)
			return
		}
	}
}

func (h *AlertHub) remove(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}
