package ws

import (
	"encoding/json"
	"sync"
	"time"

	"go-carpet-shop/internal/metrics"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
)

// Event is the envelope pushed to every connected client.
type Event struct {
	Type      string      `json:"type"`
	Action    string      `json:"action"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			n := len(h.Clients)
			h.mutex.Unlock()
			metrics.WSClients.Set(float64(n))
			log.Debug().Int("clients", n).Msg("ws client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			metrics.WSClients.Set(float64(len(h.Clients)))
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop closes every connection and ends Run. Calling it again is a no-op.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// register hands conn to Run. It reports false once the hub is stopped.
func (h *Hub) register(conn *websocket.Conn) bool {
	select {
	case h.Register <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(conn *websocket.Conn) {
	select {
	case h.Unregister <- conn:
	case <-h.done:
	}
}

// Publish queues an event for broadcast. It never blocks the caller: when the
// queue is full the event is dropped and logged.
func (h *Hub) Publish(eventType, action string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: eventType, Action: action, Payload: payload, Timestamp: time.Now()})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("ws event not encodable")
		return
	}
	select {
	case h.Broadcast <- msg:
		metrics.EventsPublished.WithLabelValues(eventType, "queued").Inc()
	default:
		metrics.EventsPublished.WithLabelValues(eventType, "dropped").Inc()
		log.Warn().Str("type", eventType).Str("action", action).Msg("ws broadcast queue full, event dropped")
	}
}

// Handler serves one websocket connection until the client goes away.
func (h *Hub) Handler() func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		if !h.register(c) {
			return
		}
		defer h.unregister(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}
}
