package websocket

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-prep/internal/session"
)

// sendBuffer bounds how far a slow client may fall behind before it is dropped.
const sendBuffer = 64

// Client is one connected stream. Frames queued on it are written by a
// single writer goroutine.
type Client struct {
	send chan []byte
}

// NewClient creates a Client with a bounded send queue.
func NewClient() *Client {
	return &Client{send: make(chan []byte, sendBuffer)}
}

// Send returns the outgoing frame queue. It is closed when the client is
// dropped.
func (c *Client) Send() <-chan []byte { return c.send }

// queue enqueues a frame without blocking. Callers hold the hub lock, so the
// channel is never closed underneath them.
func (c *Client) queue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() { close(c.send) }

// Snapshotter provides the current session view.
type Snapshotter interface {
	Snapshot() session.View
}

// Hub fans engine events out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	engine  Snapshotter
	log     zerolog.Logger
}

// NewHub creates a Hub reading snapshots from engine.
func NewHub(engine Snapshotter, log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		engine:  engine,
		log:     log.With().Str("component", "ws_hub").Logger(),
	}
}

// Register adds a client and queues the current state for it.
func (h *Hub) Register(c *Client) {
	frame := Encode(StateResponse{Event: EventState, State: h.engine.Snapshot()})

	h.mu.Lock()
	h.clients[c] = struct{}{}
	c.queue(frame)
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Debug().Int("clients", n).Msg("Client registered")
}

// Unregister removes a client and closes its queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// Reply queues a frame for one client. It reports false when the client is
// gone or its queue is full.
func (h *Hub) Reply(c *Client, v interface{}) bool {
	frame := Encode(v)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	return c.queue(frame)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements session.Sink.
func (h *Hub) Publish(ev session.Event) {
	frame, ok := h.frameFor(ev)
	if !ok {
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.clients {
		if !c.queue(frame) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn().Msg("Dropping slow WebSocket client")
		h.Unregister(c)
	}
}

func (h *Hub) frameFor(ev session.Event) ([]byte, bool) {
	switch ev.Type {
	case session.EventTick:
		return Encode(TickResponse{Event: EventTick, RemainingSeconds: ev.RemainingSeconds}), true
	case session.EventAlert:
		if ev.Alert == nil {
			return nil, false
		}
		return Encode(AlertResponse{Event: EventAlert, Alert: *ev.Alert}), true
	case session.EventProctor:
		if ev.Entry == nil {
			return nil, false
		}
		return Encode(ProctorResponse{Event: EventProctor, Entry: *ev.Entry}), true
	case session.EventState:
		return Encode(StateResponse{Event: EventState, State: h.engine.Snapshot()}), true
	case session.EventSubmitted:
		return Encode(SubmittedResponse{Event: EventSubmitted, Result: h.engine.Snapshot().Result}), true
	}
	return nil, false
}
