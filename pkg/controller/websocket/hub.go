package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/joshua-hq/warroom/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Stream names the two live collections pushed to web clients.
type Stream string

const (
	StreamReports Stream = "reports"
	StreamChat    Stream = "chat"
)

// Envelope is the wire frame for one snapshot delivery. Data always
// holds the full current state of the stream, never a diff.
type Envelope struct {
	Stream Stream          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

const (
	// Buffer size for client send channel
	clientSendBufferSize = 16

	// Maximum message size allowed from peer; clients only ever send
	// control frames, so this stays small.
	maxMessageSize = 1024
)

// Hub fans full stream snapshots out to every connected web client.
// It keeps the latest snapshot per stream so a client that connects
// between writes still gets current state immediately.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[Stream][]byte

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(ctx context.Context) *Hub {
	ctx, cancel := context.WithCancel(ctx)
	return &Hub{
		clients:    make(map[*Client]bool),
		latest:     make(map[Stream][]byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 8),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run is the hub's main loop. It exits when the hub context is
// cancelled.
func (h *Hub) Run() {
	logger := logging.From(h.ctx)
	logger.Info("websocket hub started")

	defer func() {
		logger.Info("websocket hub stopped")
		h.closeAll()
	}()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case frame := <-h.broadcast:
			h.broadcastFrame(frame)
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
}

// Broadcast marshals the snapshot into an envelope and queues it for
// every connected client.
func (h *Hub) Broadcast(stream Stream, snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal snapshot", goerr.V("stream", stream))
	}
	frame, err := json.Marshal(Envelope{Stream: stream, Data: data})
	if err != nil {
		return goerr.Wrap(err, "failed to marshal envelope", goerr.V("stream", stream))
	}

	h.mu.Lock()
	h.latest[stream] = frame
	h.mu.Unlock()

	select {
	case h.broadcast <- frame:
	case <-h.ctx.Done():
	}
	return nil
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	replay := make([][]byte, 0, len(h.latest))
	for _, frame := range h.latest {
		replay = append(replay, frame)
	}
	clientCount := len(h.clients)
	h.mu.Unlock()

	// A late joiner gets the current snapshots right away.
	for _, frame := range replay {
		client.trySend(frame)
	}

	logging.From(h.ctx).Info("websocket client registered", "total_clients", clientCount)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
	}
	clientCount := len(h.clients)
	h.mu.Unlock()

	logging.From(h.ctx).Info("websocket client unregistered", "total_clients", clientCount)
}

func (h *Hub) broadcastFrame(frame []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.trySend(frame) {
			// Slow consumer: drop the connection rather than block the
			// hub loop. Safe to call directly, we are on the hub
			// goroutine.
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[*Client]bool)
}
