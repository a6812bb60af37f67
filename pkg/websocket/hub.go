package websocket

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"kaavalcircle/pkg/logger"
)

// Drop reasons reported to HubConfig.OnDrop.
const (
	DropQueueFull  = "queue_full"
	DropClientFull = "client_buffer_full"
)

// Message is the frame delivered to subscribers.
type Message struct {
	Type      string      `json:"type"`
	Room      string      `json:"room,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type HubConfig struct {
	SendBufferSize   int
	PublishQueueSize int
	// OnDrop is called from the publishing or hub goroutine whenever a
	// message is discarded.
	OnDrop func(reason string)
}

type envelope struct {
	room string
	data []byte
}

type reply struct {
	client *Client
	data   []byte
}

// Hub fans published messages out to connected clients grouped in rooms.
// All client and room bookkeeping happens on the Run goroutine; other
// goroutines only talk to it through channels.
//
// Delivery is best effort: Publish never blocks, nothing is acknowledged,
// and a message is dropped when the publish queue or a client's send
// buffer is full.
type Hub struct {
	clients    map[*Client]struct{}
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	publish    chan envelope
	replies    chan reply
	done       chan struct{}

	config      HubConfig
	logger      *logger.Logger
	clientCount atomic.Int64
}

func NewHub(config HubConfig, log *logger.Logger) *Hub {
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = 64
	}
	if config.PublishQueueSize <= 0 {
		config.PublishQueueSize = 256
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}

	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan envelope, config.PublishQueueSize),
		replies:    make(chan reply, config.PublishQueueSize),
		done:       make(chan struct{}),
		config:     config,
		logger:     log.WithField("component", "websocket_hub"),
	}
}

// Run owns the hub state until ctx is cancelled, then closes every
// client's send channel.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			h.removeClient(client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case env := <-h.publish:
			h.deliver(env)

		case r := <-h.replies:
			if _, ok := h.clients[r.client]; ok {
				h.trySend(r.client, r.data)
			}
		}
	}
}

// Publish queues event for every client in room. An empty room means all
// clients. It reports false when the message was dropped.
func (h *Hub) Publish(room, event string, payload interface{}) bool {
	data, err := json.Marshal(Message{
		Type:      event,
		Room:      room,
		Timestamp: time.Now().Unix(),
		Data:      payload,
	})
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("Failed to encode websocket message")
		return false
	}

	select {
	case h.publish <- envelope{room: room, data: data}:
		return true
	default:
		h.drop(DropQueueFull)
		return false
	}
}

// ClientCount is the number of registered clients.
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// Register hands a client to the hub. It returns false once the hub has
// stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) sendReply(client *Client, data []byte) {
	select {
	case h.replies <- reply{client: client, data: data}:
	default:
		h.drop(DropQueueFull)
	}
}

func (h *Hub) addClient(client *Client) {
	h.clients[client] = struct{}{}
	h.clientCount.Add(1)

	for _, room := range client.rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[*Client]struct{})
		}
		h.rooms[room][client] = struct{}{}
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id": client.UserID,
		"rooms":   client.rooms,
	}).Debug("Client registered")

	welcome, _ := json.Marshal(Message{
		Type:      "welcome",
		Timestamp: time.Now().Unix(),
		Data:      map[string]interface{}{"message": "Connected successfully"},
	})
	h.trySend(client, welcome)
}

func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}

	delete(h.clients, client)
	h.clientCount.Add(-1)
	close(client.send)

	for _, roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}

	h.logger.WithField("user_id", client.UserID).Debug("Client unregistered")
}

func (h *Hub) deliver(env envelope) {
	if env.room == "" {
		for client := range h.clients {
			h.trySend(client, env.data)
		}
		return
	}

	for client := range h.rooms[env.room] {
		h.trySend(client, env.data)
	}
}

func (h *Hub) trySend(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.drop(DropClientFull)
	}
}

func (h *Hub) drop(reason string) {
	if h.config.OnDrop != nil {
		h.config.OnDrop(reason)
	}
}
