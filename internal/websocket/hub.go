package websocket

import (
	"encoding/json"
	"sync"

	"github.com/dom/heritage-gallery/internal/platform/logger"
)

// Hub fans feed events out to every connected client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	subscribe  chan *SubscribeRequest
	broadcast  chan *Message
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	stopOnce   sync.Once
	log        *logger.Logger
	mu         sync.RWMutex
}

type SubscribeRequest struct {
	Client    *Client
	ContentID string
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan *SubscribeRequest),
		broadcast:  make(chan *Message, 256),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log.With("component", "feed_hub"),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()
			h.log.Debug("client connected", "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[req.Client]; ok {
				req.Client.contentID = req.ContentID
			}
			h.mu.Unlock()
			msg, _ := NewMessage(MessageTypeSubscribed, SubscribedPayload{ContentID: req.ContentID})
			req.Client.Send(msg)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal feed message", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if msg.contentID != "" && client.contentID != "" && client.contentID != msg.contentID {
			continue
		}
		client.trySend(data)
	}
}

// Stop shuts the hub down and closes every client. It blocks until Run exits.
// Safe to call more than once, including concurrently.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister safely unregisters a client, handling the case where the hub may be stopped.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues msg for delivery. Drops the message when the queue is full or the hub has stopped.
func (h *Hub) Publish(msg *Message) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("feed queue full, dropping message", "type", msg.Type)
	}
}
