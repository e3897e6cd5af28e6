package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/bookcity-backend/internal/app/service"
	"github.com/ikkim/bookcity-backend/pkg/logger"
)

// Event types pushed to the staff activity feed.
const (
	EventSweepFinished = "subscription.sweep_finished"
)

// Event is one message on the activity feed.
type Event struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

// Client is one open feed connection.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub fans events out to every connected client. A user may hold several
// sessions at once.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("Feed client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			for userID, clientList := range h.clients {
				for _, client := range clientList {
					select {
					case client.Send <- message:
					default:
						go h.Unregister(client)
						logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
							"user_id": userID,
						})
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clientList, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	remaining := make([]*Client, 0, len(clientList))
	found := false
	for _, c := range clientList {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}
	if len(remaining) == 0 {
		delete(h.clients, client.UserID)
	} else {
		h.clients[client.UserID] = remaining
	}
	close(client.Send)

	logger.Info("Feed client unregistered", map[string]interface{}{
		"user_id":            client.UserID,
		"remaining_sessions": len(remaining),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clientList := range h.clients {
		for _, client := range clientList {
			close(client.Send)
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish queues an event for every client. Events are dropped when the
// broadcast queue is full.
func (h *Hub) Publish(eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, At: time.Now().UTC(), Data: data})
	if err != nil {
		logger.Error("Failed to marshal feed event", err, map[string]interface{}{
			"type": eventType,
		})
		return err
	}

	select {
	case h.broadcast <- payload:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"type": eventType,
		})
	}
	return nil
}

// NotifySweep pushes a sweep result to the feed.
func (h *Hub) NotifySweep(_ context.Context, result *service.SweepResult) error {
	return h.Publish(EventSweepFinished, result)
}

// ConnectedUsers reports how many distinct users hold an open session.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
