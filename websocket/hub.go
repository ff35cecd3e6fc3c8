package websocket

import (
	"sync"
	"time"

	"rescueline/models"

	"github.com/sirupsen/logrus"
)

// Event is one control-room feed message.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub fans emergency lifecycle events out to connected control-room clients.
// The feed is push-only; clients never send domain messages.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Event

	mutex sync.RWMutex
	done  chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			logrus.Debugf("Control-room client connected: %s", client.connectionID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			logrus.Debugf("Control-room client disconnected: %s", client.connectionID)

		case event := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- event:
				default:
					// Slow client, drop the event rather than the feed.
					logrus.Warnf("Dropping event for slow control-room client %s", client.connectionID)
				}
			}
			h.mutex.RUnlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

func (h *Hub) Shutdown() {
	close(h.done)
}

// BroadcastEmergency satisfies services.EmergencyBroadcaster.
func (h *Hub) BroadcastEmergency(event string, request *models.EmergencyRequest) {
	select {
	case h.broadcast <- Event{Type: event, Data: request, Timestamp: time.Now()}:
	default:
		logrus.Warn("Control-room broadcast buffer full, dropping event")
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
