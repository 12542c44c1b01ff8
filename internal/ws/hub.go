// Package ws pushes order events to store dashboards over WebSocket.
// Staff connections are keyed by their location; admin connections
// receive events for every location.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/stmiyata/seibi-backend/internal/app/model"
	"github.com/stmiyata/seibi-backend/pkg/logger"
)

// Client is one WebSocket connection
type Client struct {
	Hub        *Hub
	Conn       *Conn
	UserID     uint
	LocationID string // "" for admin: receives everything
	Send       chan []byte
}

// OrderEvent is the message pushed when an order changes
type OrderEvent struct {
	Type  string       `json:"type"` // order_created, order_updated, order_confirmed, order_deleted
	Order *model.Order `json:"order"`
}

// Hub manages the connected clients
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage

	mu sync.RWMutex
}

type broadcastMessage struct {
	locationID string
	payload    []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan *broadcastMessage, 256),
	}
}

// Run processes register, unregister and broadcast events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":     client.UserID,
				"location_id": client.LocationID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.LocationID != "" && client.LocationID != message.locationID {
					continue
				}
				select {
				case client.Send <- message.payload:
				default:
					// Slow consumer, drop the connection
					delete(h.clients, client)
					close(client.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// BroadcastOrder pushes an order event to the order's location feed
func (h *Hub) BroadcastOrder(eventType string, order *model.Order) {
	payload, err := json.Marshal(OrderEvent{Type: eventType, Order: order})
	if err != nil {
		logger.Error("Failed to marshal order event", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{locationID: order.LocationID, payload: payload}:
	default:
		logger.Warn("Order event dropped, broadcast queue full", map[string]interface{}{
			"order_id": order.ID,
		})
	}
}
