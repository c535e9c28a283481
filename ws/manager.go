package ws

import (
	"context"
	"sync"

	"foodshare_backend/internal/events"
	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/metrics"
)

const broadcastBuffer = 256

// WebSocketManager fans bus events out to connected clients. Registration
// and delivery run on the single Run goroutine, so each client sees events
// in publish order.
type WebSocketManager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan events.Event
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan events.Event, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Attach subscribes the manager to bus. The returned function detaches it.
func (manager *WebSocketManager) Attach(bus events.Bus) func() {
	return bus.Subscribe(manager.Publish)
}

// Publish queues e for delivery without blocking the publisher; when the
// queue is full the event is dropped.
func (manager *WebSocketManager) Publish(e events.Event) {
	select {
	case manager.broadcast <- e:
	default:
		logger.Warn("Live event dropped, broadcast queue full", "event_id", e.ID, "type", e.Type)
	}
}

func (manager *WebSocketManager) Run(ctx context.Context) {
	defer close(manager.done)
	for {
		select {
		case <-ctx.Done():
			manager.closeAll()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.ID] = client
			count := len(manager.clients)
			manager.mu.Unlock()
			metrics.SetLiveSubscribers(count)
			logger.Debug("Live client registered", "client_id", client.ID, "user_id", client.UserID, "total", count)

		case client := <-manager.unregister:
			manager.remove(client)

		case e := <-manager.broadcast:
			manager.deliver(e)
		}
	}
}

// Register returns false once Run has stopped.
func (manager *WebSocketManager) Register(client *Client) bool {
	select {
	case manager.register <- client:
		return true
	case <-manager.done:
		return false
	}
}

func (manager *WebSocketManager) Unregister(client *Client) {
	select {
	case manager.unregister <- client:
	case <-manager.done:
	}
}

func (manager *WebSocketManager) remove(client *Client) {
	manager.mu.Lock()
	if _, ok := manager.clients[client.ID]; ok {
		delete(manager.clients, client.ID)
		client.close()
	}
	count := len(manager.clients)
	manager.mu.Unlock()
	metrics.SetLiveSubscribers(count)
	logger.Debug("Live client unregistered", "client_id", client.ID, "total", count)
}

// deliver sends public topics to every subscriber and private topics only to
// the owning identity. A client that cannot keep up is disconnected.
func (manager *WebSocketManager) deliver(e events.Event) {
	var slow []*Client

	manager.mu.RLock()
	for _, client := range manager.clients {
		if !client.Subscribed(e.Topic) {
			continue
		}
		if e.Topic.Private() && e.UserID != client.UserID {
			continue
		}
		if !client.enqueue(e) {
			slow = append(slow, client)
		}
	}
	manager.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("Disconnecting slow live client", "client_id", client.ID, "user_id", client.UserID)
		manager.remove(client)
	}
}

func (manager *WebSocketManager) closeAll() {
	manager.mu.Lock()
	for id, client := range manager.clients {
		client.close()
		delete(manager.clients, id)
	}
	manager.mu.Unlock()
	metrics.SetLiveSubscribers(0)
}

func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients)
}

// isUserConnected reports whether userID has at least one live connection.
func (manager *WebSocketManager) isUserConnected(userID string) bool {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	for _, client := range manager.clients {
		if client.UserID == userID {
			return true
		}
	}
	return false
}
