package ws

import (
	"encoding/json"
	"sync"
	"time"

	"foodshare_backend/internal/events"
	"foodshare_backend/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client actions.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type topicPayload struct {
	Topic events.Topic `json:"topic"`
}

// Reply acknowledges a client action.
type Reply struct {
	Type    string       `json:"type"`
	Topic   events.Topic `json:"topic,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Client is one websocket connection. A user may hold several.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan any

	Manager *WebSocketManager

	mu     sync.RWMutex
	topics map[events.Topic]struct{}
	closed bool
}

func newClient(id, userID string, conn *websocket.Conn, manager *WebSocketManager) *Client {
	return &Client{
		ID:      id,
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan any, sendBuffer),
		Manager: manager,
		topics:  make(map[events.Topic]struct{}),
	}
}

func (c *Client) Subscribed(topic events.Topic) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.topics[topic]
	return ok
}

// enqueue never blocks. It returns false when the buffer is full or the
// client is already closed.
func (c *Client) enqueue(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Live client read error", "client_id", c.ID, "error", err)
			}
			return
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			c.enqueue(Reply{Type: "error", Message: "malformed message"})
			continue
		}
		c.handleMessage(msg)
	}
}

// writePump is the only goroutine writing to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				logger.Warn("Live client write error", "client_id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg IncomingWSMessage) {
	var payload topicPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil || !payload.Topic.IsValid() {
		c.enqueue(Reply{Type: "error", Message: "unknown topic"})
		return
	}

	switch msg.Action {
	case ActionSubscribe:
		c.mu.Lock()
		c.topics[payload.Topic] = struct{}{}
		c.mu.Unlock()
		c.enqueue(Reply{Type: "subscribed", Topic: payload.Topic})

	case ActionUnsubscribe:
		c.mu.Lock()
		delete(c.topics, payload.Topic)
		c.mu.Unlock()
		c.enqueue(Reply{Type: "unsubscribed", Topic: payload.Topic})

	default:
		c.enqueue(Reply{Type: "error", Message: "unknown action"})
	}
}
