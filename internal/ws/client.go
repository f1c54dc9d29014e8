package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer     = 64
	maxMessageSize = 4096

	// inbound messages per second and burst, per connection
	inboundRate  = 5
	inboundBurst = 10
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub

	limiter *rate.Limiter

	mu     sync.Mutex
	gameID string

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:      uuid.New().String(),
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		Hub:     hub,
		limiter: rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
		done:    make(chan struct{}),
	}
}

// Run pumps the connection until it closes.
func (c *Client) Run() {
	Connections.Inc()
	defer Connections.Dec()

	go c.writePump()
	c.readPump()
}

// setGame records the watched game and returns the previous one.
func (c *Client) setGame(gameID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.gameID
	c.gameID = gameID
	return prev
}

// GameID returns the game this observer watches, if any.
func (c *Client) GameID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// queue hands data to the writer without blocking.
func (c *Client) queue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// read
func (c *Client) readPump() {
	defer c.disconnect()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.Hub.log.Debug("read error", "client", c.ID, "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			c.sendError("rate limit exceeded")
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(raw []byte) {
	var msg JoinMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("malformed message")
		return
	}
	switch msg.Type {
	case MsgJoin:
		if msg.GameID == "" {
			c.sendError("gameId required")
			return
		}
		c.Hub.Join(c, msg.GameID)
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) sendError(text string) {
	c.queue(encode(MsgError, ErrorPayload{Message: text}))
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.Hub.log.Debug("write error", "client", c.ID, "error", err)
				c.disconnect()
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.disconnect()
				return
			}
		}
	}
}

// disconnect
func (c *Client) disconnect() {
	c.closeOnce.Do(func() {
		c.Hub.Leave(c)
		close(c.done)
	})
}
