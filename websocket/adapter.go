package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rajpi/nachat/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Conn adapts a gorilla websocket connection to domain.Connection. The
// profile fields are written by the login handler and read by peers'
// handlers, hence the lock.
type Conn struct {
	id       string
	ws       *websocket.Conn
	send     chan []byte
	registry domain.Registry
	handler  domain.MessageHandler

	mu       sync.RWMutex
	username string
	avatar   string
	room     domain.RoomID
}

func NewConn(id string, ws *websocket.Conn, r domain.Registry, h domain.MessageHandler) *Conn {
	return &Conn{
		id:       id,
		ws:       ws,
		send:     make(chan []byte, 256),
		registry: r,
		handler:  h,
	}
}

func (c *Conn) ID() string { return c.id }

func (c *Conn) Room() domain.RoomID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

func (c *Conn) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

func (c *Conn) Avatar() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.avatar
}

func (c *Conn) SetProfile(user, avatar string) {
	c.mu.Lock()
	c.username = user
	c.avatar = avatar
	c.mu.Unlock()
}

func (c *Conn) SetRoom(id domain.RoomID) {
	c.mu.Lock()
	c.room = id
	c.mu.Unlock()
}

func (c *Conn) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		return websocket.ErrCloseSent
	}
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

func (c *Conn) Start() {
	c.registry.Register(c)
	go c.writePump()
	go c.readPump()
}

func (c *Conn) readPump() {
	defer func() {
		c.handler.Disconnect(c)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("read error", "clientId", c.id, "error", err)
			}
			return
		}

		c.handler.Handle(c, data)
	}
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
