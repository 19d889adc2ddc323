package hub

import (
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/rajpi/nachat/domain"
)

type room struct {
	clients map[string]domain.Connection
	mu      sync.RWMutex
}

// Hub is the process-wide connection registry. Every connection registers
// on transport connect; room membership is a separate, later step taken at
// login. Rooms hold no state of their own, only the member set.
type Hub struct {
	conns map[string]domain.Connection
	rooms map[string]*room
	mu    sync.RWMutex
}

func New() *Hub {
	return &Hub{
		conns: make(map[string]domain.Connection),
		rooms: make(map[string]*room),
	}
}

func (h *Hub) Register(conn domain.Connection) {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	count := len(h.conns)
	h.mu.Unlock()

	slog.Info("client connected", "clientId", conn.ID(), "clients", count)
}

func (h *Hub) Unregister(conn domain.Connection) {
	h.mu.Lock()
	delete(h.conns, conn.ID())
	count := len(h.conns)
	h.mu.Unlock()

	slog.Info("client disconnected", "clientId", conn.ID(), "clients", count)
}

// Join adds the connection to the room's member set and records the room
// on the connection itself.
func (h *Hub) Join(conn domain.Connection, id domain.RoomID) {
	key := id.Key()

	h.mu.Lock()
	r, exists := h.rooms[key]
	if !exists {
		r = &room{clients: make(map[string]domain.Connection)}
		h.rooms[key] = r
	}
	h.mu.Unlock()

	r.mu.Lock()
	r.clients[conn.ID()] = conn
	count := len(r.clients)
	r.mu.Unlock()

	conn.SetRoom(id)
	slog.Info("client joined room", "room", key, "clientId", conn.ID(), "occupants", count)
}

// Leave removes the connection from its room's member set. Empty rooms are
// discarded.
func (h *Hub) Leave(conn domain.Connection) {
	key := conn.Room().Key()

	h.mu.RLock()
	r, exists := h.rooms[key]
	h.mu.RUnlock()

	if !exists {
		return
	}

	r.mu.Lock()
	delete(r.clients, conn.ID())
	count := len(r.clients)
	r.mu.Unlock()

	slog.Info("client left room", "room", key, "clientId", conn.ID(), "occupants", count)

	if count == 0 {
		h.mu.Lock()
		delete(h.rooms, key)
		h.mu.Unlock()
		slog.Info("room removed", "room", key)
	}
}

// Clients derives the roster for a room key. An empty key returns every
// registered connection, mirroring a lookup with no room argument.
// Ordering follows map iteration and is not significant.
func (h *Hub) Clients(roomKey string) []domain.Connection {
	if roomKey == "" {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return lo.Values(h.conns)
	}

	h.mu.RLock()
	r, exists := h.rooms[roomKey]
	h.mu.RUnlock()

	if !exists {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Values(r.clients)
}

// Count reports the number of connections across the whole server.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// EmitRoom sends to every member of the room, sender included.
func (h *Hub) EmitRoom(roomKey string, data []byte) {
	for _, conn := range h.Clients(roomKey) {
		h.send(conn, data)
	}
}

// BroadcastRoom sends to the rest of the sender's room, excluding the
// sender itself.
func (h *Hub) BroadcastRoom(sender domain.Connection, data []byte) {
	for _, conn := range h.Clients(sender.Room().Key()) {
		if conn.ID() == sender.ID() {
			continue
		}
		h.send(conn, data)
	}
}

// BroadcastAll sends to every registered connection, joined or not.
func (h *Hub) BroadcastAll(data []byte) {
	h.mu.RLock()
	conns := lo.Values(h.conns)
	h.mu.RUnlock()

	for _, conn := range conns {
		h.send(conn, data)
	}
}

func (h *Hub) send(conn domain.Connection, data []byte) {
	if err := conn.Send(data); err != nil {
		go func(c domain.Connection) {
			h.Leave(c)
			h.Unregister(c)
		}(conn)
	}
}

func (h *Hub) Stats() (rooms, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms), len(h.conns)
}
