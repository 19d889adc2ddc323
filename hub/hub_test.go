package hub

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajpi/nachat/domain"
)

type mockConn struct {
	id       string
	username string
	avatar   string
	room     domain.RoomID
	received [][]byte
	closed   bool
	mu       sync.Mutex
	sendErr  error
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Room() domain.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.room
}

func (m *mockConn) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username
}

func (m *mockConn) Avatar() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.avatar
}

func (m *mockConn) SetProfile(user, avatar string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.username = user
	m.avatar = avatar
}

func (m *mockConn) SetRoom(id domain.RoomID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.room = id
}

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received
}

func joined(h *Hub, id, room string) *mockConn {
	c := &mockConn{id: id}
	h.Register(c)
	h.Join(c, domain.NewRoomID(`"`+room+`"`))
	return c
}

func TestHub_Clients(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*Hub)
		roomKey string
		wantIDs []string
	}{
		{
			name:    "unknown room is empty",
			setup:   func(h *Hub) {},
			roomKey: "r1",
			wantIDs: nil,
		},
		{
			name: "room scoped",
			setup: func(h *Hub) {
				joined(h, "c1", "r1")
				joined(h, "c2", "r1")
				joined(h, "c3", "r2")
			},
			roomKey: "r1",
			wantIDs: []string{"c1", "c2"},
		},
		{
			name: "empty key returns every connection",
			setup: func(h *Hub) {
				joined(h, "c1", "r1")
				h.Register(&mockConn{id: "c2"})
			},
			roomKey: "",
			wantIDs: []string{"c1", "c2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			tt.setup(h)

			conns := h.Clients(tt.roomKey)

			var ids []string
			for _, c := range conns {
				ids = append(ids, c.ID())
			}
			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestHub_EmitRoom(t *testing.T) {
	h := New()
	sender := joined(h, "sender", "r1")
	peer := joined(h, "peer", "r1")
	outsider := joined(h, "outsider", "r2")

	h.EmitRoom("r1", []byte("hello"))

	assert.Len(t, sender.getReceived(), 1, "sender is included")
	assert.Len(t, peer.getReceived(), 1)
	assert.Empty(t, outsider.getReceived())
}

func TestHub_BroadcastRoom(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(*Hub) ([]*mockConn, *mockConn)
		wantReceived map[string]int
	}{
		{
			name: "excludes sender",
			setup: func(h *Hub) ([]*mockConn, *mockConn) {
				sender := joined(h, "sender", "r1")
				peer := joined(h, "peer", "r1")
				return []*mockConn{sender, peer}, sender
			},
			wantReceived: map[string]int{"sender": 0, "peer": 1},
		},
		{
			name: "no cross-room broadcast",
			setup: func(h *Hub) ([]*mockConn, *mockConn) {
				sender := joined(h, "sender", "r1")
				outsider := joined(h, "outsider", "r2")
				return []*mockConn{outsider}, sender
			},
			wantReceived: map[string]int{"outsider": 0},
		},
		{
			name: "single occupant",
			setup: func(h *Hub) ([]*mockConn, *mockConn) {
				sender := joined(h, "sender", "r1")
				return []*mockConn{}, sender
			},
			wantReceived: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			receivers, sender := tt.setup(h)

			h.BroadcastRoom(sender, []byte("test message"))

			for _, r := range receivers {
				expected := tt.wantReceived[r.ID()]
				assert.Len(t, r.getReceived(), expected, "receiver %s", r.ID())
			}
		})
	}
}

func TestHub_BroadcastAll(t *testing.T) {
	h := New()
	inRoom := joined(h, "c1", "r1")
	unjoined := &mockConn{id: "c2"}
	h.Register(unjoined)

	h.BroadcastAll([]byte("everyone"))

	assert.Len(t, inRoom.getReceived(), 1)
	assert.Len(t, unjoined.getReceived(), 1, "unjoined connections are included")
}

func TestHub_JoinSetsRoom(t *testing.T) {
	h := New()
	c := &mockConn{id: "c1"}
	h.Register(c)

	require.True(t, c.Room().IsZero())
	h.Join(c, domain.NewRoomID("42"))

	assert.Equal(t, "42", c.Room().Key())
	assert.Len(t, h.Clients("42"), 1)
}

func TestHub_RoomCleanup(t *testing.T) {
	h := New()
	c := joined(h, "c1", "r1")

	rooms, clients := h.Stats()
	require.Equal(t, 1, rooms)
	require.Equal(t, 1, clients)

	h.Leave(c)
	rooms, _ = h.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 1, h.Count(), "leaving a room keeps the connection registered")

	h.Unregister(c)
	assert.Equal(t, 0, h.Count())
}

func TestHub_Stats(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*Hub)
		wantRooms   int
		wantClients int
	}{
		{
			name:        "empty hub",
			setup:       func(h *Hub) {},
			wantRooms:   0,
			wantClients: 0,
		},
		{
			name: "registered but unjoined",
			setup: func(h *Hub) {
				h.Register(&mockConn{id: "c1"})
			},
			wantRooms:   0,
			wantClients: 1,
		},
		{
			name: "multiple rooms",
			setup: func(h *Hub) {
				joined(h, "c1", "r1")
				joined(h, "c2", "r1")
				joined(h, "c3", "r2")
			},
			wantRooms:   2,
			wantClients: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			tt.setup(h)

			rooms, clients := h.Stats()

			assert.Equal(t, tt.wantRooms, rooms)
			assert.Equal(t, tt.wantClients, clients)
		})
	}
}
