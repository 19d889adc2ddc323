package protocol

import (
	"encoding/json"
	"log/slog"

	"github.com/samber/lo"

	"github.com/rajpi/nachat/domain"
)

// Handler reacts to named client events, inspects the registry and relays
// follow-up events. Malformed frames are logged and dropped so one bad
// client cannot take the relay down.
type Handler struct {
	registry domain.Registry
	avatars  domain.Resolver
}

func NewHandler(r domain.Registry, a domain.Resolver) *Handler {
	return &Handler{registry: r, avatars: a}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var ev domain.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		slog.Warn("invalid frame", "clientId", conn.ID(), "error", err)
		return
	}

	switch ev.Name {
	case "load":
		h.handleLoad(conn, ev.Data)
	case "login":
		h.handleLogin(conn, ev.Data)
	case "msg":
		h.handleMsg(conn, ev.Data)
	default:
		slog.Warn("unknown event", "clientId", conn.ID(), "event", ev.Name)
	}
}

// handleLoad reports the state of a room before the client joins. It has
// no side effect on membership.
//
// The middle branch counts connections across the whole server, not just
// the room, and the full branch broadcasts tooMany to everyone. Both quirks
// are load-bearing for existing clients and are kept as-is.
func (h *Handler) handleLoad(conn domain.Connection, data json.RawMessage) {
	var id domain.RoomID
	if err := json.Unmarshal(data, &id); err != nil {
		slog.Warn("bad load payload", "clientId", conn.ID(), "error", err)
		return
	}

	occupants := h.registry.Clients(id.Key())

	switch {
	case len(occupants) == 0:
		h.emit(conn, "peopleinchat", domain.PeopleInChat{
			Number: 1,
			User:   domain.BotName,
			Avatar: domain.BotAvatar,
			ID:     id,
		})
	case h.registry.Count() == 1:
		peer := occupants[0]
		h.emit(conn, "peopleinchat", domain.PeopleInChat{
			Number: 2,
			User:   peer.Username(),
			Avatar: peer.Avatar(),
			ID:     id,
		})
	default:
		h.broadcastAll("tooMany", domain.TooMany{Boolean: true})
	}
}

// handleLogin stores the client's profile, joins it to the requested room
// and, when this makes a pair, announces the chat to the room. At most two
// occupants per room; a rejected client keeps its unjoined state.
func (h *Handler) handleLogin(conn domain.Connection, data json.RawMessage) {
	var login domain.LoginData
	if err := json.Unmarshal(data, &login); err != nil {
		slog.Warn("bad login payload", "clientId", conn.ID(), "error", err)
		return
	}

	occupants := h.registry.Clients(login.ID.Key())
	if len(occupants) >= 2 {
		h.emit(conn, "tooMany", domain.TooMany{Boolean: true})
		return
	}

	url, err := h.avatars.Resolve(login.Avatar)
	if err != nil {
		slog.Warn("avatar resolution failed", "clientId", conn.ID(), "error", err)
		url = domain.BotAvatar
	}

	conn.SetProfile(login.User, url)
	h.emit(conn, "img", url)
	h.registry.Join(conn, login.ID)

	if len(occupants) == 1 {
		first := occupants[0]

		// Announced twice on purpose: a chatbot-tagged draft first, then
		// the real pair in [existing, newcomer] order.
		h.emitRoom(login.ID.Key(), "startChat", domain.StartChat{
			Boolean: true,
			ID:      login.ID,
			Users:   []string{domain.BotName},
			Avatars: []string{first.Avatar()},
		})

		pair := []domain.Connection{first, conn}
		h.emitRoom(login.ID.Key(), "startChat", domain.StartChat{
			Boolean: true,
			ID:      login.ID,
			Users:   lo.Map(pair, func(c domain.Connection, _ int) string { return c.Username() }),
			Avatars: lo.Map(pair, func(c domain.Connection, _ int) string { return c.Avatar() }),
		})
	}
}

// handleMsg relays a chat message to the sender's room, sender included.
// The relayed text is a fixed canned reply, not the client's message; only
// the img field passes through. Kept verbatim from the current behavior,
// which reads like unfinished chatbot logic.
func (h *Handler) handleMsg(conn domain.Connection, data json.RawMessage) {
	var msg domain.MsgData
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("bad msg payload", "clientId", conn.ID(), "error", err)
		return
	}

	room := conn.Room()
	if room.IsZero() {
		return
	}

	h.emitRoom(room.Key(), "receive", domain.Receive{
		Msg:  domain.BotReply,
		User: domain.BotReplySender,
		Img:  msg.Img,
	})
}

// Disconnect runs on transport teardown. A connection that never logged in
// leaves silently.
func (h *Handler) Disconnect(conn domain.Connection) {
	if room := conn.Room(); !room.IsZero() {
		h.broadcastRoom(conn, "leave", domain.Leave{
			Boolean: true,
			Room:    room,
			User:    conn.Username(),
			Avatar:  conn.Avatar(),
		})
		h.registry.Leave(conn)
	}
	h.registry.Unregister(conn)
}

func (h *Handler) emit(conn domain.Connection, name string, payload any) {
	if frame, ok := encode(name, payload); ok {
		conn.Send(frame)
	}
}

func (h *Handler) emitRoom(roomKey, name string, payload any) {
	if frame, ok := encode(name, payload); ok {
		h.registry.EmitRoom(roomKey, frame)
	}
}

func (h *Handler) broadcastRoom(sender domain.Connection, name string, payload any) {
	if frame, ok := encode(name, payload); ok {
		h.registry.BroadcastRoom(sender, frame)
	}
}

func (h *Handler) broadcastAll(name string, payload any) {
	if frame, ok := encode(name, payload); ok {
		h.registry.BroadcastAll(frame)
	}
}

func encode(name string, payload any) ([]byte, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("marshal error", "event", name, "error", err)
		return nil, false
	}
	frame, err := json.Marshal(domain.Event{Name: name, Data: data})
	if err != nil {
		slog.Warn("marshal error", "event", name, "error", err)
		return nil, false
	}
	return frame, true
}
