package domain

import "encoding/json"

// Chatbot sentinel shown to clients while a room is otherwise empty. It is
// never a real connection; it only appears in emitted payloads.
const (
	BotName   = "CHATBOT"
	BotAvatar = "data:image/gif;base64,R0lGODlhAQABAAD/ACwAAAAAAQABAAACADs="

	// Canned reply substituted for every relayed chat message.
	BotReply       = "Yes! You are awesome!!!"
	BotReplySender = "Chat Bot"
)

// Event is the named-event frame exchanged with clients.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// LoginData carries a client's profile and chosen room.
type LoginData struct {
	User   string `json:"user"`
	Avatar string `json:"avatar"`
	ID     RoomID `json:"id"`
}

// MsgData is a chat message. Only the img field is relayed.
type MsgData struct {
	Img json.RawMessage `json:"img"`
}

// PeopleInChat describes room occupancy before a client joins.
type PeopleInChat struct {
	Number int    `json:"number"`
	User   string `json:"user"`
	Avatar string `json:"avatar"`
	ID     RoomID `json:"id"`
}

// TooMany tells a client the room (or the server) is full.
type TooMany struct {
	Boolean bool `json:"boolean"`
}

// StartChat announces a paired room to its members.
type StartChat struct {
	Boolean bool     `json:"boolean"`
	ID      RoomID   `json:"id"`
	Users   []string `json:"users"`
	Avatars []string `json:"avatars"`
}

// Leave announces a departed partner to the rest of the room.
type Leave struct {
	Boolean bool   `json:"boolean"`
	Room    RoomID `json:"room"`
	User    string `json:"user"`
	Avatar  string `json:"avatar"`
}

// Receive is a relayed chat message.
type Receive struct {
	Msg  string          `json:"msg"`
	User string          `json:"user"`
	Img  json.RawMessage `json:"img"`
}

// Connection is one live client session. Profile fields are set at login
// and read by peers' handlers, so implementations must make the getters
// safe for concurrent use.
type Connection interface {
	ID() string
	Room() RoomID
	Username() string
	Avatar() string
	SetProfile(user, avatar string)
	SetRoom(id RoomID)
	Send(data []byte) error
	Close() error
}

// Registry is the process-wide connection registry. Connections register
// on transport connect and join a room later, at login.
type Registry interface {
	Register(conn Connection)
	Unregister(conn Connection)
	Join(conn Connection, id RoomID)
	Leave(conn Connection)
	Clients(roomKey string) []Connection
	Count() int
	EmitRoom(roomKey string, data []byte)
	BroadcastRoom(sender Connection, data []byte)
	BroadcastAll(data []byte)
	Stats() (rooms, clients int)
}

// Resolver turns an avatar identifier into an image URL.
type Resolver interface {
	Resolve(identifier string) (string, error)
}

// MessageHandler reacts to client frames and transport teardown.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
	Disconnect(conn Connection)
}
