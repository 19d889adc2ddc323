package domain

import "encoding/json"

// RoomID is a client-chosen room identifier. Clients send arbitrary JSON
// scalars (the create page hands out numbers), and the identifier must
// round-trip back to them unchanged, so the raw token is kept verbatim.
// Identifiers are not guaranteed unique; the occupancy cap is the only
// mitigation against collisions.
type RoomID struct {
	raw string
}

// NewRoomID builds a RoomID from a raw JSON token, e.g. `42` or `"lobby"`.
func NewRoomID(token string) RoomID {
	return RoomID{raw: token}
}

func (r *RoomID) UnmarshalJSON(b []byte) error {
	r.raw = string(b)
	return nil
}

func (r RoomID) MarshalJSON() ([]byte, error) {
	if r.raw == "" {
		return []byte("null"), nil
	}
	return []byte(r.raw), nil
}

// Key returns the canonical lookup key: quoted strings are unquoted, every
// other token is used as-is. `42` and `"42"` share a key, the way string
// room names behave in socket.io-style transports.
func (r RoomID) Key() string {
	var s string
	if err := json.Unmarshal([]byte(r.raw), &s); err == nil {
		return s
	}
	return r.raw
}

// IsZero reports whether no usable identifier was ever set.
func (r RoomID) IsZero() bool {
	return r.raw == "" || r.raw == "null"
}
