package domain

import "time"

// Membership binds one connection to a room under a display name.
// No transport or lifecycle logic here.
type Membership struct {
	ConnectionID ConnectionID
	Room         RoomName
	DisplayName  string
	JoinedAt     time.Time
	// Seq is the global join order; lower joined earlier.
	Seq uint64
}

// NewMembership avoids raw literals in the registry and keeps construction obvious.
func NewMembership(id ConnectionID, room RoomName, name string, seq uint64) Membership {
	return Membership{
		ConnectionID: id,
		Room:         room,
		DisplayName:  name,
		JoinedAt:     time.Now(),
		Seq:          seq,
	}
}
