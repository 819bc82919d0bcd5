package core

import "github.com/dkeye/Relay/internal/domain"

// RoomIndex is the derived, read-only view of memberships grouped by room.
type RoomIndex interface {
	// ParticipantsOf lists display names in join order.
	ParticipantsOf(room domain.RoomName) []string
	IsEmpty(room domain.RoomName) bool
	LiveRooms() []domain.RoomName
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	Name         domain.RoomName `json:"name"`
	MemberCount  int             `json:"member_count"`
	Participants []string        `json:"participants"`
}
