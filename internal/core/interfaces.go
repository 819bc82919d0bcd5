package core

import (
	"errors"

	"github.com/dkeye/Relay/internal/domain"
)

var (
	// ErrBackpressure means the connection's send buffer is full.
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

// GroupFabric is the transport's own bookkeeping of which connections
// sit in which group. It may lag the registry; the reaper keeps it honest.
type GroupFabric interface {
	JoinGroup(room domain.RoomName, id domain.ConnectionID)
	LeaveGroup(room domain.RoomName, id domain.ConnectionID)
	DeleteGroup(room domain.RoomName)
	Groups() []domain.RoomName
}

// MemberSnapshot pairs a membership with the connection that delivers to it.
type MemberSnapshot struct {
	Membership domain.Membership
	Conn       Connection
}

// Dropped is one failed delivery.
type Dropped struct {
	Member MemberSnapshot
	Err    error
}

// PublishResult reports delivery stats to the router.
type PublishResult struct {
	SendTo  int
	Dropped []Dropped
}
