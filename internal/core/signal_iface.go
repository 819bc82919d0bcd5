package core

import "github.com/dkeye/Relay/internal/domain"

// EventName is the name half of a relay protocol frame.
type EventName string

// Connection abstracts a client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	ID() domain.ConnectionID
	// Send queues one named event for delivery. It must not block.
	Send(event EventName, payload any) error
	// Connected is false once the underlying transport is gone.
	Connected() bool
	Close()
}
