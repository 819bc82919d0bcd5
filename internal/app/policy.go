package app

import (
	"errors"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type DeliveryAction int

const (
	NoAction DeliveryAction = iota
	// CloseConnection hands the member to the normal disconnect path.
	CloseConnection
)

type Policy interface {
	OnDeliveryFailure(room domain.RoomName, d core.Dropped) DeliveryAction
}

// SimplePolicy closes slow consumers and leaves everything else to the
// transport's own disconnect signal.
type SimplePolicy struct{}

func (SimplePolicy) OnDeliveryFailure(_ domain.RoomName, d core.Dropped) DeliveryAction {
	if errors.Is(d.Err, core.ErrBackpressure) {
		return CloseConnection
	}
	return NoAction
}
