package app

import (
	"fmt"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/rs/zerolog/log"
)

type memberSource interface {
	Members(room domain.RoomName) []core.MemberSnapshot
}

// Broadcaster fans an event out to a room. Each send is independent:
// a failed delivery is recorded and the loop moves on.
type Broadcaster struct {
	src memberSource
}

func NewBroadcaster(src memberSource) *Broadcaster {
	return &Broadcaster{src: src}
}

func (b *Broadcaster) ToRoom(room domain.RoomName, event core.EventName, payload any) core.PublishResult {
	return b.deliver(room, event, payload, "")
}

func (b *Broadcaster) ToRoomExcept(
	room domain.RoomName,
	event core.EventName,
	payload any,
	exclude domain.ConnectionID,
) core.PublishResult {
	return b.deliver(room, event, payload, exclude)
}

func (b *Broadcaster) deliver(
	room domain.RoomName,
	event core.EventName,
	payload any,
	exclude domain.ConnectionID,
) core.PublishResult {
	res := core.PublishResult{}
	for _, m := range b.src.Members(room) {
		id := m.Membership.ConnectionID
		if exclude != "" && id == exclude {
			continue
		}
		var err error
		if m.Conn == nil {
			err = ErrTransportFailure
		} else if sendErr := m.Conn.Send(event, payload); sendErr != nil {
			err = fmt.Errorf("%w: %w", ErrTransportFailure, sendErr)
		}
		if err != nil {
			res.Dropped = append(res.Dropped, core.Dropped{Member: m, Err: err})
			metrics.Deliveries.WithLabelValues("failed").Inc()
			log.Warn().Err(err).Str("module", "app.broadcast").Str("sid", string(id)).Str("room", string(room)).Str("event", string(event)).Msg("delivery failed")
			continue
		}
		metrics.Deliveries.WithLabelValues("ok").Inc()
		res.SendTo++
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(room)).Str("event", string(event)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
