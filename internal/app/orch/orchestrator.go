package orch

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/rs/zerolog/log"
)

var (
	ErrBadPayload   = errors.New("bad payload")
	ErrUnknownEvent = errors.New("unknown event")
	ErrEmptyMessage = errors.New("message cannot be empty")
)

// Outcome is what a handler did; rejections have already been sent to the
// originating connection by the time it is returned.
type Outcome struct {
	Event   core.EventName
	Err     error
	Removed bool
	Publish core.PublishResult
}

type Orchestrator struct {
	Registry    *app.Registry
	Broadcaster *app.Broadcaster
	Reaper      *app.Reaper
	Fabric      core.GroupFabric
	Policy      app.Policy
	// Now stamps chat messages.
	Now func() time.Time

	// mu serializes membership changes together with the fabric and the reaper.
	mu sync.Mutex
}

func New(reg *app.Registry, fabric core.GroupFabric, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry:    reg,
		Broadcaster: app.NewBroadcaster(reg),
		Reaper:      app.NewReaper(reg, fabric),
		Fabric:      fabric,
		Policy:      policy,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch routes one inbound client event.
func (o *Orchestrator) Dispatch(conn core.Connection, event core.EventName, data json.RawMessage) Outcome {
	var out Outcome
	switch event {
	case EventJoin:
		var p JoinPayload
		if err := decode(data, &p); err != nil {
			out = o.reject(conn, event, err)
			break
		}
		out = o.Join(conn, p)
	case EventChat, EventMessage:
		var p ChatPayload
		if err := decode(data, &p); err != nil {
			out = o.reject(conn, EventChat, err)
			break
		}
		out = o.Chat(conn, p)
	case EventTyping:
		var p TypingPayload
		if err := decode(data, &p); err != nil {
			out = o.reject(conn, event, err)
			break
		}
		out = o.Typing(conn, p)
	case EventLeave, EventExit:
		var p LeavePayload
		if err := decode(data, &p); err != nil {
			out = o.reject(conn, EventLeave, err)
			break
		}
		out = o.Leave(conn, p)
	case EventGetAllNames:
		out = o.AllNames(conn)
	default:
		log.Warn().Str("module", "orch").Str("sid", string(conn.ID())).Str("event", string(event)).Msg("unknown event")
		out = o.reject(conn, "unknown", ErrUnknownEvent)
	}
	countEvent(out)
	return out
}

func decode(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return ErrBadPayload
	}
	return nil
}

func (o *Orchestrator) reject(conn core.Connection, event core.EventName, err error) Outcome {
	log.Info().Str("module", "orch").Str("sid", string(conn.ID())).Str("event", string(event)).Err(err).Msg("rejected")
	if sendErr := conn.Send(EventError, ErrorMessage{Message: err.Error()}); sendErr != nil {
		log.Warn().Err(sendErr).Str("module", "orch").Str("sid", string(conn.ID())).Msg("error reply failed")
	}
	return Outcome{Event: event, Err: err}
}

// publish broadcasts and lets the policy deal with failed deliveries.
func (o *Orchestrator) publish(
	room domain.RoomName,
	event core.EventName,
	payload any,
	exclude domain.ConnectionID,
) core.PublishResult {
	var res core.PublishResult
	if exclude != "" {
		res = o.Broadcaster.ToRoomExcept(room, event, payload, exclude)
	} else {
		res = o.Broadcaster.ToRoom(room, event, payload)
	}
	if o.Policy == nil {
		return res
	}
	for _, d := range res.Dropped {
		switch o.Policy.OnDeliveryFailure(room, d) {
		case app.CloseConnection:
			if d.Member.Conn != nil {
				log.Info().Str("module", "orch").Str("sid", string(d.Member.Membership.ConnectionID)).Msg("closing slow connection")
				d.Member.Conn.Close()
			}
		case app.NoAction:
		}
	}
	return res
}

func (o *Orchestrator) refreshGauges() {
	members, rooms := o.Registry.Len()
	metrics.ActiveMembers.Set(float64(members))
	metrics.ActiveRooms.Set(float64(rooms))
}

func countEvent(out Outcome) {
	result := "ok"
	if out.Err != nil {
		result = "rejected"
	}
	metrics.Events.WithLabelValues(string(out.Event), result).Inc()
}
