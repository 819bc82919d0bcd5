package orch

import (
	"strings"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/rs/zerolog/log"
)

// Join holds the orchestrator lock through the participants broadcast so
// concurrent membership changes reach every member in registry order.
// Sends never block, they only enqueue.
func (o *Orchestrator) Join(conn core.Connection, p JoinPayload) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	m, err := o.Registry.Join(conn.ID(), domain.RoomName(p.Room), p.Name, conn)
	if err != nil {
		return o.reject(conn, EventJoin, err)
	}
	o.Fabric.JoinGroup(m.Room, m.ConnectionID)
	o.refreshGauges()

	if err := conn.Send(EventJoinConfirmed, JoinConfirmed{Room: string(m.Room), Name: m.DisplayName}); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(m.ConnectionID)).Msg("join confirmation failed")
	}
	res := o.publish(m.Room, EventParticipants, o.Registry.ParticipantsOf(m.Room), "")
	return Outcome{Event: EventJoin, Publish: res}
}

// Leave drops the sender's own membership. The payload is advisory only,
// so nobody can remove another member by naming them.
func (o *Orchestrator) Leave(conn core.Connection, p LeavePayload) Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	current, ok := o.Registry.Find(conn.ID())
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(conn.ID())).Msg("leave without membership")
		return Outcome{Event: EventLeave}
	}
	if p.Room != "" && (domain.RoomName(p.Room) != current.Room || strings.TrimSpace(p.Name) != current.DisplayName) {
		log.Debug().Str("module", "orch").Str("sid", string(conn.ID())).Str("room", p.Room).Str("name", p.Name).Msg("leave payload differs from membership")
	}
	m, removed := o.Registry.Leave(current.Room, current.DisplayName)
	if !removed {
		return Outcome{Event: EventLeave}
	}
	return o.departLocked(EventLeave, m)
}

// Disconnect is the transport telling us the connection is gone.
func (o *Orchestrator) Disconnect(id domain.ConnectionID) Outcome {
	o.mu.Lock()
	m, removed := o.Registry.RemoveByConnection(id)
	out := Outcome{Event: EventDisconnect}
	if removed {
		out = o.departLocked(EventDisconnect, m)
	}
	o.mu.Unlock()
	countEvent(out)
	return out
}

// departLocked reaps or announces the room after m was removed. Caller holds o.mu.
func (o *Orchestrator) departLocked(event core.EventName, m domain.Membership) Outcome {
	o.Fabric.LeaveGroup(m.Room, m.ConnectionID)
	reclaimed := o.Reaper.Reclaim(m.Room)
	o.refreshGauges()
	log.Info().Str("module", "orch").Str("sid", string(m.ConnectionID)).Str("room", string(m.Room)).Str("name", m.DisplayName).Bool("reclaimed", reclaimed).Msg("member departed")
	if reclaimed {
		return Outcome{Event: event, Removed: true}
	}
	res := o.publish(m.Room, EventParticipants, o.Registry.ParticipantsOf(m.Room), "")
	return Outcome{Event: event, Removed: true, Publish: res}
}
