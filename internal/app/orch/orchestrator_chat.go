package orch

import (
	"strings"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) Chat(conn core.Connection, p ChatPayload) Outcome {
	m, ok := o.Registry.Find(conn.ID())
	if !ok {
		return o.reject(conn, EventChat, app.ErrNotInRoom)
	}
	if strings.TrimSpace(p.Message) == "" {
		return o.reject(conn, EventChat, ErrEmptyMessage)
	}
	if p.Name != "" && strings.TrimSpace(p.Name) != m.DisplayName {
		log.Debug().Str("module", "orch").Str("sid", string(m.ConnectionID)).Str("claimed", p.Name).Msg("chat name differs from membership")
	}

	msg := ChatMessage{Message: p.Message, Name: m.DisplayName, Timestamp: o.Now()}
	res := o.publish(m.Room, EventChat, msg, "")
	return Outcome{Event: EventChat, Publish: res}
}

// Typing is relayed as-is; expiry is the client's job.
func (o *Orchestrator) Typing(conn core.Connection, p TypingPayload) Outcome {
	m, ok := o.Registry.Find(conn.ID())
	if !ok {
		return Outcome{Event: EventTyping}
	}
	res := o.publish(m.Room, EventTyping, TypingNotice{Name: m.DisplayName, Typing: p.Typing}, m.ConnectionID)
	return Outcome{Event: EventTyping, Publish: res}
}

// AllNames answers regardless of whether the sender has joined a room.
func (o *Orchestrator) AllNames(conn core.Connection) Outcome {
	if err := conn.Send(EventAllNames, o.Registry.AllDisplayNames()); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(conn.ID())).Msg("allNames reply failed")
	}
	return Outcome{Event: EventGetAllNames}
}
