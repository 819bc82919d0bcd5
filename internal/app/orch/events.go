package orch

import (
	"time"

	"github.com/dkeye/Relay/internal/core"
)

// Inbound events.
const (
	EventJoin        core.EventName = "join"
	EventChat        core.EventName = "chat"
	EventMessage     core.EventName = "message" // older clients
	EventTyping      core.EventName = "typing"
	EventLeave       core.EventName = "leave"
	EventExit        core.EventName = "exit" // older clients
	EventGetAllNames core.EventName = "getAllNames"
	// EventDisconnect is raised by the transport, never by a client.
	EventDisconnect core.EventName = "disconnect"
)

// Outbound events. chat and typing reuse the inbound names.
const (
	EventJoinConfirmed core.EventName = "joinConfirmed"
	EventError         core.EventName = "error"
	EventParticipants  core.EventName = "participants"
	EventAllNames      core.EventName = "allNames"
)

type JoinPayload struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// ChatPayload.Name is informational; the stored membership decides the sender.
type ChatPayload struct {
	Message string `json:"message"`
	Name    string `json:"name,omitempty"`
}

type TypingPayload struct {
	Room   string `json:"room,omitempty"`
	Name   string `json:"name,omitempty"`
	Typing bool   `json:"typing"`
}

type LeavePayload struct {
	Room string `json:"room,omitempty"`
	Name string `json:"name,omitempty"`
}

type JoinConfirmed struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

type ChatMessage struct {
	Message   string    `json:"message"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

type TypingNotice struct {
	Name   string `json:"name"`
	Typing bool   `json:"typing"`
}
