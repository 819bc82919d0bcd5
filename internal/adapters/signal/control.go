package signal

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/rs/zerolog/log"
)

// Application-level keepalive for clients that cannot see websocket pings.
const (
	eventPing core.EventName = "ping"
	eventPong core.EventName = "pong"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	if err := conn.Send(eventPong, struct{}{}); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(conn.id)).Msg("pong reply failed")
	}
}
