package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/metrics"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrRateLimited = errors.New("too many messages, slow down")

// Envelope is one inbound frame: {"event": "...", "data": {...}}.
type Envelope struct {
	Event core.EventName  `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	var ping <-chan time.Time
	if ctl.opts.PingPeriod > 0 {
		t := time.NewTicker(ctl.opts.PingPeriod)
		defer t.Stop()
		ping = t.C
	}
	// Closing here unblocks the read pump, which owns the disconnect.
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(c.id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("writePump ping failed")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("module", "signal").Str("sid", string(c.id)).Msg("handler panic")
		}
		log.Info().Str("module", "signal").Str("sid", string(c.id)).Msg("readPump closing")
		cancel()
		c.Close()
		ctl.Orch.Disconnect(c.id)
		if ctl.limiter != nil {
			ctl.limiter.Forget(c.id)
		}
		metrics.OpenConnections.Dec()
	}()

	if ctl.opts.PongWait > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
		})
	}

	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("readPump read error")
			}
			return
		}
		ctl.handleSignal(c, data)
	}
}

func (ctl *SignalWSController) handleSignal(c *WsSignalConn, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(c.id)).Msg("bad json")
		ctl.sendError(c, orch.ErrBadPayload)
		return
	}

	switch env.Event {
	case eventPing:
		ctl.handlePing(c)
		return
	case orch.EventChat, orch.EventMessage:
		if ctl.limiter != nil && !ctl.limiter.Allow(c.id) {
			ctl.sendError(c, ErrRateLimited)
			return
		}
	}

	out := ctl.Orch.Dispatch(c, env.Event, env.Data)
	log.Debug().Str("module", "signal").Str("sid", string(c.id)).Str("event", string(out.Event)).AnErr("err", out.Err).Int("sent_to", out.Publish.SendTo).Msg("handled")
}

func (ctl *SignalWSController) sendError(c *WsSignalConn, err error) {
	if sendErr := c.Send(orch.EventError, orch.ErrorMessage{Message: err.Error()}); sendErr != nil {
		log.Warn().Err(sendErr).Str("module", "signal").Str("sid", string(c.id)).Msg("error reply failed")
	}
}
