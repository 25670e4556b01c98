package signal

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
	"github.com/skyfall/planning/pkg/metrics"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drives the connection's event loop. The read error on socket
// drop is the sole disconnect signal the core relies on.
func (ctl *Controller) readPump(cid domain.ConnID, token string, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("connection closed")
		ctl.Orch.Disconnect(cid)
		metrics.OpenConnections.Dec()
		c.Close()
	}()

	pongWait := ctl.pingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleEvent(cid, token, c, data)
	}
}

// handleEvent dispatches one inbound event. A panicking handler is
// contained here so a malformed event cannot take the connection's loop
// down with it, let alone unrelated rooms.
func (ctl *Controller) handleEvent(cid domain.ConnID, token string, sig core.SignalConnection, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("module", "signal").Str("cid", string(cid)).Msg("event handler panic")
			ctl.sendError(sig, "internal error")
		}
	}()

	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("bad json")
		return
	}

	switch env.Type {
	case "joinRoom":
		ctl.handleJoinRoom(cid, token, sig, data)
	case "checkRoom":
		ctl.handleCheckRoom(cid, sig, data)
	case "vote":
		ctl.handleVote(cid, sig, data)
	case "toggleVisibility":
		ctl.handleToggleVisibility(cid, sig, data)
	case "deleteVotes":
		ctl.handleDeleteVotes(cid, sig, data)
	case "ping":
		ctl.handlePing(sig)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
		return
	}
	metrics.EventsTotal.WithLabelValues(env.Type).Inc()
}

func (ctl *Controller) sendJSON(sig core.SignalConnection, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = sig.TrySend(b)
}

func (ctl *Controller) sendError(sig core.SignalConnection, msg string) {
	ctl.sendJSON(sig, map[string]any{"type": "error", "error": msg})
}
