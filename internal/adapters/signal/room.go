package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
)

func (ctl *Controller) handleJoinRoom(
	cid domain.ConnID,
	token string,
	sig core.SignalConnection,
	data []byte,
) {
	var p struct {
		RoomID string `json:"roomId"`
		Name   string `json:"name"`
		Deck   string `json:"deck"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(sig, "bad_payload")
		return
	}

	// Reject malformed ids before charging the limiter: the validation
	// error is the reply either way, and a bad id must not consume a slot.
	if !domain.ValidRoomID(p.RoomID) {
		ctl.sendError(sig, "Invalid room id")
		return
	}

	if !ctl.limiter.Allow(token) {
		log.Warn().Str("module", "signal").Str("client", token).Msg("join rate limited")
		ctl.sendError(sig, "too many join attempts")
		return
	}

	if err := ctl.Orch.Join(cid, p.RoomID, p.Name, p.Deck); err != nil {
		if errors.Is(err, domain.ErrInvalidRoomID) {
			ctl.sendError(sig, "Invalid room id")
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("join failed")
		ctl.sendError(sig, "join failed")
		return
	}
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("room", p.RoomID).Msg("join")
}

func (ctl *Controller) handleCheckRoom(
	cid domain.ConnID,
	sig core.SignalConnection,
	data []byte,
) {
	var p struct {
		RoomID    string `json:"roomId"`
		CheckName bool   `json:"checkName"`
		Ack       int64  `json:"ack"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad checkRoom payload")
		ctl.sendError(sig, "bad_payload")
		return
	}

	resp := struct {
		Type   string `json:"type"`
		Ack    int64  `json:"ack"`
		Result bool   `json:"result"`
	}{
		Type:   "checkRoom",
		Ack:    p.Ack,
		Result: ctl.Orch.CheckRoom(cid, domain.RoomID(p.RoomID), p.CheckName),
	}
	ctl.sendJSON(sig, resp)
}
