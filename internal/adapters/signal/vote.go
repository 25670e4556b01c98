package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
)

func (ctl *Controller) handleVote(
	cid domain.ConnID,
	sig core.SignalConnection,
	data []byte,
) {
	var p struct {
		RoomID string          `json:"roomId"`
		Vote   json.RawMessage `json:"vote"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad vote payload")
		ctl.sendError(sig, "bad_payload")
		return
	}
	ctl.Orch.Vote(cid, domain.RoomID(p.RoomID), p.Vote)
}

func (ctl *Controller) handleToggleVisibility(
	cid domain.ConnID,
	sig core.SignalConnection,
	data []byte,
) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggleVisibility payload")
		ctl.sendError(sig, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("room", p.RoomID).Msg("toggle visibility")
	ctl.Orch.ToggleVisibility(domain.RoomID(p.RoomID))
}

func (ctl *Controller) handleDeleteVotes(
	cid domain.ConnID,
	sig core.SignalConnection,
	data []byte,
) {
	var p struct {
		RoomID string `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad deleteVotes payload")
		ctl.sendError(sig, "bad_payload")
		return
	}
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("room", p.RoomID).Msg("delete votes")
	ctl.Orch.DeleteVotes(domain.RoomID(p.RoomID))
}
