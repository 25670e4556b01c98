package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
	"github.com/skyfall/planning/pkg/metrics"
)

type updateRoomEvent struct {
	Type string `json:"type"`
	core.RoomSnapshot
}

type toggleVisibilityEvent struct {
	Type      string        `json:"type"`
	Room      core.RoomView `json:"room"`
	IsVisible bool          `json:"isVisible"`
}

type deleteVotesEvent struct {
	Type string        `json:"type"`
	Room core.RoomView `json:"room"`
}

// PublishRoomUpdate fans the redacted snapshot out to the room's group.
// A room deleted between event arrival and publish is skipped: whoever
// remained was already notified on the removal path, and an empty room
// has no one left to tell.
func (o *Orchestrator) PublishRoomUpdate(id domain.RoomID) {
	snap, ok := o.Store.Snapshot(id)
	if !ok {
		return
	}
	o.publish(id, updateRoomEvent{Type: "updateRoom", RoomSnapshot: snap})
}

// publish is fire-and-forget: no acknowledgment, no retry. Slow receivers
// lose the frame rather than stall the room.
func (o *Orchestrator) publish(id domain.RoomID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("room", string(id)).Msg("marshal broadcast")
		return
	}
	sent, dropped := 0, 0
	for _, sig := range o.Registry.GroupConns(id) {
		if err := sig.TrySend(core.Frame(b)); err != nil {
			dropped++
			continue
		}
		sent++
	}
	metrics.BroadcastsSent.Add(float64(sent))
	if dropped > 0 {
		metrics.BroadcastsDropped.Add(float64(dropped))
		log.Warn().Str("module", "app.broadcast").Str("room", string(id)).Int("dropped", dropped).Msg("broadcast drops")
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(id)).Int("sent_to", sent).Msg("broadcast")
}
