package app

import (
	"encoding/json"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
	"github.com/skyfall/planning/pkg/metrics"
)

// Orchestrator coordinates the room store and the session registry.
// Handlers are order-tolerant: an event whose target room or member is
// already gone mutates nothing and broadcasts nothing.
type Orchestrator struct {
	Store    core.RoomStore
	Registry *Registry
}

func NewOrchestrator(store core.RoomStore, reg *Registry) *Orchestrator {
	return &Orchestrator{Store: store, Registry: reg}
}

// Join validates the room id, sanitizes the display name and adds the
// connection to the room and its broadcast group. A re-join is harmless
// and still triggers the room update so a reconnecting client resyncs.
func (o *Orchestrator) Join(cid domain.ConnID, rawID, name, deck string) error {
	if !domain.ValidRoomID(rawID) {
		return domain.ErrInvalidRoomID
	}
	id := domain.RoomID(rawID)
	if o.Store.CreateOrJoin(id, cid, domain.SanitizeName(name), deck) {
		metrics.RoomsCreated.Inc()
	}
	o.Registry.Join(cid, id)
	o.PublishRoomUpdate(id)
	return nil
}

// CheckRoom reports room existence, or the sender's membership when
// checkName is set.
func (o *Orchestrator) CheckRoom(cid domain.ConnID, id domain.RoomID, checkName bool) bool {
	if checkName {
		return o.Store.IsMember(id, cid)
	}
	return o.Store.Exists(id)
}

// Vote records the sender's vote and notifies the room. Votes from
// non-members are dropped silently.
func (o *Orchestrator) Vote(cid domain.ConnID, id domain.RoomID, vote json.RawMessage) {
	if o.Store.RecordVote(id, cid, vote) {
		o.PublishRoomUpdate(id)
	}
}

// ToggleVisibility flips the reveal flag and broadcasts the true vote
// values: the reveal action is the one place clients see unmasked state.
func (o *Orchestrator) ToggleVisibility(id domain.RoomID) {
	view, visible, ok := o.Store.ToggleVisibility(id)
	if !ok {
		return
	}
	o.publish(id, toggleVisibilityEvent{Type: "toggleVisibility", Room: view, IsVisible: visible})
}

// DeleteVotes clears every vote, hides the table again and broadcasts
// the cleared members.
func (o *Orchestrator) DeleteVotes(id domain.RoomID) {
	view, ok := o.Store.ClearVotes(id)
	if !ok {
		return
	}
	o.publish(id, deleteVotesEvent{Type: "deleteVotes", Room: view})
}

// Disconnect purges the connection from every room it joined and updates
// each room that survives it.
func (o *Orchestrator) Disconnect(cid domain.ConnID) {
	for _, id := range o.Registry.Drop(cid) {
		removed, deleted := o.Store.RemoveMember(id, cid)
		if deleted {
			metrics.RoomsDeleted.Inc()
			continue
		}
		if removed {
			o.PublishRoomUpdate(id)
		}
	}
}
