package core

import (
	"encoding/json"

	"github.com/skyfall/planning/internal/domain"
)

// RoomStore is the single source of truth for room state. Every operation
// is atomic with respect to the others; missing rooms or members are
// tolerated no-ops, never errors, because late events from disconnecting
// clients are expected.
type RoomStore interface {
	// CreateOrJoin adds the connection to the room, creating the room with
	// this connection as admin when the id is unseen. Re-joins are no-ops.
	// A room with no admin promotes the joiner; a room with no deck adopts
	// the offered one. Reports whether the room was created.
	CreateOrJoin(id domain.RoomID, cid domain.ConnID, name, deck string) (created bool)

	// RecordVote sets the member's vote and reports whether it was
	// recorded (room and member both exist).
	RecordVote(id domain.RoomID, cid domain.ConnID, vote json.RawMessage) bool

	// ToggleVisibility flips the reveal flag and returns the full
	// (unredacted) member view together with the new flag.
	ToggleVisibility(id domain.RoomID) (view RoomView, visible bool, ok bool)

	// ClearVotes removes every member's vote and forces visibility off,
	// returning the cleared member view.
	ClearVotes(id domain.RoomID) (view RoomView, ok bool)

	// RemoveMember drops the member, clearing the admin slot if it was
	// theirs; an emptied room is deleted whole.
	RemoveMember(id domain.RoomID, cid domain.ConnID) (removed, deleted bool)

	Snapshot(id domain.RoomID) (RoomSnapshot, bool)
	Exists(id domain.RoomID) bool
	IsMember(id domain.RoomID, cid domain.ConnID) bool
	List() []RoomInfo
}
