package core

import (
	"encoding/json"

	"github.com/skyfall/planning/internal/domain"
)

// MaskedVote replaces a present vote in redacted views, so clients can
// show who voted without learning the value before the reveal.
var MaskedVote = json.RawMessage(`"*"`)

// MemberView is the broadcastable projection of one member.
type MemberView struct {
	Name string          `json:"name"`
	Vote json.RawMessage `json:"vote,omitempty"`
}

// RoomView maps connection id to member projection.
type RoomView map[domain.ConnID]MemberView

// RoomSnapshot is the payload of a regular room update: the member views
// plus the room-scoped facts a client needs to render the table.
type RoomSnapshot struct {
	Room      RoomView      `json:"room"`
	Admin     domain.ConnID `json:"admin,omitempty"`
	Deck      string        `json:"deck"`
	IsVisible bool          `json:"isVisible"`
}

// RoomInfo is a read-only listing entry for APIs.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

// RedactedView projects members with votes masked unless visible.
// A member with no vote stays voteless rather than masked.
func RedactedView(members map[domain.ConnID]*domain.Member, visible bool) RoomView {
	out := make(RoomView, len(members))
	for cid, m := range members {
		v := MemberView{Name: m.Name}
		if m.HasVote() {
			if visible {
				v.Vote = m.Vote
			} else {
				v.Vote = MaskedVote
			}
		}
		out[cid] = v
	}
	return out
}

// FullView projects members with their true vote values.
func FullView(members map[domain.ConnID]*domain.Member) RoomView {
	return RedactedView(members, true)
}
