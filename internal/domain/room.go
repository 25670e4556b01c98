package domain

type (
	// RoomID is the short alphanumeric id clients join by.
	RoomID string
	// ConnID identifies one live connection; a member is keyed by it.
	ConnID string
)

// Room is the composite state of one planning session. All four
// room-scoped facts live together so they are created and destroyed
// as one unit.
type Room struct {
	Members map[ConnID]*Member
	Deck    string
	Visible bool
	Admin   ConnID // empty when the admin slot is unset
}

func NewRoom(deck string) *Room {
	return &Room{
		Members: make(map[ConnID]*Member),
		Deck:    deck,
	}
}
