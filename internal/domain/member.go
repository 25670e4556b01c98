package domain

import (
	"bytes"
	"encoding/json"
)

// Member represents a connection's participation in one room.
// Vote is opaque to the server: raw JSON, nil until the member votes.
type Member struct {
	Name string
	Vote json.RawMessage
}

// NewMember avoids raw literals in adapters and keeps construction obvious.
func NewMember(name string) *Member {
	return &Member{Name: name}
}

var jsonNull = []byte("null")

// HasVote reports whether the member has cast a vote. A literal JSON
// null payload counts as "has not voted", not as a maskable value.
func (m *Member) HasVote() bool {
	return len(m.Vote) > 0 && !bytes.Equal(m.Vote, jsonNull)
}
