package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
)

// RoomStoreImpl is a threadsafe in-memory room store. One mutex guards the
// whole mapping so every operation is a critical section; a room never
// outlives its last member.
type RoomStoreImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*domain.Room
}

func NewRoomStore() *RoomStoreImpl {
	return &RoomStoreImpl{rooms: make(map[domain.RoomID]*domain.Room)}
}

func (s *RoomStoreImpl) CreateOrJoin(id domain.RoomID, cid domain.ConnID, name, deck string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		room = domain.NewRoom(deck)
		room.Members[cid] = domain.NewMember(name)
		room.Admin = cid
		s.rooms[id] = room
		log.Info().Str("module", "app.store").Str("room", string(id)).Str("cid", string(cid)).Msg("room created")
		return true
	}

	if _, member := room.Members[cid]; member {
		return false
	}

	room.Members[cid] = domain.NewMember(name)
	if room.Admin == "" {
		room.Admin = cid
	}
	if room.Deck == "" {
		room.Deck = deck
	}
	log.Info().Str("module", "app.store").Str("room", string(id)).Str("cid", string(cid)).Msg("member joined")
	return false
}

func (s *RoomStoreImpl) RecordVote(id domain.RoomID, cid domain.ConnID, vote json.RawMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	m, ok := room.Members[cid]
	if !ok {
		return false
	}
	m.Vote = vote
	return true
}

func (s *RoomStoreImpl) ToggleVisibility(id domain.RoomID) (core.RoomView, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, false, false
	}
	room.Visible = !room.Visible
	return core.FullView(room.Members), room.Visible, true
}

func (s *RoomStoreImpl) ClearVotes(id domain.RoomID) (core.RoomView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, false
	}
	for _, m := range room.Members {
		m.Vote = nil
	}
	room.Visible = false
	return core.FullView(room.Members), true
}

func (s *RoomStoreImpl) RemoveMember(id domain.RoomID, cid domain.ConnID) (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return false, false
	}
	if _, member := room.Members[cid]; !member {
		return false, false
	}
	delete(room.Members, cid)
	if room.Admin == cid {
		room.Admin = ""
	}
	if len(room.Members) == 0 {
		delete(s.rooms, id)
		log.Info().Str("module", "app.store").Str("room", string(id)).Msg("room deleted")
		return true, true
	}
	log.Info().Str("module", "app.store").Str("room", string(id)).Str("cid", string(cid)).Msg("member removed")
	return true, false
}

func (s *RoomStoreImpl) Snapshot(id domain.RoomID) (core.RoomSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return core.RoomSnapshot{}, false
	}
	return core.RoomSnapshot{
		Room:      core.RedactedView(room.Members, room.Visible),
		Admin:     room.Admin,
		Deck:      room.Deck,
		IsVisible: room.Visible,
	}, true
}

func (s *RoomStoreImpl) Exists(id domain.RoomID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[id]
	return ok
}

func (s *RoomStoreImpl) IsMember(id domain.RoomID, cid domain.ConnID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return false
	}
	_, member := room.Members[cid]
	return member
}

func (s *RoomStoreImpl) List() []core.RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(s.rooms))
	for id, room := range s.rooms {
		out = append(out, core.RoomInfo{ID: id, MemberCount: len(room.Members)})
	}
	return out
}
