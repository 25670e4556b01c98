package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
)

type connEntry struct {
	signal core.SignalConnection
	rooms  map[domain.RoomID]struct{}
}

// Registry tracks live connections and their broadcast groups: which
// rooms each connection belongs to, and which connections each room
// fans out to. Maintained incrementally on join/leave so a disconnect
// is an O(memberships) lookup instead of a scan over every room.
type Registry struct {
	mu     sync.RWMutex
	conns  map[domain.ConnID]*connEntry
	groups map[domain.RoomID]map[domain.ConnID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[domain.ConnID]*connEntry),
		groups: make(map[domain.RoomID]map[domain.ConnID]struct{}),
	}
}

func (r *Registry) Bind(cid domain.ConnID, sig core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[cid] = &connEntry{signal: sig, rooms: make(map[domain.RoomID]struct{})}
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Msg("bound connection")
}

func (r *Registry) Conn(cid domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[cid]; ok {
		return e.signal, true
	}
	return nil, false
}

func (r *Registry) Join(cid domain.ConnID, id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return
	}
	e.rooms[id] = struct{}{}
	g, ok := r.groups[id]
	if !ok {
		g = make(map[domain.ConnID]struct{})
		r.groups[id] = g
	}
	g[cid] = struct{}{}
}

func (r *Registry) Leave(cid domain.ConnID, id domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[cid]; ok {
		delete(e.rooms, id)
	}
	r.dropFromGroup(cid, id)
}

// Drop unbinds the connection and removes it from every group it joined,
// returning the room ids it belonged to so the caller can clean up
// membership state.
func (r *Registry) Drop(cid domain.ConnID) []domain.RoomID {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[cid]
	if !ok {
		return nil
	}
	out := make([]domain.RoomID, 0, len(e.rooms))
	for id := range e.rooms {
		out = append(out, id)
		r.dropFromGroup(cid, id)
	}
	delete(r.conns, cid)
	log.Info().Str("module", "app.registry").Str("cid", string(cid)).Int("rooms", len(out)).Msg("dropped connection")
	return out
}

// GroupConns returns the signal connections currently in a room's
// broadcast group.
func (r *Registry) GroupConns(id domain.RoomID) []core.SignalConnection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g := r.groups[id]
	out := make([]core.SignalConnection, 0, len(g))
	for cid := range g {
		if e, ok := r.conns[cid]; ok {
			out = append(out, e.signal)
		}
	}
	return out
}

func (r *Registry) dropFromGroup(cid domain.ConnID, id domain.RoomID) {
	g, ok := r.groups[id]
	if !ok {
		return
	}
	delete(g, cid)
	if len(g) == 0 {
		delete(r.groups, id)
	}
}
