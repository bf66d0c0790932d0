// Package room provides the registry of live multiplayer sessions: room
// lifecycle, capacity, code generation, and expiry.
package room

import (
	"sync"
	"time"

	"github.com/bananopoly/backend/internal/game/engine"
)

// Capacity is the fixed number of seats per room.
const Capacity = 2

// Room is one isolated multiplayer session. It exclusively owns its Engine;
// membership is mutated only through the Registry.
type Room struct {
	// Code is the 6-character identifier players use to join.
	Code string
	// HostSession is the session that created the room.
	HostSession string
	// Engine is the room's game state machine.
	Engine *engine.Engine
	// CreatedAt is when the room was created; expiry counts from here.
	CreatedAt time.Time

	mu      sync.RWMutex
	members map[string]struct{}
	expiry  *time.Timer
}

// Members returns a copy of the member session ids.
func (r *Room) Members() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.members))
	for s := range r.members {
		out = append(out, s)
	}
	return out
}

// HasMember reports whether session is in the room.
func (r *Room) HasMember(session string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[session]
	return ok
}

// MemberCount returns the number of sessions in the room.
func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// IsHost reports whether session created the room.
func (r *Room) IsHost(session string) bool {
	return session == r.HostSession
}

func (r *Room) addMember(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[session] = struct{}{}
}

func (r *Room) removeMember(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, session)
}

// close releases the room's resources: the expiry timer and the engine.
func (r *Room) close() {
	if r.expiry != nil {
		r.expiry.Stop()
	}
	r.Engine.Close()
}
