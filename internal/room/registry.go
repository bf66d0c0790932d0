package room

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bananopoly/backend/internal/game/dice"
	"github.com/bananopoly/backend/internal/game/engine"
)

// codeAlphabet is the character set room codes are drawn from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	// ErrNotFound is returned when joining an unknown room code.
	ErrNotFound = errors.New("room: not found")
	// ErrFull is returned when joining a room at capacity.
	ErrFull = errors.New("room: full")
)

// EngineFactory builds the engine a freshly created room will own.
type EngineFactory func() *engine.Engine

// Registry owns the mapping from room code to live Room. All methods are safe
// for concurrent use; each Room's engine keeps its own single-writer
// discipline.
type Registry struct {
	mu        sync.RWMutex
	rooms     map[string]*Room
	logger    *zap.Logger
	src       dice.Source
	ttl       time.Duration
	codeLen   int
	newEngine EngineFactory
}

// NewRegistry creates an empty Registry.
//
// Precondition: newEngine, src, and logger must be non-nil; ttl > 0;
// codeLen >= 4.
func NewRegistry(ttl time.Duration, codeLen int, newEngine EngineFactory, src dice.Source, logger *zap.Logger) *Registry {
	return &Registry{
		rooms:     make(map[string]*Room),
		logger:    logger,
		src:       src,
		ttl:       ttl,
		codeLen:   codeLen,
		newEngine: newEngine,
	}
}

// generateCodeLocked draws codes until one misses the live set. Caller must
// hold r.mu.
func (r *Registry) generateCodeLocked() string {
	for {
		var b strings.Builder
		for i := 0; i < r.codeLen; i++ {
			b.WriteByte(codeAlphabet[r.src.Intn(len(codeAlphabet))])
		}
		code := b.String()
		if _, taken := r.rooms[code]; !taken {
			return code
		}
	}
}

// Create makes a new room with host as its sole member and a fresh engine,
// and schedules the room's expiry.
//
// Postcondition: The returned room is registered under a code unique among
// live rooms and will be removed after the TTL unless removed earlier.
func (r *Registry) Create(host string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCodeLocked()
	rm := &Room{
		Code:        code,
		HostSession: host,
		Engine:      r.newEngine(),
		CreatedAt:   time.Now(),
		members:     map[string]struct{}{host: {}},
	}
	rm.expiry = time.AfterFunc(r.ttl, func() { r.expire(code) })
	r.rooms[code] = rm

	r.logger.Info("room created",
		zap.String("code", code),
		zap.String("host", host),
		zap.Int("live_rooms", len(r.rooms)),
	)
	return rm
}

// expire removes the room on TTL, re-checking that it still exists so a
// manually removed room is not double-removed.
func (r *Registry) expire(code string) {
	r.mu.Lock()
	rm, ok := r.rooms[code]
	if ok {
		delete(r.rooms, code)
	}
	r.mu.Unlock()

	if ok {
		rm.close()
		r.logger.Info("room expired", zap.String("code", code))
	}
}

// Join adds session to the room with the given code.
//
// Postcondition: Returns the room, ErrNotFound for an unknown code, or
// ErrFull when the room already holds Capacity sessions.
func (r *Registry) Join(code, session string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil, ErrNotFound
	}
	if rm.MemberCount() >= Capacity {
		return nil, ErrFull
	}
	rm.addMember(session)

	r.logger.Info("session joined room",
		zap.String("code", code),
		zap.String("session", session),
	)
	return rm, nil
}

// Get returns the room with the given code.
func (r *Registry) Get(code string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm, ok := r.rooms[code]
	return rm, ok
}

// BySession returns the room containing session, scanning live rooms.
func (r *Registry) BySession(session string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rm := range r.rooms {
		if rm.HasMember(session) {
			return rm, true
		}
	}
	return nil, false
}

// RemoveSession removes session from whichever room contains it. A room whose
// member set empties is deleted immediately, independent of its TTL.
//
// Postcondition: Returns the room the session left (nil if none) and whether
// that room was deleted.
func (r *Registry) RemoveSession(session string) (*Room, bool) {
	r.mu.Lock()
	var found *Room
	for _, rm := range r.rooms {
		if rm.HasMember(session) {
			found = rm
			break
		}
	}
	if found == nil {
		r.mu.Unlock()
		return nil, false
	}

	found.removeMember(session)
	deleted := found.MemberCount() == 0
	if deleted {
		delete(r.rooms, found.Code)
	}
	r.mu.Unlock()

	if deleted {
		found.close()
		r.logger.Info("room removed, last session left",
			zap.String("code", found.Code),
		)
	}
	return found, deleted
}

// Count returns the number of live rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Shutdown removes every live room, stopping timers and closing engines.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	rooms := make([]*Room, 0, len(r.rooms))
	for code, rm := range r.rooms {
		rooms = append(rooms, rm)
		delete(r.rooms, code)
	}
	r.mu.Unlock()

	for _, rm := range rooms {
		rm.close()
	}
	r.logger.Info("registry shut down", zap.Int("rooms_closed", len(rooms)))
}
