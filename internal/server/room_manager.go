package server

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/lox/holdem/internal/randutil"
)

// RoomManager owns the rooms of one server
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	order []string
	deps  RoomDeps
	next  uint64
}

// NewRoomManager creates a manager whose rooms share deps. Each room gets
// its own shuffle seed derived from deps.Seed.
func NewRoomManager(deps RoomDeps) *RoomManager {
	deps.applyDefaults()
	return &RoomManager{
		rooms: make(map[string]*Room),
		deps:  deps,
	}
}

// Create validates cfg, creates the room and seats its bots
func (m *RoomManager) Create(cfg RoomConfig) (*Room, error) {
	cfg.ApplyDefaults()
	if cfg.Name == "" {
		cfg.Name = uuid.NewString()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, ok := m.rooms[cfg.Name]; ok {
		m.mu.Unlock()
		return nil, ErrRoomExists
	}
	m.next++
	deps := m.deps
	deps.Seed = randutil.Derive(m.deps.Seed, m.next)
	room := NewRoom(cfg.Name, cfg, deps)
	m.rooms[cfg.Name] = room
	m.order = append(m.order, cfg.Name)
	m.mu.Unlock()

	for _, bc := range cfg.Bots {
		if err := room.AddBot(bc); err != nil {
			m.deps.Logger.Warn("Could not seat bot", "room", cfg.Name, "bot", bc.Name, "error", err)
		}
	}
	m.deps.Logger.Info("Room created", "room", cfg.Name, "blinds", cfg.SmallBlind, "bigBlind", cfg.BigBlind, "bots", len(cfg.Bots))
	return room, nil
}

// Get returns a room by id
func (m *RoomManager) Get(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// List summarises rooms in creation order
func (m *RoomManager) List() []RoomSummary {
	m.mu.RLock()
	rooms := make([]*Room, 0, len(m.order))
	for _, id := range m.order {
		rooms = append(rooms, m.rooms[id])
	}
	m.mu.RUnlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Summary())
	}
	return out
}

// Delete stops and removes a room
func (m *RoomManager) Delete(id string) error {
	m.mu.Lock()
	room, ok := m.rooms[id]
	if ok {
		delete(m.rooms, id)
		m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	}
	m.mu.Unlock()

	if !ok {
		return ErrRoomNotFound
	}
	room.Stop()
	return nil
}

// StopAll stops every room
func (m *RoomManager) StopAll() {
	m.mu.Lock()
	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	m.mu.Unlock()

	for _, r := range rooms {
		r.Stop()
	}
}
