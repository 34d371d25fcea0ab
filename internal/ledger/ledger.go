// Package ledger records each player's chips at the end of every hand.
package ledger

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Reporter persists final balances after a hand
type Reporter interface {
	ReportBalances(ctx context.Context, roomID, handID string, balances map[string]int) error
	Close() error
}

// Open returns the reporter for a driver name: "memory", "redis" or
// "postgres". An empty driver means memory.
func Open(ctx context.Context, driver, dsn string) (Reporter, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "redis":
		return OpenRedis(ctx, dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown ledger driver %q", driver)
}

// Memory keeps balances in process. It is the default when nothing else is
// configured.
type Memory struct {
	mu       sync.RWMutex
	balances map[string]map[string]int
	lastHand map[string]string
}

// NewMemory creates an empty in-memory ledger
func NewMemory() *Memory {
	return &Memory{
		balances: make(map[string]map[string]int),
		lastHand: make(map[string]string),
	}
}

func (m *Memory) ReportBalances(_ context.Context, roomID, handID string, balances map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.balances[roomID]
	if !ok {
		room = make(map[string]int)
		m.balances[roomID] = room
	}
	maps.Copy(room, balances)
	m.lastHand[roomID] = handID
	return nil
}

// Balances returns a copy of the balances recorded for a room
func (m *Memory) Balances(roomID string) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.balances[roomID])
}

// LastHand returns the id of the last hand reported for a room
func (m *Memory) LastHand(roomID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHand[roomID]
}

func (m *Memory) Close() error { return nil }

// Multi reports to several reporters concurrently
type Multi []Reporter

func (m Multi) ReportBalances(ctx context.Context, roomID, handID string, balances map[string]int) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range m {
		g.Go(func() error {
			return r.ReportBalances(ctx, roomID, handID, balances)
		})
	}
	return g.Wait()
}

func (m Multi) Close() error {
	var g errgroup.Group
	for _, r := range m {
		g.Go(r.Close)
	}
	return g.Wait()
}
