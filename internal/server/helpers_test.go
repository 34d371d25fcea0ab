package server

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/ledger"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// fakeViewer records everything a room sends it
type fakeViewer struct {
	mu   sync.Mutex
	msgs []*Message
}

func (f *fakeViewer) SendMessage(msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeViewer) count(mt MessageType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.msgs {
		if m.Type == mt {
			n++
		}
	}
	return n
}

// last decodes the most recent message of type mt into v
func (f *fakeViewer) last(t *testing.T, mt MessageType, v any) bool {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].Type == mt {
			require.NoError(t, json.Unmarshal(f.msgs[i].Data, v))
			return true
		}
	}
	return false
}

func testRoomConfig() RoomConfig {
	cfg := RoomConfig{
		Name:            "main",
		SmallBlind:      5,
		BigBlind:        10,
		TurnTimeoutMs:   1000,
		NextHandDelayMs: 100,
	}
	cfg.ApplyDefaults()
	return cfg
}

func newTestRoom(t *testing.T, cfg RoomConfig, clock quartz.Clock) (*Room, *ledger.Memory) {
	t.Helper()
	mem := ledger.NewMemory()
	room := NewRoom(cfg.Name, cfg, RoomDeps{
		Clock:    clock,
		Logger:   testLogger(),
		Reporter: mem,
		Seed:     1,
	})
	t.Cleanup(room.Stop)
	return room, mem
}

// advance fires the next pending timer and waits for its callback
func advance(t *testing.T, mClock *quartz.Mock) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, w := mClock.AdvanceNext()
	w.MustWait(ctx)
}

// seatTwo joins alice and bob and deals the first hand
func seatTwo(t *testing.T, room *Room, mClock *quartz.Mock) (alice, bob *fakeViewer) {
	t.Helper()
	alice, bob = &fakeViewer{}, &fakeViewer{}
	_, err := room.Join("alice", alice)
	require.NoError(t, err)
	_, err = room.Join("bob", bob)
	require.NoError(t, err)
	advance(t, mClock)
	require.True(t, room.Summary().InProgress)
	return alice, bob
}

func other(id string) string {
	if id == "alice" {
		return "bob"
	}
	return "alice"
}
