package server

import (
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomManager(t *testing.T) {
	t.Parallel()
	rm := NewRoomManager(RoomDeps{Clock: quartz.NewMock(t), Logger: testLogger()})
	t.Cleanup(rm.StopAll)

	room, err := rm.Create(RoomConfig{Name: "main", SmallBlind: 5, BigBlind: 10})
	require.NoError(t, err)
	assert.Equal(t, "main", room.ID())
	assert.Equal(t, 1000, room.Config().StartingChips)

	_, err = rm.Create(RoomConfig{Name: "main", SmallBlind: 5, BigBlind: 10})
	assert.ErrorIs(t, err, ErrRoomExists)

	_, err = rm.Create(RoomConfig{Name: "bad", SmallBlind: 0, BigBlind: 10})
	assert.Error(t, err)

	anon, err := rm.Create(RoomConfig{SmallBlind: 1, BigBlind: 2, Bots: []BotConfig{{Name: "b1"}, {Name: "b2"}}})
	require.NoError(t, err)
	assert.NotEmpty(t, anon.ID())

	list := rm.List()
	require.Len(t, list, 2)
	assert.Equal(t, "main", list[0].ID)
	assert.Equal(t, anon.ID(), list[1].ID)
	assert.Equal(t, 2, list[1].Players)

	got, err := rm.Get("main")
	require.NoError(t, err)
	assert.Same(t, room, got)

	require.NoError(t, rm.Delete("main"))
	_, err = rm.Get("main")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.ErrorIs(t, rm.Delete("main"), ErrRoomNotFound)
	assert.Len(t, rm.List(), 1)

	_, err = room.Join("late", &fakeViewer{})
	assert.ErrorIs(t, err, ErrRoomNotFound, "stopped rooms refuse players")
}
