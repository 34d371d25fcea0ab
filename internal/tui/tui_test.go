package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/simulator"
	"github.com/lox/holdem/internal/table"
)

type recordingSender struct {
	msgs chan tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs <- msg
}

func newTestConsole() (*Console, *recordingSender) {
	c := newConsole(termenv.Ascii)
	rec := &recordingSender{msgs: make(chan tea.Msg, 1024)}
	c.sender = rec
	return c, rec
}

func typeLine(m *Model, line string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(line)})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func testState() *game.GameState {
	return &game.GameState{
		Pot:        15,
		CurrentBet: 10,
		BigBlind:   10,
		Players: []*game.Player{
			{ID: "hero", Chips: 995, CurrentBet: 5, IsActive: true, IsSmallBlind: true},
			{ID: "bot-2", Chips: 990, CurrentBet: 10, IsActive: true, IsBigBlind: true},
			{ID: "bot-3", Chips: 1000, IsActive: false},
		},
	}
}

func TestModelSubmitsOnlyWhilePrompted(t *testing.T) {
	t.Parallel()
	lines := make(chan string, 1)
	m := NewModel(lines, nil)

	typeLine(m, "call")
	assert.Empty(t, lines, "input before a prompt is dropped")
	assert.Empty(t, m.input.Value())

	m.Update(PromptMsg{State: testState(), Hero: "hero", Options: []game.ActionOption{{Type: game.ActionFold}, {Type: game.ActionCall}}})
	typeLine(m, "  call ")
	require.Len(t, lines, 1)
	assert.Equal(t, "call", <-lines)
	assert.Nil(t, m.prompt)
	assert.Empty(t, m.input.Value())
}

func TestModelIgnoresBlankLines(t *testing.T) {
	t.Parallel()
	lines := make(chan string, 1)
	m := NewModel(lines, nil)
	m.Update(PromptMsg{State: testState(), Hero: "hero"})

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, lines)
	assert.NotNil(t, m.prompt, "still waiting for an action")
}

func TestModelQuitKey(t *testing.T) {
	t.Parallel()
	quit := 0
	m := NewModel(make(chan string, 1), func() { quit++ })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, quit)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestModelTabMovesFocus(t *testing.T) {
	t.Parallel()
	lines := make(chan string, 1)
	m := NewModel(lines, nil)
	m.Update(PromptMsg{State: testState(), Hero: "hero"})

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focusedPane)
	typeLine(m, "fold")
	assert.Empty(t, lines, "the log pane does not take input")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focusedPane)
	typeLine(m, "fold")
	assert.Equal(t, "fold", <-lines)
}

func TestModelView(t *testing.T) {
	t.Parallel()
	m := NewModel(make(chan string, 1), nil)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(LogMsg{Lines: []string{"Hand h1 dealer bot-2", "  hero posts blind 5"}})
	m.Update(PromptMsg{
		State:   testState(),
		Hero:    "hero",
		Cards:   "A♠ K♠",
		Options: []game.ActionOption{{Type: game.ActionFold}, {Type: game.ActionCall}, {Type: game.ActionRaise, Min: 20, Max: 1000}},
	})
	m.Update(ErrorMsg{Err: errors.New(`unknown action "dance"`)})

	view := m.View()
	assert.Contains(t, view, "hero posts blind 5")
	assert.Contains(t, view, "Pot: 15")
	assert.Contains(t, view, "bot-2")
	assert.NotContains(t, view, "bot-3", "seats out of the hand are hidden")
	assert.Contains(t, view, "A♠ K♠")
	assert.Contains(t, view, "To call: 5")
	assert.Contains(t, view, "[raise 20-1000]")
	assert.Contains(t, view, `unknown action "dance"`)
}

func TestConsoleEventRendersLog(t *testing.T) {
	t.Parallel()
	c, rec := newTestConsole()

	c.Event(table.Event{Type: table.EventPlayerAction, PlayerID: "hero", Action: "call"})
	msg := <-rec.msgs
	require.IsType(t, LogMsg{}, msg)
	assert.Equal(t, []string{"  hero call"}, msg.(LogMsg).Lines)
}

func TestConsolePromptQuitsWhenDone(t *testing.T) {
	t.Parallel()
	c, rec := newTestConsole()

	errc := make(chan error, 1)
	go func() {
		_, err := c.Prompt(testState(), "hero", nil)
		errc <- err
	}()
	msg := <-rec.msgs
	require.IsType(t, PromptMsg{}, msg)
	assert.Equal(t, "hero", msg.(PromptMsg).Hero)

	require.NoError(t, c.Close())
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, simulator.ErrQuit)
	case <-time.After(5 * time.Second):
		t.Fatal("prompt did not return")
	}

	_, err := c.Prompt(testState(), "hero", nil)
	assert.ErrorIs(t, err, simulator.ErrQuit)
}

func TestConsoleDrivesSimulator(t *testing.T) {
	t.Parallel()
	c, rec := newTestConsole()

	// Answer every prompt through the model, the way a user would.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for msg := range rec.msgs {
			c.model.Update(msg)
			if _, ok := msg.(PromptMsg); ok {
				typeLine(c.model, "fold")
			}
		}
	}()

	sim, err := simulator.New(simulator.Config{Hands: 3, Seats: 2, Seed: 9, Human: "hero", Frontend: c})
	require.NoError(t, err)
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Hands)
	assert.Zero(t, stats.TotalNet())

	close(rec.msgs)
	<-drained
	require.NoError(t, c.Close())
	assert.Contains(t, strings.Join(c.model.lines, "\n"), "hero fold")
}
