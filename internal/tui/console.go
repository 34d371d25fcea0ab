package tui

import (
	"bytes"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/simulator"
	"github.com/lox/holdem/internal/table"
)

type sender interface {
	Send(msg tea.Msg)
}

// Console is a full screen simulator.Frontend. The simulator calls it from
// its own goroutine while the Bubble Tea program owns the terminal.
type Console struct {
	program *tea.Program
	sender  sender
	model   *Model

	mu     sync.Mutex
	buf    bytes.Buffer
	render *simulator.Renderer

	lines    chan string
	done     chan struct{}
	doneOnce sync.Once
	finished chan struct{}
	err      error
}

// NewConsole creates a console rendering cards with the given colour
// profile. Call Start before handing it to the simulator.
func NewConsole(profile termenv.Profile, opts ...tea.ProgramOption) *Console {
	c := newConsole(profile)
	c.program = tea.NewProgram(c.model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	c.sender = c.program
	return c
}

func newConsole(profile termenv.Profile) *Console {
	c := &Console{
		lines:    make(chan string, 1),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	c.render = simulator.NewRenderer(&c.buf, termenv.WithProfile(profile))
	c.model = NewModel(c.lines, c.stop)
	return c
}

// Start runs the program in the background
func (c *Console) Start() {
	go func() {
		defer close(c.finished)
		_, c.err = c.program.Run()
		c.stop()
	}()
}

// Done is closed once the user quits or the console is closed
func (c *Console) Done() <-chan struct{} {
	return c.done
}

// Close stops the program and restores the terminal
func (c *Console) Close() error {
	c.stop()
	if c.program == nil {
		return nil
	}
	c.program.Quit()
	<-c.finished
	return c.err
}

func (c *Console) stop() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Event renders e into the hand log
func (c *Console) Event(e table.Event) {
	c.mu.Lock()
	c.buf.Reset()
	c.render.Event(e)
	text := strings.Trim(c.buf.String(), "\n")
	c.mu.Unlock()

	if text == "" {
		return
	}
	c.sender.Send(LogMsg{Lines: strings.Split(text, "\n")})
}

// Prompt shows the hero's options and blocks until a line is entered
func (c *Console) Prompt(view *game.GameState, hero string, options []game.ActionOption) (string, error) {
	select {
	case <-c.done:
		return "", simulator.ErrQuit
	default:
	}

	msg := PromptMsg{State: view, Hero: hero, Options: options}
	if p := view.Player(hero); p != nil {
		msg.Cards = c.render.Cards(p.HoleCards)
	}
	c.sender.Send(msg)

	select {
	case line := <-c.lines:
		return line, nil
	case <-c.done:
		return "", simulator.ErrQuit
	}
}

// Error shows a rejected input above the prompt
func (c *Console) Error(err error) {
	c.sender.Send(ErrorMsg{Err: err})
}
