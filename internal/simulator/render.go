package simulator

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/table"
	"github.com/lox/holdem/poker"
)

// Renderer prints the hand to a console. Colours are chosen for the writer
// it was created with, so a file or buffer gets plain text.
type Renderer struct {
	w io.Writer

	header  lipgloss.Style
	info    lipgloss.Style
	action  lipgloss.Style
	red     lipgloss.Style
	black   lipgloss.Style
	success lipgloss.Style
	errorS  lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer creates a renderer writing to w. Options such as
// termenv.WithProfile override the detected colour support.
func NewRenderer(w io.Writer, opts ...termenv.OutputOption) *Renderer {
	lg := lipgloss.NewRenderer(w, opts...)
	return &Renderer{
		w: w,
		header: lg.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true),
		info: lg.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		action: lg.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		red: lg.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		black: lg.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		success: lg.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		errorS: lg.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		muted: lg.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// Card renders one card with a red or black suit
func (r *Renderer) Card(c poker.Card) string {
	if c.Suit.IsRed() {
		return r.red.Render(c.Pretty())
	}
	return r.black.Render(c.Pretty())
}

// Cards renders cards separated by spaces
func (r *Renderer) Cards(cards []poker.Card) string {
	if len(cards) == 0 {
		return r.muted.Render("--")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = r.Card(c)
	}
	return strings.Join(parts, " ")
}

// Title prints a banner line
func (r *Renderer) Title(text string) {
	r.printf("%s\n\n", r.header.Render(text))
}

// Event prints one hand history entry
func (r *Renderer) Event(e table.Event) {
	switch e.Type {
	case table.EventHandStart:
		r.printf("\n%s %s\n", r.header.Render("Hand "+e.HandID), r.muted.Render("dealer "+e.PlayerID))
	case table.EventBlind:
		r.printf("  %s posts blind %d\n", e.PlayerID, e.Amount)
	case table.EventPlayerAction:
		line := fmt.Sprintf("%s %s", e.PlayerID, e.Action)
		if e.Amount > 0 {
			line += fmt.Sprintf(" %d", e.Amount)
		}
		if e.Forced {
			line += " (forced)"
		}
		r.printf("  %s\n", r.action.Render(line))
	case table.EventStreet:
		r.printf("%s %s\n", r.info.Render(strings.ToUpper(e.Phase.String())), r.Cards(e.Cards))
	case table.EventHandEnd:
		for _, w := range e.Winners {
			r.printf("  %s\n", r.success.Render(fmt.Sprintf("%s wins %d with %s", w.PlayerID, w.Amount, w.HandRankName)))
		}
	case table.EventHandVoid:
		r.printf("  %s\n", r.errorS.Render("hand void: "+e.Reason))
	}
}

// Table prints the hand as hero sees it along with the legal actions
func (r *Renderer) Table(s *game.GameState, hero string, options []game.ActionOption) {
	r.printf("\n%s %s   %s\n", r.info.Render("Board"), r.Cards(s.CommunityCards), r.info.Render(fmt.Sprintf("Pot %d", s.Pot)))
	for _, p := range s.Players {
		if !p.IsActive {
			continue
		}
		marker := "  "
		if cur := s.CurrentPlayer(); cur != nil && cur.ID == p.ID {
			marker = "> "
		}
		status := ""
		switch {
		case p.IsFolded:
			status = r.muted.Render(" folded")
		case p.IsAllIn:
			status = r.action.Render(" all-in")
		}
		cards := ""
		if p.ID == hero {
			cards = " " + r.Cards(p.HoleCards)
		}
		dealer := ""
		if p.IsDealer {
			dealer = " (D)"
		}
		r.printf("%s%-12s %6d  bet %-5d%s%s%s\n", marker, p.ID, p.Chips, p.CurrentBet, dealer, cards, status)
	}
	if len(options) > 0 {
		if p := s.Player(hero); p != nil && s.ToCall(p) > 0 {
			r.printf("%s\n", r.info.Render(fmt.Sprintf("To call %d", s.ToCall(p))))
		}
		r.printf("%s %s\n", r.action.Render("Actions:"), describeOptions(options))
	}
}

// Error prints a rejected input
func (r *Renderer) Error(err error) {
	r.printf("%s\n", r.errorS.Render(err.Error()))
}

// Summary prints the results of a run
func (r *Renderer) Summary(st *Stats) {
	r.printf("\n%s\n", r.header.Render("Results"))
	r.printf("Hands %d  Showdowns %d\n", st.Hands, st.Showdowns)
	for _, s := range st.Seats {
		lo, hi := s.ConfidenceInterval95()
		r.printf("%-12s %-11s net %+6d  %+.2f bb/hand  [%+.2f, %+.2f]  wins %d (%d at showdown)\n",
			s.PlayerID, s.Personality, s.NetChips, s.Mean(), lo, hi, s.Wins, s.ShowdownWins)
	}
}

func describeOptions(options []game.ActionOption) string {
	parts := make([]string, 0, len(options))
	for _, o := range options {
		switch o.Type {
		case game.ActionRaise:
			parts = append(parts, fmt.Sprintf("raise %d-%d", o.Min, o.Max))
		case game.ActionAllIn:
			parts = append(parts, fmt.Sprintf("all-in %d", o.Max))
		default:
			parts = append(parts, o.Type.String())
		}
	}
	return strings.Join(parts, ", ")
}
