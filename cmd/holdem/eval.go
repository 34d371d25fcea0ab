package main

import (
	"fmt"
	"os"

	"github.com/lox/holdem/internal/simulator"
	"github.com/lox/holdem/poker"
)

// EvalCmd ranks a hand, optionally against an opponent's hole cards
type EvalCmd struct {
	Hole  string `arg:"" help:"Hole cards, e.g. AsKs"`
	Board string `arg:"" help:"Three to five board cards, e.g. AhKd7c2s9s"`
	Vs    string `kong:"help='Opponent hole cards to compare against'"`
}

func (c *EvalCmd) Run(_ *Globals) error {
	hole, err := poker.ParseCards(c.Hole)
	if err != nil {
		return err
	}
	board, err := poker.ParseCards(c.Board)
	if err != nil {
		return err
	}
	value, err := poker.Evaluate(hole, board)
	if err != nil {
		return err
	}

	r := simulator.NewRenderer(os.Stdout)
	fmt.Printf("%s | %s: %s (%s)\n", r.Cards(hole), r.Cards(board), value.Name, r.Cards(value.Best))

	if c.Vs == "" {
		return nil
	}
	vs, err := poker.ParseCards(c.Vs)
	if err != nil {
		return err
	}
	other, err := poker.Evaluate(vs, board)
	if err != nil {
		return err
	}
	fmt.Printf("%s | %s: %s (%s)\n", r.Cards(vs), r.Cards(board), other.Name, r.Cards(other.Best))

	switch value.Compare(other) {
	case 1:
		fmt.Println("First hand wins")
	case -1:
		fmt.Println("Second hand wins")
	default:
		fmt.Println("Split pot")
	}
	return nil
}
