package poker

import (
	"errors"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when more cards are requested than remain
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck represents a standard 52-card deck
type Deck struct {
	cards  [52]Card // Fixed size array
	next   int
	burned []Card
	rng    *rand.Rand // Random source for deterministic shuffling
}

// NewDeck creates a new shuffled deck with explicit RNG
func NewDeck(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}

	i := 0
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			d.cards[i] = NewCard(rank, suit)
			i++
		}
	}

	d.Shuffle()
	return d
}

// NewStackedDeck creates a deck whose first cards are exactly the given cards,
// followed by the remaining cards in a fixed order. Used for replays and tests.
func NewStackedDeck(top []Card) (*Deck, error) {
	d := &Deck{}
	seen := make(map[Card]bool, 52)
	i := 0
	for _, c := range top {
		if !c.Valid() {
			return nil, errors.New("invalid card in stacked deck")
		}
		if seen[c] {
			return nil, errors.New("duplicate card in stacked deck: " + c.String())
		}
		seen[c] = true
		d.cards[i] = c
		i++
	}
	for suit := Spades; suit <= Clubs; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			if !seen[c] {
				d.cards[i] = c
				i++
			}
		}
	}
	return d, nil
}

// Shuffle shuffles the deck using Fisher-Yates and resets the deal position
func (d *Deck) Shuffle() {
	d.next = 0
	d.burned = d.burned[:0]
	for i := len(d.cards) - 1; i > 0; i-- {
		var j int
		if d.rng != nil {
			j = d.rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns n cards from the front of the deck
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 || d.next+n > len(d.cards) {
		return nil, ErrDeckExhausted
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Burn discards the top card
func (d *Deck) Burn() error {
	if d.next >= len(d.cards) {
		return ErrDeckExhausted
	}
	d.burned = append(d.burned, d.cards[d.next])
	d.next++
	return nil
}

// Burned returns the cards discarded so far this hand
func (d *Deck) Burned() []Card {
	return append([]Card(nil), d.burned...)
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards) - d.next
}
