package policy

import (
	"context"
	"maps"
	rand "math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/poker"
)

// Personality tunes the heuristic policy. All parameters are in [0, 1].
type Personality struct {
	Name       string  `hcl:"name,label" json:"name"`
	Tightness  float64 `hcl:"tightness,optional" json:"tightness"`   // higher folds more marginal hands
	Aggression float64 `hcl:"aggression,optional" json:"aggression"` // higher raises more and larger
	Bluff      float64 `hcl:"bluff,optional" json:"bluff"`           // chance of raising with nothing
}

var (
	personalitiesMu sync.RWMutex
	personalities   = map[string]Personality{
		"balanced":   {Name: "balanced", Tightness: 0.5, Aggression: 0.5, Bluff: 0.1},
		"tight":      {Name: "tight", Tightness: 0.8, Aggression: 0.4, Bluff: 0.02},
		"loose":      {Name: "loose", Tightness: 0.2, Aggression: 0.4, Bluff: 0.15},
		"aggressive": {Name: "aggressive", Tightness: 0.45, Aggression: 0.9, Bluff: 0.25},
		"passive":    {Name: "passive", Tightness: 0.5, Aggression: 0.1, Bluff: 0},
	}
)

// LookupPersonality returns a named personality, or balanced if unknown
func LookupPersonality(name string) Personality {
	personalitiesMu.RLock()
	defer personalitiesMu.RUnlock()
	if p, ok := personalities[strings.ToLower(name)]; ok {
		return p
	}
	return personalities["balanced"]
}

// RegisterPersonality adds or replaces a named personality
func RegisterPersonality(p Personality) {
	personalitiesMu.Lock()
	defer personalitiesMu.Unlock()
	personalities[strings.ToLower(p.Name)] = p
}

// Personalities returns the known personality names in sorted order
func Personalities() []string {
	personalitiesMu.RLock()
	defer personalitiesMu.RUnlock()
	return slices.Sorted(maps.Keys(personalities))
}

// Heuristic scores hand strength and weighs it against pot odds. It is safe
// for concurrent use.
type Heuristic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewHeuristic creates a heuristic policy drawing from rng
func NewHeuristic(rng *rand.Rand) *Heuristic {
	return &Heuristic{rng: rng}
}

// SeededHeuristic returns the heuristic a host derives from its table seed.
// Hosts sharing a seed make the same decisions in the same spots.
func SeededHeuristic(seed int64) *Heuristic {
	return NewHeuristic(randutil.New(randutil.Derive(seed, 1)))
}

func (h *Heuristic) float() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rng == nil {
		return rand.Float64()
	}
	return h.rng.Float64()
}

// Decide implements DecisionPolicy
func (h *Heuristic) Decide(ctx context.Context, obs Observation) (game.Action, error) {
	if err := ctx.Err(); err != nil {
		return game.Action{}, err
	}

	pers := LookupPersonality(obs.Personality)
	strength := Strength(obs.Hand, obs.CommunityCards)
	toCall := obs.ToCall()
	stack := obs.PlayerChips + obs.PlayerBet

	playThreshold := 0.2 + 0.3*pers.Tightness
	raiseThreshold := 0.8 - 0.25*pers.Aggression
	bluffing := h.float() < pers.Bluff*0.3

	if strength >= raiseThreshold || bluffing {
		if opt, ok := obs.CanRaise(); ok {
			sizing := 0.5 + 0.5*pers.Aggression + 0.25*h.float()
			target := obs.CurrentBet + int(float64(obs.Pot)*sizing)
			target = min(max(target, opt.Min), opt.Max)
			if target >= stack {
				return game.AllIn(), nil
			}
			return game.Raise(target), nil
		}
		if strength >= 0.9 && obs.Allows(game.ActionAllIn) {
			return game.AllIn(), nil
		}
	}

	if toCall == 0 {
		return game.Check(), nil
	}

	potOdds := float64(toCall) / float64(obs.Pot+toCall)
	if strength >= playThreshold && strength >= potOdds {
		return game.Call(), nil
	}
	return game.Fold(), nil
}

var preflopStrength = map[poker.Bucket]float64{
	poker.BucketPremium: 0.9,
	poker.BucketStrong:  0.75,
	poker.BucketMedium:  0.55,
	poker.BucketWeak:    0.35,
	poker.BucketTrash:   0.15,
}

var madeHandStrength = map[poker.Category]float64{
	poker.HighCard:      0.15,
	poker.OnePair:       0.4,
	poker.TwoPair:       0.65,
	poker.ThreeOfAKind:  0.75,
	poker.Straight:      0.8,
	poker.Flush:         0.85,
	poker.FullHouse:     0.92,
	poker.FourOfAKind:   0.97,
	poker.StraightFlush: 0.99,
	poker.RoyalFlush:    1,
}

// Strength rates a hand between 0 and 1. Before the flop it uses the hole
// card buckets; afterwards the made hand category.
func Strength(hole, board []poker.Card) float64 {
	if len(hole) != 2 {
		return 0
	}
	if len(board) < 3 {
		return preflopStrength[poker.PreflopBucket(hole[0], hole[1])]
	}

	v, err := poker.Evaluate(hole, board)
	if err != nil {
		return 0
	}
	s := madeHandStrength[v.Category]
	ranks := v.Key.Ranks()
	switch v.Category {
	case poker.OnePair:
		if len(ranks) > 0 && ranks[0] >= poker.Jack {
			s += 0.15
		}
	case poker.HighCard:
		if len(ranks) > 0 && ranks[0] == poker.Ace {
			s += 0.1
		}
	}
	return s
}
