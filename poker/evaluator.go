package poker

import (
	"errors"
	"fmt"
	"sort"
)

// Category enumerates hand categories ordered from weakest to strongest.
// LastStanding is synthetic: it marks a pot won because every other player
// folded and is never compared against a real hand.
type Category uint8

const (
	LastStanding Category = iota
	HighCard
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var categoryNames = [...]string{
	LastStanding:  "Last Standing",
	HighCard:      "High Card",
	OnePair:       "One Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

// String returns a human-readable category name
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// Key is a totally ordered tiebreak key: the category in the top bits followed
// by up to five significant ranks, most significant first, four bits each.
// A larger key is a stronger hand.
type Key uint32

// Category extracts the hand category from the key
func (k Key) Category() Category {
	return Category(k >> 20)
}

// Ranks returns the significant ranks encoded in the key, most significant first
func (k Key) Ranks() []Rank {
	ranks := make([]Rank, 0, 5)
	for shift := 16; shift >= 0; shift -= 4 {
		if r := Rank((k >> uint(shift)) & 0xF); r != 0 {
			ranks = append(ranks, r)
		}
	}
	return ranks
}

func makeKey(cat Category, ranks ...Rank) Key {
	k := Key(cat) << 20
	shift := 16
	for _, r := range ranks {
		k |= Key(r) << uint(shift)
		shift -= 4
	}
	return k
}

// HandValue is the result of evaluating the best five cards available to a player
type HandValue struct {
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Key      Key      `json:"key"`
	Best     []Card   `json:"best"`
}

// Compare returns 1 if h beats other, -1 if it loses and 0 on a tie
func (h HandValue) Compare(other HandValue) int {
	switch {
	case h.Key > other.Key:
		return 1
	case h.Key < other.Key:
		return -1
	default:
		return 0
	}
}

var (
	ErrTooFewCards   = errors.New("at least five cards are required")
	ErrTooManyCards  = errors.New("at most seven cards may be evaluated")
	ErrDuplicateCard = errors.New("duplicate card")
	ErrInvalidCard   = errors.New("invalid card")
)

// LastStandingValue is the value awarded to a player who wins uncontested
func LastStandingValue() HandValue {
	return HandValue{Category: LastStanding, Name: LastStanding.String()}
}

// Evaluate ranks the best five card hand available from hole and community
// cards. Between five and seven cards in total must be supplied; every
// five card combination is scored and the strongest kept.
func Evaluate(hole, board []Card) (HandValue, error) {
	cards := make([]Card, 0, len(hole)+len(board))
	cards = append(cards, hole...)
	cards = append(cards, board...)
	return EvaluateCards(cards)
}

// EvaluateCards ranks the best five card hand from 5 to 7 cards
func EvaluateCards(cards []Card) (HandValue, error) {
	switch {
	case len(cards) < 5:
		return HandValue{}, ErrTooFewCards
	case len(cards) > 7:
		return HandValue{}, ErrTooManyCards
	}

	var seen [52]bool
	for _, c := range cards {
		if !c.Valid() {
			return HandValue{}, fmt.Errorf("%w: %v", ErrInvalidCard, c)
		}
		if seen[c.index()] {
			return HandValue{}, fmt.Errorf("%w: %s", ErrDuplicateCard, c)
		}
		seen[c.index()] = true
	}

	n := len(cards)
	var best Key
	var bestHand [5]Card
	var five [5]Card
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						five = [5]Card{cards[a], cards[b], cards[c], cards[d], cards[e]}
						if k := evaluate5(five); k > best {
							best = k
							bestHand = five
						}
					}
				}
			}
		}
	}

	sort.Slice(bestHand[:], func(i, j int) bool { return bestHand[i].Rank > bestHand[j].Rank })
	cat := best.Category()
	return HandValue{
		Category: cat,
		Name:     cat.String(),
		Key:      best,
		Best:     bestHand[:],
	}, nil
}

type rankGroup struct {
	rank  Rank
	count int
}

func evaluate5(cards [5]Card) Key {
	var counts [Ace + 1]int
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	groups := make([]rankGroup, 0, 5)
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			groups = append(groups, rankGroup{rank: r, count: counts[r]})
		}
	}
	// Bigger groups first, then higher rank.
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})

	straightHigh := Rank(0)
	if len(groups) == 5 {
		hi, lo := groups[0].rank, groups[4].rank
		switch {
		case hi-lo == 4:
			straightHigh = hi
		case hi == Ace && groups[1].rank == Five:
			straightHigh = Five // wheel
		}
	}

	switch {
	case straightHigh != 0 && flush:
		if straightHigh == Ace {
			return makeKey(RoyalFlush, Ace)
		}
		return makeKey(StraightFlush, straightHigh)
	case groups[0].count == 4:
		return makeKey(FourOfAKind, groups[0].rank, groups[1].rank)
	case groups[0].count == 3 && groups[1].count == 2:
		return makeKey(FullHouse, groups[0].rank, groups[1].rank)
	case flush:
		return makeKey(Flush, ranksOf(groups)...)
	case straightHigh != 0:
		return makeKey(Straight, straightHigh)
	case groups[0].count == 3:
		return makeKey(ThreeOfAKind, ranksOf(groups)...)
	case groups[0].count == 2 && groups[1].count == 2:
		return makeKey(TwoPair, ranksOf(groups)...)
	case groups[0].count == 2:
		return makeKey(OnePair, ranksOf(groups)...)
	default:
		return makeKey(HighCard, ranksOf(groups)...)
	}
}

func ranksOf(groups []rankGroup) []Rank {
	ranks := make([]Rank, len(groups))
	for i, g := range groups {
		ranks[i] = g.rank
	}
	return ranks
}
