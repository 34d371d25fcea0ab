package simulator

import (
	"fmt"
	"math"
	"slices"
)

// HandResult is one seat's outcome of a single hand
type HandResult struct {
	NetChips       int
	NetBB          float64
	WentToShowdown bool
	Won            bool
	FinalPotSize   int
}

// SeatStats accumulates results for one seat across hands
type SeatStats struct {
	PlayerID    string
	Personality string
	Hands       int
	NetChips    int
	SumBB       float64
	SumBB2      float64 // sum of squares for variance
	Values      []float64

	Wins            int
	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64
}

// Add incorporates one hand result
func (s *SeatStats) Add(r HandResult) {
	s.Hands++
	s.NetChips += r.NetChips
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB
	s.Values = append(s.Values, r.NetBB)

	if r.Won {
		s.Wins++
		if r.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if r.WentToShowdown {
		s.ShowdownBB += r.NetBB
	} else {
		s.NonShowdownBB += r.NetBB
	}
}

// Mean returns big blinds won per hand
func (s *SeatStats) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of per-hand results
func (s *SeatStats) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	// rounding can push a zero variance just below zero
	return max((s.SumBB2-float64(s.Hands)*mean*mean)/float64(s.Hands-1), 0)
}

// StdDev returns the sample standard deviation
func (s *SeatStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *SeatStats) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *SeatStats) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median per-hand result
func (s *SeatStats) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Stats summarises a simulation run
type Stats struct {
	Hands       int
	Showdowns   int
	Voided      int
	BigBlind    int
	MaxPotChips int
	Seats       []*SeatStats // seat order
}

// Seat returns the stats for a player
func (st *Stats) Seat(playerID string) *SeatStats {
	for _, s := range st.Seats {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// TotalNet sums net chips over every seat. Chips only move between seats so
// it is zero for a consistent run.
func (st *Stats) TotalNet() int {
	total := 0
	for _, s := range st.Seats {
		total += s.NetChips
	}
	return total
}

// Validate checks the run's accounting
func (st *Stats) Validate() error {
	if net := st.TotalNet(); net != 0 {
		return fmt.Errorf("chips not conserved: net %d across seats", net)
	}
	for _, s := range st.Seats {
		if math.Abs(s.SumBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
			return fmt.Errorf("seat %s: showdown split %.6f + %.6f does not match %.6f",
				s.PlayerID, s.ShowdownBB, s.NonShowdownBB, s.SumBB)
		}
		if s.Wins > s.Hands {
			return fmt.Errorf("seat %s: %d wins in %d hands", s.PlayerID, s.Wins, s.Hands)
		}
	}
	if st.Showdowns > st.Hands {
		return fmt.Errorf("%d showdowns in %d hands", st.Showdowns, st.Hands)
	}
	return nil
}
