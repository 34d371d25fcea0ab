package simulator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SeatResult is the exported summary of one seat
type SeatResult struct {
	PlayerID     string  `json:"player_id"`
	Personality  string  `json:"personality"`
	Hands        int     `json:"hands"`
	NetChips     int     `json:"net_chips"`
	BBPerHand    float64 `json:"bb_per_hand"`
	StdDev       float64 `json:"std_dev"`
	CI95Low      float64 `json:"ci95_low"`
	CI95High     float64 `json:"ci95_high"`
	Median       float64 `json:"median"`
	Wins         int     `json:"wins"`
	ShowdownWins int     `json:"showdown_wins"`
}

// Results is the JSON document written by WriteResults
type Results struct {
	Seed      int64        `json:"seed"`
	Hands     int          `json:"hands"`
	Showdowns int          `json:"showdowns"`
	Voided    int          `json:"voided"`
	BigBlind  int          `json:"big_blind"`
	MaxPot    int          `json:"max_pot"`
	Seats     []SeatResult `json:"seats"`
}

// Results summarises the run for export
func (st *Stats) Results(seed int64) Results {
	r := Results{
		Seed:      seed,
		Hands:     st.Hands,
		Showdowns: st.Showdowns,
		Voided:    st.Voided,
		BigBlind:  st.BigBlind,
		MaxPot:    st.MaxPotChips,
		Seats:     make([]SeatResult, 0, len(st.Seats)),
	}
	for _, s := range st.Seats {
		lo, hi := s.ConfidenceInterval95()
		r.Seats = append(r.Seats, SeatResult{
			PlayerID:     s.PlayerID,
			Personality:  s.Personality,
			Hands:        s.Hands,
			NetChips:     s.NetChips,
			BBPerHand:    s.Mean(),
			StdDev:       s.StdDev(),
			CI95Low:      lo,
			CI95High:     hi,
			Median:       s.Median(),
			Wins:         s.Wins,
			ShowdownWins: s.ShowdownWins,
		})
	}
	return r
}

// WriteResults writes the run summary as JSON. Readers see either the old
// file or the complete new one, never a partial write.
func WriteResults(path string, seed int64, st *Stats) error {
	data, err := json.MarshalIndent(st.Results(seed), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'), 0o644)
}

// writeFileAtomic writes to a temp file in the same directory, then renames
// it over path.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
