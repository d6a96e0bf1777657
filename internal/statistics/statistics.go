// Package statistics accumulates per-hand results in big blinds and reports
// win rates with their spread.
package statistics

import (
	"fmt"
	"math"
	"slices"

	"github.com/lox/holdem-engine/internal/game"
)

// BigPotBB is the size, in big blinds, from which a pot counts as big
const BigPotBB = 50

// HandResult is one seat's outcome of a single hand
type HandResult struct {
	NetBB    float64    // net big blinds won or lost
	Seat     int        // seat index, 0-based
	Showdown bool       // the hand reached showdown
	PotBB    float64    // final pot in big blinds
	Street   game.Phase // furthest street dealt
}

// SeatStats tracks results for one seat
type SeatStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Statistics accumulates hand results
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // sum of squares for the variance
	Values []float64 // every result, for the median and percentiles

	ShowdownWins    int     // hands won at showdown
	NonShowdownWins int     // hands won without showdown
	ShowdownBB      float64 // net from hands reaching showdown, wins and losses
	NonShowdownBB   float64 // net from hands ending earlier, wins and losses
	AllBB           float64

	Seats   [game.MaxPlayers]SeatStats
	Streets map[game.Phase]int // hands by furthest street

	MaxPotBB  float64
	BigPots   int
	BigPotsBB float64 // net from big pots
}

// Mean returns the average result in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of the results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return math.Max(0, (s.SumBB2-float64(s.Hands)*mean*mean)/float64(s.Hands-1))
}

// StdDev returns the sample standard deviation
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a hand result
func (s *Statistics) Add(r HandResult) {
	s.Hands++
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB
	s.Values = append(s.Values, r.NetBB)
	s.AllBB += r.NetBB

	if r.Showdown {
		s.ShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.ShowdownWins++
		}
	} else {
		s.NonShowdownBB += r.NetBB
		if r.NetBB > 0 {
			s.NonShowdownWins++
		}
	}

	if r.Seat >= 0 && r.Seat < len(s.Seats) {
		s.Seats[r.Seat].Hands++
		s.Seats[r.Seat].SumBB += r.NetBB
		s.Seats[r.Seat].SumBB2 += r.NetBB * r.NetBB
	}

	if s.Streets == nil {
		s.Streets = make(map[game.Phase]int)
	}
	s.Streets[r.Street]++

	s.MaxPotBB = math.Max(s.MaxPotBB, r.PotBB)
	if r.PotBB >= BigPotBB {
		s.BigPots++
		s.BigPotsBB += r.NetBB
	}
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB
	for i := range s.Seats {
		s.Seats[i].Hands += other.Seats[i].Hands
		s.Seats[i].SumBB += other.Seats[i].SumBB
		s.Seats[i].SumBB2 += other.Seats[i].SumBB2
	}
	for street, n := range other.Streets {
		if s.Streets == nil {
			s.Streets = make(map[game.Phase]int)
		}
		s.Streets[street] += n
	}
	s.MaxPotBB = math.Max(s.MaxPotBB, other.MaxPotBB)
	s.BigPots += other.BigPots
	s.BigPotsBB += other.BigPotsBB
}

// Median returns the median result
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the interpolated result at p, between 0 and 1
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := slices.Clone(s.Values)
	slices.Sort(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SeatMean returns the mean result from one seat
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Hands == 0 {
		return 0
	}
	return s.Seats[seat].SumBB / float64(s.Seats[seat].Hands)
}

// IsLedgerBalanced checks that showdown and non-showdown results add up
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate checks the accumulated data for internal consistency
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	seatHands := 0
	for _, seat := range s.Seats {
		seatHands += seat.Hands
	}
	if seatHands != s.Hands {
		return fmt.Errorf("seat hands total (%d) does not match total hands (%d)", seatHands, s.Hands)
	}
	return nil
}
