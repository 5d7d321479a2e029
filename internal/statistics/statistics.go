package statistics

import (
	"fmt"
	"math"
	"sort"
)

// HandResult is one resolved heads-up hand from a single seat's point of view.
type HandResult struct {
	Reward   float64 // chips won (positive) or lost (negative)
	Button   bool    // seat posted the small blind and acted first preflop
	Showdown bool    // hand reached showdown
	Pot      int     // final pot in chips
	Street   int     // furthest street reached
}

// SeatStats accumulates results for one seat assignment.
type SeatStats struct {
	Hands int     `json:"hands"`
	Sum   float64 `json:"sum"`
}

// Mean reward per hand for the seat.
func (p SeatStats) Mean() float64 {
	if p.Hands == 0 {
		return 0
	}
	return p.Sum / float64(p.Hands)
}

// Statistics tracks the results of a match for one agent.
type Statistics struct {
	Hands  int
	Wins   int
	Losses int
	Sum    float64
	SumSq  float64
	Values []float64

	ShowdownHands  int
	ShowdownReward float64
	FoldReward     float64 // reward from hands that ended by a fold, won or lost

	Button SeatStats
	Blind  SeatStats

	MaxPot int
}

// Add incorporates a new hand result into the statistics
func (s *Statistics) Add(result HandResult) {
	r := result.Reward
	s.Hands++
	s.Sum += r
	s.SumSq += r * r
	s.Values = append(s.Values, r)

	switch {
	case r > 0:
		s.Wins++
	case r < 0:
		s.Losses++
	}

	if result.Showdown {
		s.ShowdownHands++
		s.ShowdownReward += r
	} else {
		s.FoldReward += r
	}

	seat := &s.Blind
	if result.Button {
		seat = &s.Button
	}
	seat.Hands++
	seat.Sum += r

	if result.Pot > s.MaxPot {
		s.MaxPot = result.Pot
	}
}

// Mean returns the average reward per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.Sum / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
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

// WinRate is the share of hands with a positive reward.
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Hands)
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Validate checks that the accumulated buckets agree with each other.
func (s *Statistics) Validate() error {
	if math.Abs(s.Sum-s.ShowdownReward-s.FoldReward) > 1e-6 {
		return fmt.Errorf("ledger mismatch: sum=%.6f showdown=%.6f fold=%.6f",
			s.Sum, s.ShowdownReward, s.FoldReward)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values length (%d) does not match hands count (%d)", len(s.Values), s.Hands)
	}
	if s.Wins+s.Losses > s.Hands {
		return fmt.Errorf("wins+losses (%d) exceeds hands (%d)", s.Wins+s.Losses, s.Hands)
	}
	if s.Button.Hands+s.Blind.Hands != s.Hands {
		return fmt.Errorf("seat hands (%d) do not match hands (%d)", s.Button.Hands+s.Blind.Hands, s.Hands)
	}
	return nil
}

// Summary is the serialisable view of a Statistics value.
type Summary struct {
	Hands    int       `json:"hands"`
	Wins     int       `json:"wins"`
	Losses   int       `json:"losses"`
	Total    float64   `json:"total_reward"`
	Mean     float64   `json:"mean_reward"`
	StdDev   float64   `json:"std_dev"`
	CI95     []float64 `json:"ci95"`
	WinRate  float64   `json:"win_rate"`
	Showdown int       `json:"showdown_hands"`
	Button   SeatStats `json:"button"`
	Blind    SeatStats `json:"blind"`
	MaxPot   int       `json:"max_pot"`
}

// Summary returns the serialisable view.
func (s *Statistics) Summary() Summary {
	lo, hi := s.ConfidenceInterval95()
	return Summary{
		Hands:    s.Hands,
		Wins:     s.Wins,
		Losses:   s.Losses,
		Total:    s.Sum,
		Mean:     s.Mean(),
		StdDev:   s.StdDev(),
		CI95:     []float64{lo, hi},
		WinRate:  s.WinRate(),
		Showdown: s.ShowdownHands,
		Button:   s.Button,
		Blind:    s.Blind,
		MaxPot:   s.MaxPot,
	}
}
