package statistics

import (
	"fmt"
	"math"
	"slices"
)

// Entry is one controller's outcome in one match.
type Entry struct {
	Score int  // Points awarded by elimination order
	Place int  // 1 for the last champion eliminated, N for the first
	Won   bool // Eliminated by the last-champion rule
}

// ScoreStats tracks a controller's results across many matches.
type ScoreStats struct {
	Matches int
	Sum     float64
	SumSq   float64   // Sum of squares for variance calculation
	Values  []float64 // All scores, for median/percentile calculation

	Wins   int
	Places map[int]int // Finishing place -> count
	Best   int         // Highest single-match score
}

// Add incorporates one match result.
func (s *ScoreStats) Add(e Entry) {
	v := float64(e.Score)
	s.Matches++
	s.Sum += v
	s.SumSq += v * v
	s.Values = append(s.Values, v)

	if e.Won {
		s.Wins++
	}
	if s.Places == nil {
		s.Places = make(map[int]int)
	}
	s.Places[e.Place]++
	s.Best = max(s.Best, e.Score)
}

// Mean returns the mean score per match.
func (s *ScoreStats) Mean() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.Sum / float64(s.Matches)
}

// Variance returns the sample variance of the scores.
func (s *ScoreStats) Variance() float64 {
	if s.Matches < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSq - float64(s.Matches)*mean*mean) / float64(s.Matches-1)
}

// StdDev returns the sample standard deviation.
func (s *ScoreStats) StdDev() float64 {
	return math.Sqrt(math.Max(s.Variance(), 0))
}

// StdError returns the standard error of the mean.
func (s *ScoreStats) StdError() float64 {
	if s.Matches == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Matches))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean.
func (s *ScoreStats) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// WinRate returns the fraction of matches won.
func (s *ScoreStats) WinRate() float64 {
	if s.Matches == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Matches)
}

// Median returns the median score.
func (s *ScoreStats) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the score at percentile p (0.0 to 1.0), interpolating
// between neighbours.
func (s *ScoreStats) Percentile(p float64) float64 {
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

// Validate checks the internal bookkeeping is consistent.
func (s *ScoreStats) Validate() error {
	if s.Matches <= 0 {
		return fmt.Errorf("invalid match count: %d", s.Matches)
	}
	if len(s.Values) != s.Matches {
		return fmt.Errorf("values length (%d) does not match match count (%d)", len(s.Values), s.Matches)
	}
	if s.Wins > s.Matches {
		return fmt.Errorf("wins (%d) exceed matches (%d)", s.Wins, s.Matches)
	}

	placed := 0
	for place, n := range s.Places {
		if place < 1 {
			return fmt.Errorf("invalid place %d", place)
		}
		placed += n
	}
	if placed != s.Matches {
		return fmt.Errorf("place total (%d) does not match match count (%d)", placed, s.Matches)
	}
	return nil
}
