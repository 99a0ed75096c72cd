package statistics

import (
	"math"
	"testing"
)

func TestScoreStats_Empty(t *testing.T) {
	stats := &ScoreStats{}

	if stats.Mean() != 0 {
		t.Errorf("Expected mean of 0 for empty stats, got %f", stats.Mean())
	}
	if stats.Variance() != 0 {
		t.Errorf("Expected variance of 0 for empty stats, got %f", stats.Variance())
	}
	if stats.StdError() != 0 {
		t.Errorf("Expected stderr of 0 for empty stats, got %f", stats.StdError())
	}
	if stats.Median() != 0 {
		t.Errorf("Expected median of 0 for empty stats, got %f", stats.Median())
	}
	if stats.WinRate() != 0 {
		t.Errorf("Expected win rate of 0 for empty stats, got %f", stats.WinRate())
	}
	if err := stats.Validate(); err == nil {
		t.Error("Expected validation error for empty stats")
	}
}

func TestScoreStats_Add(t *testing.T) {
	stats := &ScoreStats{}
	stats.Add(Entry{Score: 1, Place: 3})
	stats.Add(Entry{Score: 3, Place: 1, Won: true})
	stats.Add(Entry{Score: 2, Place: 2})
	stats.Add(Entry{Score: 3, Place: 1, Won: true})

	if stats.Matches != 4 {
		t.Fatalf("Expected 4 matches, got %d", stats.Matches)
	}
	if stats.Mean() != 2.25 {
		t.Errorf("Expected mean 2.25, got %f", stats.Mean())
	}
	if stats.Wins != 2 || stats.WinRate() != 0.5 {
		t.Errorf("Expected 2 wins (0.5), got %d (%f)", stats.Wins, stats.WinRate())
	}
	if stats.Best != 3 {
		t.Errorf("Expected best score 3, got %d", stats.Best)
	}
	if stats.Places[1] != 2 || stats.Places[2] != 1 || stats.Places[3] != 1 {
		t.Errorf("Unexpected places: %v", stats.Places)
	}
	if stats.Median() != 2.5 {
		t.Errorf("Expected median 2.5, got %f", stats.Median())
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}
}

func TestScoreStats_Variance(t *testing.T) {
	stats := &ScoreStats{}
	for _, v := range []int{2, 4, 4, 4, 5, 5, 7, 9} {
		stats.Add(Entry{Score: v, Place: 1})
	}

	// Sample variance of the classic example set is 32/7.
	if math.Abs(stats.Variance()-32.0/7.0) > 1e-9 {
		t.Errorf("Expected variance %f, got %f", 32.0/7.0, stats.Variance())
	}
	if math.Abs(stats.StdDev()-math.Sqrt(32.0/7.0)) > 1e-9 {
		t.Errorf("Unexpected stddev %f", stats.StdDev())
	}

	low, high := stats.ConfidenceInterval95()
	if low >= stats.Mean() || high <= stats.Mean() {
		t.Errorf("Confidence interval (%f, %f) does not contain mean %f", low, high, stats.Mean())
	}
}

func TestScoreStats_Percentile(t *testing.T) {
	stats := &ScoreStats{}
	for _, v := range []int{1, 2, 3, 5, 8} {
		stats.Add(Entry{Score: v, Place: 1})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.875, 6.5},
		{1, 8},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%v) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestScoreStats_ValidateDetectsCorruption(t *testing.T) {
	stats := &ScoreStats{}
	stats.Add(Entry{Score: 1, Place: 2})

	stats.Values = append(stats.Values, 4)
	if err := stats.Validate(); err == nil {
		t.Error("Expected error for mismatched values")
	}

	stats.Values = stats.Values[:1]
	stats.Wins = 2
	if err := stats.Validate(); err == nil {
		t.Error("Expected error for wins exceeding matches")
	}

	stats.Wins = 0
	stats.Places[2] = 5
	if err := stats.Validate(); err == nil {
		t.Error("Expected error for place total mismatch")
	}
}
