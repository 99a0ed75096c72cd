package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lox/arenaforbots/internal/match"
	"github.com/lox/arenaforbots/internal/tournament"
)

func result(id string, standings ...match.Standing) tournament.MatchResult {
	r := tournament.MatchResult{
		ID:        id,
		Seed:      42,
		Episodes:  8,
		Standings: standings,
		Duration:  3 * time.Millisecond,
	}
	if n := len(standings); n > 0 {
		r.Winner = standings[n-1].Name
	}
	return r
}

func TestSaveAndTotals(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "arena.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.SaveMatch(ctx, result("m1",
		match.Standing{Name: "a", Episode: 4, Score: 1},
		match.Standing{Name: "b", Episode: 8, Score: 2},
	)))
	require.NoError(t, s.SaveMatch(ctx, result("m2",
		match.Standing{Name: "b", Episode: 4, Score: 1},
		match.Standing{Name: "a", Episode: 12, Score: 2},
	)))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 3, "b": 3}, totals)

	n, err := s.Matches(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	m, err := s.Match(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, "a", m.Winner)
	require.Len(t, m.Standings, 2)
	assert.Equal(t, "b", m.Standings[0].Controller)
	assert.Equal(t, 12, m.Standings[1].Episode)
}

func TestRecent(t *testing.T) {
	ctx := context.Background()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, s.SaveMatch(ctx, result(id, match.Standing{Name: "a", Score: 1})))
	}

	recent, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Empty(t, recent[0].Standings)

	all, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTotalsPersistAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "arena.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveMatch(ctx, result("m1", match.Standing{Name: "a", Score: 1}, match.Standing{Name: "b", Score: 2})))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, totals)
}

func TestDuplicateMatch(t *testing.T) {
	ctx := context.Background()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	r := result("dup", match.Standing{Name: "a", Score: 1})
	require.NoError(t, s.SaveMatch(ctx, r))
	assert.Error(t, s.SaveMatch(ctx, r))

	totals, err := s.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, totals, "failed save is rolled back")
}

func TestMissingMatch(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Match(context.Background(), "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	totals, err := s.Totals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, totals)
}
