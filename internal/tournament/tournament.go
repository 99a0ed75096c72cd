// Package tournament plays many elimination matches between the same set of
// controllers and aggregates their scores.
package tournament

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/arenaforbots/internal/controller"
	"github.com/lox/arenaforbots/internal/match"
	"github.com/lox/arenaforbots/internal/matchid"
	"github.com/lox/arenaforbots/internal/randutil"
	"github.com/lox/arenaforbots/internal/statistics"
)

// Config holds configuration for running a tournament.
type Config struct {
	Runs        int
	Seed        int64 // 0 picks a time based seed
	Workers     int
	Controllers []controller.Spec
	Registry    *controller.Registry
	Logger      *log.Logger
	Clock       quartz.Clock

	// OnMatch, if set, is called once per finished match. Calls are
	// serialised but arrive in completion order, not match order.
	OnMatch func(MatchResult) error
}

// MatchResult is the outcome of one match.
type MatchResult struct {
	ID        string           `json:"id"`
	Index     int              `json:"index"`
	Seed      int64            `json:"seed"`
	Episodes  int              `json:"episodes"`
	Winner    string           `json:"winner,omitempty"`
	Standings []match.Standing `json:"standings"`
	Scores    map[string]int   `json:"scores"`
	Duration  time.Duration    `json:"duration"`
}

// Results aggregates a whole tournament.
type Results struct {
	Seed    int64                             `json:"seed"`
	Matches []MatchResult                     `json:"matches"`
	Totals  map[string]int                    `json:"totals"`
	Stats   map[string]*statistics.ScoreStats `json:"-"`
	Elapsed time.Duration                     `json:"elapsed"`
}

// Ranked is one line of the final score listing.
type Ranked struct {
	Name  string
	Total int
}

// Ranking returns controllers ordered by total score, highest first, ties
// broken by name.
func (r *Results) Ranking() []Ranked {
	out := make([]Ranked, 0, len(r.Totals))
	for name, total := range r.Totals {
		out = append(out, Ranked{Name: name, Total: total})
	}
	slices.SortFunc(out, func(a, b Ranked) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Runner plays tournaments.
type Runner struct {
	config Config
	seed   int64
	logger *log.Logger
	clock  quartz.Clock

	mu  sync.Mutex // serialises OnMatch
	ids *matchid.Generator
}

// New creates a runner, filling in defaults for unset fields.
func New(config Config) *Runner {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Registry == nil {
		config.Registry = controller.NewRegistry()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}

	seed := randutil.SeedOrNow(config.Seed)
	return &Runner{
		config: config,
		seed:   seed,
		logger: config.Logger.WithPrefix("tournament"),
		clock:  config.Clock,
		ids:    matchid.NewGenerator(randutil.New(seed), config.Clock),
	}
}

// Seed returns the effective base seed.
func (r *Runner) Seed() int64 {
	return r.seed
}

// Run plays every match and aggregates the scores. The first failing match
// cancels the rest.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	if r.config.Runs < 1 {
		return nil, fmt.Errorf("invalid runs: %d", r.config.Runs)
	}
	if len(r.config.Controllers) == 0 {
		return nil, errors.New("no controllers configured")
	}

	start := r.clock.Now()
	r.logger.Info("Starting tournament",
		"runs", r.config.Runs,
		"workers", r.config.Workers,
		"controllers", len(r.config.Controllers),
		"seed", r.seed)

	// IDs are drawn in match order so a seed always names match i the same.
	ids := make([]string, r.config.Runs)
	for i := range ids {
		ids[i] = r.ids.Generate()
	}

	matches := make([]MatchResult, r.config.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)
	for i := range r.config.Runs {
		g.Go(func() error {
			result, err := r.playMatch(gctx, i, ids[i])
			if err != nil {
				return err
			}
			matches[i] = result
			return r.report(result)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := aggregate(matches)
	results.Seed = r.seed
	results.Elapsed = r.clock.Since(start)

	r.logger.Info("Tournament finished", "matches", len(matches), "elapsed", results.Elapsed)
	return results, nil
}

func (r *Runner) report(result MatchResult) error {
	if r.config.OnMatch == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.config.OnMatch(result)
}

// playMatch builds fresh controllers for match i, resets them and plays the
// match to completion.
func (r *Runner) playMatch(ctx context.Context, i int, id string) (MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return MatchResult{}, err
	}

	seed := r.seed + int64(i)
	logger := r.logger.With("match_id", id, "match", i+1)

	ctrls, err := r.config.Registry.BuildAll(r.config.Controllers, func(j int) *rand.Rand {
		return randutil.Derive(seed, j)
	})
	if err != nil {
		return MatchResult{}, fmt.Errorf("match %d: %w", i+1, err)
	}
	defer closeAll(ctrls, logger)

	for _, c := range ctrls {
		if err := c.Reset(); err != nil {
			return MatchResult{}, fmt.Errorf("match %d: reset %s: %w", i+1, c.Name(), err)
		}
	}

	logger.Info("Starting match", "seed", seed)
	started := r.clock.Now()

	m := match.New(ctrls, match.WithLogger(logger.WithPrefix("match")))
	if err := match.Play(ctx, m); err != nil {
		logger.Error("Match failed", "error", err, "episode", m.Episode())
		return MatchResult{}, fmt.Errorf("match %d (%s): %w", i+1, id, err)
	}

	standings, err := m.Standings()
	if err != nil {
		return MatchResult{}, err
	}
	scores, err := m.Score()
	if err != nil {
		return MatchResult{}, err
	}

	for _, name := range slices.Sorted(maps.Keys(scores)) {
		logger.Info("Controller scored", "controller", name, "score", scores[name])
	}

	result := MatchResult{
		ID:        id,
		Index:     i,
		Seed:      seed,
		Episodes:  m.Episode(),
		Standings: standings,
		Scores:    scores,
		Duration:  r.clock.Since(started),
	}
	if w := m.Winner(); w != nil {
		result.Winner = w.Name()
	}
	return result, nil
}

func closeAll(ctrls []match.Controller, logger *log.Logger) {
	for _, c := range ctrls {
		closer, ok := c.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			logger.Warn("Failed to close controller", "controller", c.Name(), "error", err)
		}
	}
}

// aggregate folds match results, in match order, into totals and
// per-controller statistics.
func aggregate(matches []MatchResult) *Results {
	results := &Results{
		Matches: matches,
		Totals:  make(map[string]int),
		Stats:   make(map[string]*statistics.ScoreStats),
	}

	for _, m := range matches {
		n := len(m.Standings)
		for pos, s := range m.Standings {
			results.Totals[s.Name] += s.Score

			stats, ok := results.Stats[s.Name]
			if !ok {
				stats = &statistics.ScoreStats{}
				results.Stats[s.Name] = stats
			}
			stats.Add(statistics.Entry{
				Score: s.Score,
				Place: n - pos,
				Won:   m.Winner != "" && pos == n-1,
			})
		}
	}
	return results
}
