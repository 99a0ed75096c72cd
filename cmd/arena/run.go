package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/arenaforbots/internal/fileutil"
	"github.com/lox/arenaforbots/internal/store"
	"github.com/lox/arenaforbots/internal/tournament"
)

// RunCmd plays a batch of matches.
type RunCmd struct {
	Config       string   `short:"c" default:"arena.hcl" help:"Tournament file, HCL or YAML by extension"`
	Runs         int      `short:"n" help:"Number of matches (overrides config)"`
	Seed         *int64   `help:"Base RNG seed (overrides config)"`
	Workers      int      `short:"w" help:"Matches played concurrently (overrides config)"`
	Controller   []string `short:"C" sep:"none" help:"Controller as kind:name[:arg], repeatable; replaces configured controllers"`
	DB           string   `name:"db" help:"SQLite database that accumulates results (overrides config)"`
	WriteResults string   `help:"Write JSON results to this file"`
	NoProgress   bool     `help:"Do not draw the progress bar"`

	out         io.Writer
	progressOut io.Writer
}

func (c *RunCmd) Run(g *Globals) error {
	logger, err := g.newLogger(nil)
	if err != nil {
		return err
	}
	reg, err := newRegistry(logger)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.Config, c.Controller, reg)
	if err != nil {
		return err
	}
	if c.Runs > 0 {
		cfg.Tournament.Runs = c.Runs
	}
	if c.Workers > 0 {
		cfg.Tournament.Workers = c.Workers
	}
	if c.Seed != nil {
		cfg.Tournament.Seed = *c.Seed
	}
	if c.DB != "" {
		cfg.Tournament.Database = c.DB
	}
	specs, err := cfg.Specs()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if cfg.Tournament.Database != "" {
		st, err = store.Open(cfg.Tournament.Database)
		if err != nil {
			return err
		}
		defer st.Close()
		logger.Info("Recording results", "database", cfg.Tournament.Database)
	}

	var bar *progressBar
	if !c.NoProgress {
		w := c.progressOut
		if w == nil {
			w = os.Stderr
		}
		bar = newProgressBar(w, cfg.Tournament.Runs)
	}

	runner := tournament.New(tournament.Config{
		Runs:        cfg.Tournament.Runs,
		Seed:        cfg.Tournament.Seed,
		Workers:     cfg.Tournament.Workers,
		Controllers: specs,
		Registry:    reg,
		Logger:      logger,
		OnMatch: func(r tournament.MatchResult) error {
			if bar != nil {
				bar.Advance()
			}
			if st == nil {
				return nil
			}
			return st.SaveMatch(ctx, r)
		},
	})

	results, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Final scores after %d matches (seed %d)\n", len(results.Matches), results.Seed)
	fmt.Fprintln(out, rankingTable(results))

	if st != nil {
		totals, err := st.Totals(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "All-time totals")
		fmt.Fprintln(out, totalsTable(totals))
	}

	if c.WriteResults != "" {
		if err := fileutil.WriteJSONAtomic(c.WriteResults, results); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		logger.Info("Wrote results", "file", c.WriteResults)
	}
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func rankingTable(results *tournament.Results) string {
	t := newTable("#", "Controller", "Score", "Mean", "StdDev", "95% CI", "Median", "Best", "Podium", "Wins")
	for i, r := range results.Ranking() {
		row := make([]string, 10)
		row[0], row[1], row[2] = strconv.Itoa(i+1), r.Name, strconv.Itoa(r.Total)
		if stats, ok := results.Stats[r.Name]; ok {
			lo, hi := stats.ConfidenceInterval95()
			row[3] = fmt.Sprintf("%.2f", stats.Mean())
			row[4] = fmt.Sprintf("%.2f", stats.StdDev())
			row[5] = fmt.Sprintf("[%.2f, %.2f]", lo, hi)
			row[6] = fmt.Sprintf("%.1f", stats.Median())
			row[7] = strconv.Itoa(stats.Best)
			row[8] = strconv.Itoa(stats.Places[1] + stats.Places[2] + stats.Places[3])
			row[9] = fmt.Sprintf("%d (%.0f%%)", stats.Wins, stats.WinRate()*100)
		}
		t.Row(row...)
	}
	return t.String()
}

func totalsTable(totals map[string]int) string {
	ranked := (&tournament.Results{Totals: totals}).Ranking()
	t := newTable("#", "Controller", "Score")
	for i, r := range ranked {
		t.Row(strconv.Itoa(i+1), r.Name, strconv.Itoa(r.Total))
	}
	return t.String()
}
