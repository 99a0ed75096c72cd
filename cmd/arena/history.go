package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lox/arenaforbots/internal/matchid"
	"github.com/lox/arenaforbots/internal/store"
)

// HistoryCmd reads results recorded by `run --db`.
type HistoryCmd struct {
	DB    string `name:"db" required:"" help:"SQLite database written by run --db"`
	ID    string `arg:"" optional:"" help:"Match ID to show in detail"`
	Limit int    `default:"10" help:"Number of recent matches to list"`

	out io.Writer
}

func (c *HistoryCmd) Run(g *Globals) error {
	if c.ID != "" {
		if err := matchid.Validate(c.ID); err != nil {
			return err
		}
	}
	if _, err := os.Stat(c.DB); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	ctx := context.Background()

	if c.ID != "" {
		return showMatch(ctx, out, st, c.ID)
	}

	n, err := st.Matches(ctx)
	if err != nil {
		return err
	}
	totals, err := st.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d matches recorded\n", n)
	fmt.Fprintln(out, totalsTable(totals))

	recent, err := st.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(recent) == 0 {
		return nil
	}
	t := newTable("Match", "Seed", "Episodes", "Winner")
	for _, m := range recent {
		winner := m.Winner
		if winner == "" {
			winner = "-"
		}
		t.Row(m.ID, strconv.FormatInt(m.Seed, 10), strconv.Itoa(m.Episodes), winner)
	}
	fmt.Fprintln(out, "Recent matches")
	fmt.Fprintln(out, t.String())
	return nil
}

func showMatch(ctx context.Context, out io.Writer, st *store.Store, id string) error {
	m, err := st.Match(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Match %s (seed %d, %d episodes, %s)\n", m.ID, m.Seed, m.Episodes, m.Duration)
	t := newTable("Eliminated", "Controller", "Episode", "Score")
	for _, s := range m.Standings {
		t.Row(strconv.Itoa(s.Position+1), s.Controller, strconv.Itoa(s.Episode), strconv.Itoa(s.Score))
	}
	fmt.Fprintln(out, t.String())
	if m.Winner != "" {
		fmt.Fprintf(out, "Winner: %s\n", m.Winner)
	} else {
		fmt.Fprintln(out, "No winner: the last champions fell together")
	}
	return nil
}
