package main

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/arenaforbots/internal/match"
	"github.com/lox/arenaforbots/internal/randutil"
	"github.com/lox/arenaforbots/internal/tui"
)

// WatchCmd opens the match viewer.
type WatchCmd struct {
	Config     string   `short:"c" default:"arena.hcl" help:"Tournament file, HCL or YAML by extension"`
	Controller []string `short:"C" sep:"none" help:"Controller as kind:name[:arg], repeatable; replaces configured controllers"`
	Seed       *int64   `help:"RNG seed (overrides config)"`
	Auto       bool     `help:"Start with autoplay on"`
	NoColor    bool     `help:"Disable colors"`
	LogFile    string   `help:"Write logs to this file while the viewer runs"`
}

func (c *WatchCmd) Run(g *Globals) error {
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger, err := g.newLogger(w)
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
	specs, err := cfg.Specs()
	if err != nil {
		return err
	}

	seed := cfg.Tournament.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	seed = randutil.SeedOrNow(seed)

	ctrls, err := reg.BuildAll(specs, func(i int) *rand.Rand { return randutil.Derive(seed, i) })
	if err != nil {
		return err
	}
	defer closeAll(ctrls, logger)
	for _, ctrl := range ctrls {
		if err := ctrl.Reset(); err != nil {
			return fmt.Errorf("reset %s: %w", ctrl.Name(), err)
		}
	}

	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger.Info("Watching match", "seed", seed, "controllers", len(ctrls))
	model := tui.New(match.New(ctrls, match.WithLogger(logger.WithPrefix("match"))), logger)
	if c.Auto {
		model.StartAutoplay()
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return model.Err()
}
