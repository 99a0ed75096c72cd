package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/arenaforbots/internal/config"
	"github.com/lox/arenaforbots/internal/controller"
	"github.com/lox/arenaforbots/internal/match"
	"github.com/lox/arenaforbots/internal/remote"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel string `short:"l" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
}

type CLI struct {
	Globals

	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Run         RunCmd           `cmd:"" help:"Play a tournament and print the final scores"`
	Watch       WatchCmd         `cmd:"" help:"Step through a single match in the terminal"`
	History     HistoryCmd       `cmd:"" help:"Show results recorded with run --db"`
	Bot         BotCmd           `cmd:"" help:"Serve a built-in controller over websocket"`
	Controllers ControllersCmd   `cmd:"" help:"List the available controller kinds"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("arena"),
		kong.Description("Elimination matches between pluggable controllers"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// newLogger builds a stderr logger at the configured level.
func (g *Globals) newLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	}), nil
}

// newRegistry returns the built-in kinds plus remote controllers.
func newRegistry(logger *log.Logger) (*controller.Registry, error) {
	reg := controller.NewRegistry()
	if err := remote.Register(reg, logger.WithPrefix("remote"), nil); err != nil {
		return nil, err
	}
	return reg, nil
}

// loadConfig reads the tournament file and replaces its controllers with
// overrides when any are given.
func loadConfig(path string, overrides []string, reg *controller.Registry) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if len(overrides) > 0 {
		cfg.Controllers = cfg.Controllers[:0]
		for _, s := range overrides {
			spec, err := controller.ParseSpec(s)
			if err != nil {
				return nil, err
			}
			cfg.Controllers = append(cfg.Controllers, config.ControllerConfig{
				Name:   spec.Name,
				Kind:   spec.Kind,
				Value:  spec.Value,
				Values: spec.Values,
				URL:    spec.URL,
			})
		}
	}

	if err := cfg.Validate(reg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func closeAll(ctrls []match.Controller, logger *log.Logger) {
	for _, c := range ctrls {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close controller", "controller", c.Name(), "error", err)
			}
		}
	}
}
