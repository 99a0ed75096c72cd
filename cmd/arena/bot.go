package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/lox/arenaforbots/internal/controller"
	"github.com/lox/arenaforbots/internal/match"
	"github.com/lox/arenaforbots/internal/randutil"
	"github.com/lox/arenaforbots/internal/remote"
)

// BotCmd serves a built-in controller so a remote arena can play it.
type BotCmd struct {
	Kind   string `default:"random" enum:"random,constant,sequence" help:"Controller kind (random, constant, sequence)"`
	Name   string `default:"Bot" help:"Controller name"`
	Value  int    `help:"Value for constant controllers"`
	Values []int  `help:"Values for sequence controllers"`
	Addr   string `default:":9000" help:"Address to listen on"`
	Seed   int64  `help:"RNG seed for random controllers (0 for random)"`
}

func (c *BotCmd) spec() controller.Spec {
	spec := controller.Spec{Name: c.Name, Kind: c.Kind, Values: c.Values}
	if c.Kind == controller.KindConstant {
		v := c.Value
		spec.Value = &v
	}
	return spec
}

func (c *BotCmd) Run(g *Globals) error {
	logger, err := g.newLogger(nil)
	if err != nil {
		return err
	}

	reg := controller.NewRegistry()
	spec := c.spec()
	seed := randutil.SeedOrNow(c.Seed)

	// Each connection gets its own controller and random stream.
	var conns atomic.Int64
	factory := func() (match.Controller, error) {
		n := conns.Add(1)
		return reg.Build(spec, randutil.Derive(seed, int(n)))
	}
	if _, err := factory(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Serving controller", "kind", spec.Kind, "name", spec.Name, "addr", c.Addr, "seed", seed)
	err = remote.ListenAndServe(ctx, c.Addr, factory, logger.WithPrefix("bot"))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
