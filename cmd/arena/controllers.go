package main

import (
	"fmt"
	"io"
	"os"
)

// ControllersCmd lists registered controller kinds.
type ControllersCmd struct {
	out io.Writer
}

func (c *ControllersCmd) Run(g *Globals) error {
	logger, err := g.newLogger(nil)
	if err != nil {
		return err
	}
	reg, err := newRegistry(logger)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	for _, kind := range reg.Kinds() {
		fmt.Fprintln(out, kind)
	}
	return nil
}
