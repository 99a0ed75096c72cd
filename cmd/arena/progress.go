package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// progressBar redraws a single status line as matches finish.
type progressBar struct {
	out   io.Writer
	total int
	done  int
	bar   progress.Model
}

func newProgressBar(out io.Writer, total int) *progressBar {
	return &progressBar{
		out:   out,
		total: total,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Advance records one finished match. It is called from OnMatch, which the
// runner serialises.
func (p *progressBar) Advance() {
	p.done++
	fmt.Fprintf(p.out, "\rPlaying matches %s %d/%d", p.bar.ViewAs(float64(p.done)/float64(p.total)), p.done, p.total)
	if p.done == p.total {
		fmt.Fprintln(p.out)
	}
}
