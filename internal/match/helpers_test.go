package match

import (
	"io"

	"github.com/charmbracelet/log"
)

// scriptedController cycles through a fixed list of values and counts the
// notifications it receives.
type scriptedController struct {
	name   string
	values []int
	err    error

	decisions int
	resets    int
	deaths    int
	wins      int

	// order, when set, collects the names of controllers in decision order.
	order *[]string
}

func newScripted(name string, values ...int) *scriptedController {
	return &scriptedController{name: name, values: values}
}

func (s *scriptedController) Name() string { return s.name }

func (s *scriptedController) Reset() error {
	s.resets++
	s.decisions = 0
	return nil
}

func (s *scriptedController) Decide() (int, error) {
	if s.order != nil {
		*s.order = append(*s.order, s.name)
	}
	if s.err != nil {
		return 0, s.err
	}
	v := s.values[s.decisions%len(s.values)]
	s.decisions++
	return v, nil
}

func (s *scriptedController) Die() { s.deaths++ }
func (s *scriptedController) Win() { s.wins++ }

// plainController implements only the required Controller methods.
type plainController struct {
	name  string
	value int
}

func (p plainController) Name() string         { return p.name }
func (p plainController) Reset() error         { return nil }
func (p plainController) Decide() (int, error) { return p.value, nil }

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func controllers(cs ...*scriptedController) []Controller {
	out := make([]Controller, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}

func names(ds []Description) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Name
	}
	return out
}
