package controller

import "errors"

// ErrEmptySequence is returned when a sequence controller has no values.
var ErrEmptySequence = errors.New("sequence controller needs at least one value")

// Sequence cycles through a fixed list of values. Reset rewinds it to the
// first value, and it keeps count of the matches it won and lost.
type Sequence struct {
	name   string
	values []int
	next   int

	Wins   int
	Deaths int
}

// NewSequence creates a controller that decides values in order, wrapping
// around at the end. values is copied.
func NewSequence(name string, values []int) (*Sequence, error) {
	if len(values) == 0 {
		return nil, ErrEmptySequence
	}
	return &Sequence{name: name, values: append([]int(nil), values...)}, nil
}

// Name implements match.Controller.
func (s *Sequence) Name() string { return s.name }

// Reset implements match.Controller by rewinding to the first value.
func (s *Sequence) Reset() error {
	s.next = 0
	return nil
}

// Decide implements match.Controller.
func (s *Sequence) Decide() (int, error) {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v, nil
}

// Die implements match.DeathReactor.
func (s *Sequence) Die() { s.Deaths++ }

// Win implements match.WinReactor.
func (s *Sequence) Win() { s.Wins++ }
