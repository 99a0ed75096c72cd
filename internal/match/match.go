package match

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

var (
	// ErrNotFinished is returned when scores are requested before the match
	// has finished.
	ErrNotFinished = errors.New("attempted to score an unfinished match")

	// ErrFinished is returned when Step is called on a finished match.
	ErrFinished = errors.New("match already finished")
)

// State is one of the two scheduler states.
type State int

const (
	// Acting performs one unit of work when entered.
	Acting State = iota
	// Settling performs nothing when entered.
	Settling
)

// Next returns the state the scheduler moves to from s.
func (s State) Next() State {
	if s == Acting {
		return Settling
	}
	return Acting
}

func (s State) String() string {
	switch s {
	case Acting:
		return "acting"
	case Settling:
		return "settling"
	default:
		return "unknown"
	}
}

// Elimination records a champion leaving the roster during an episode.
type Elimination struct {
	Champion *Champion
	Episode  int
}

// Match runs one elimination match. It is not safe for concurrent use.
type Match struct {
	roster       []*Champion
	queue        []*Champion
	episode      int
	eliminations []Elimination
	finished     bool
	state        State

	// winner is the champion removed by the last-champion rule, if any.
	winner *Champion
	// lastActor is the champion that acted most recently.
	lastActor *Champion

	logger *log.Logger
}

// Option configures a Match during creation.
type Option func(*Match)

// WithLogger sets the logger used for match and champion events.
func WithLogger(logger *log.Logger) Option {
	return func(m *Match) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a match with one champion per controller. Controller order is
// the initial roster order, which decides both the acting order (reversed)
// and the order in which simultaneous deaths are recorded.
func New(controllers []Controller, opts ...Option) *Match {
	m := &Match{
		state:  Acting,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.roster = make([]*Champion, 0, len(controllers))
	for _, c := range controllers {
		champion := NewChampion(c, m.logger)
		m.roster = append(m.roster, champion)
		m.logger.Debug("Champion spawned", "champion", champion.Name())
	}

	return m
}

// Step advances the scheduler by exactly one transition.
func (m *Match) Step() error {
	if m.finished {
		return ErrFinished
	}

	m.state = m.state.Next()
	if m.state == Settling {
		return nil
	}

	if len(m.queue) == 0 {
		m.environmentStep()
		return nil
	}
	return m.championStep()
}

// championStep lets the last champion of the queue act.
func (m *Match) championStep() error {
	last := len(m.queue) - 1
	champion := m.queue[last]
	m.queue[last] = nil
	m.queue = m.queue[:last]

	m.lastActor = champion
	value, err := champion.Act()
	if err != nil {
		return fmt.Errorf("controller %s: %w", champion.Name(), err)
	}
	champion.LastValue = value
	return nil
}

// environmentStep damages the champions with the lowest action value, sweeps
// the dead and prepares the next episode.
func (m *Match) environmentStep() {
	m.lastActor = nil

	if len(m.roster) > 0 {
		lowest := m.roster[0].LastValue
		for _, c := range m.roster[1:] {
			lowest = min(lowest, c.LastValue)
		}
		for _, c := range m.roster {
			if c.LastValue == lowest {
				c.GetHit()
			}
		}
	}

	m.sweep()
	if m.finished {
		m.logger.Debug("Match finished", "episode", m.episode, "eliminations", len(m.eliminations))
		return
	}

	m.queue = append(m.queue[:0], m.roster...)
	m.episode++
	m.logger.Debug("Starting episode", "episode", m.episode)
}

// sweep removes dead champions and applies the last-champion rule.
func (m *Match) sweep() {
	alive := m.roster[:0]
	for _, c := range m.roster {
		if c.Alive() {
			alive = append(alive, c)
			continue
		}
		c.Die()
		m.eliminations = append(m.eliminations, Elimination{Champion: c, Episode: m.episode})
	}
	clear(m.roster[len(alive):])
	m.roster = alive

	if len(m.roster) == 1 {
		champion := m.roster[0]
		m.logger.Debug("Last champion standing", "champion", champion.Name())

		m.roster[0] = nil
		m.roster = m.roster[:0]
		m.winner = champion
		m.eliminations = append(m.eliminations, Elimination{Champion: champion, Episode: m.episode})

		if reactor, ok := champion.Controller().(WinReactor); ok {
			reactor.Win()
		}
	}

	if len(m.roster) == 0 {
		m.finished = true
		m.queue = nil
	}
}

// Finished reports whether the roster is empty.
func (m *Match) Finished() bool {
	return m.finished
}

// State returns the state the scheduler is currently in.
func (m *Match) State() State {
	return m.state
}

// Episode returns the current episode number.
func (m *Match) Episode() int {
	return m.episode
}

// Pending returns how many champions still owe an action this episode.
func (m *Match) Pending() int {
	return len(m.queue)
}

// LastActor returns the champion that acted in the most recent unit of work,
// or nil if that work was an environment step.
func (m *Match) LastActor() *Champion {
	return m.lastActor
}

// Winner returns the champion removed by the last-champion rule. It is nil
// while the match runs and when the final champions died together.
func (m *Match) Winner() *Champion {
	return m.winner
}

// Roster returns snapshots of the champions still alive, in roster order.
func (m *Match) Roster() []Description {
	out := make([]Description, len(m.roster))
	for i, c := range m.roster {
		out[i] = c.Describe()
	}
	return out
}

// Eliminations returns the elimination sequence so far, oldest first.
func (m *Match) Eliminations() []Elimination {
	out := make([]Elimination, len(m.eliminations))
	copy(out, m.eliminations)
	return out
}
