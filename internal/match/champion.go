package match

import (
	"io"

	"github.com/charmbracelet/log"
)

const (
	// StartingHealth is the health every champion spawns with.
	StartingHealth = 5

	// InitialLastValue is the action value a champion carries before it has
	// acted. It is larger than anything a controller is expected to return.
	InitialLastValue = 10000

	// DeadActionValue is returned when a dead champion is asked to act.
	DeadActionValue = -100

	// NeutralActionValue is decided on behalf of a champion with no controller.
	NeutralActionValue = 0
)

// Champion is the per-match entity wrapping one controller.
type Champion struct {
	Health    int
	LastValue int

	controller Controller
	logger     *log.Logger
}

// Description is a read-only snapshot of a champion.
type Description struct {
	Name      string
	Health    int
	LastValue int
}

// NewChampion creates a champion at full health driven by controller.
func NewChampion(controller Controller, logger *log.Logger) *Champion {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Champion{
		Health:     StartingHealth,
		LastValue:  InitialLastValue,
		controller: controller,
		logger:     logger,
	}
}

// Controller returns the controller driving this champion, or nil.
func (c *Champion) Controller() Controller {
	return c.controller
}

// Name returns the controller name, or an empty string when there is no
// controller.
func (c *Champion) Name() string {
	if c.controller == nil {
		return ""
	}
	return c.controller.Name()
}

// Alive reports whether the champion still has health left.
func (c *Champion) Alive() bool {
	return c.Health > 0
}

// Act asks the controller for an action value and records it. A dead
// champion returns DeadActionValue without consulting its controller.
func (c *Champion) Act() (int, error) {
	if !c.Alive() {
		return DeadActionValue, nil
	}

	value, err := c.pickAction()
	if err != nil {
		return 0, err
	}
	c.LastValue = value

	c.logger.Debug("Champion picked action", "champion", c.Name(), "value", value)
	return value, nil
}

func (c *Champion) pickAction() (int, error) {
	if c.controller == nil {
		return NeutralActionValue, nil
	}
	return c.controller.Decide()
}

// GetHit takes one point of health. Health may drop below zero before the
// champion is swept from the roster.
func (c *Champion) GetHit() {
	c.Health--
}

// Die notifies the controller that its champion was removed. It must be
// called at most once per champion.
func (c *Champion) Die() {
	c.logger.Debug("Champion died", "champion", c.Name())

	if reactor, ok := c.controller.(DeathReactor); ok {
		reactor.Die()
	}
}

// Describe returns a snapshot of the champion's current state.
func (c *Champion) Describe() Description {
	return Description{
		Name:      c.Name(),
		Health:    c.Health,
		LastValue: c.LastValue,
	}
}
