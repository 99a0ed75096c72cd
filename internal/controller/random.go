package controller

import (
	"fmt"
	"math/rand/v2"
)

// PossibleActions is the exclusive upper bound of values the random
// controller decides.
const PossibleActions = 1000

// Random decides uniformly from [0, PossibleActions).
type Random struct {
	firstName string
	rng       *rand.Rand
}

// NewRandom creates a random controller. rng is required so that matches
// are reproducible.
func NewRandom(firstName string, rng *rand.Rand) *Random {
	if rng == nil {
		panic("rng is required for a random controller")
	}
	return &Random{firstName: firstName, rng: rng}
}

// Name implements match.Controller.
func (r *Random) Name() string {
	return fmt.Sprintf("RandomController%s", r.firstName)
}

// Reset implements match.Controller. The random controller has no state.
func (r *Random) Reset() error {
	return nil
}

// Decide implements match.Controller.
func (r *Random) Decide() (int, error) {
	return r.rng.IntN(PossibleActions), nil
}
