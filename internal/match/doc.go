// Package match implements the elimination match engine.
//
// A Match owns a roster of champions, one per controller. Each episode every
// living champion acts once, in reverse roster order, and then an
// environment step damages whoever produced the lowest action value and
// removes the dead. When a single champion remains it is eliminated as the
// winner, so every match ends with an empty roster and a complete
// elimination order from which scores are derived.
//
// # Stepping
//
// The engine is a two-state machine. Every call to Step performs exactly one
// transition; entering Acting does one unit of work (a champion action or an
// environment step) and entering Settling does nothing. This keeps every unit
// of work individually observable:
//
//	m := match.New(controllers, match.WithLogger(logger))
//	for !m.Finished() {
//	    if err := m.Step(); err != nil {
//	        return err
//	    }
//	}
//	scores, err := m.Score()
//
// Play wraps the loop above and honours context cancellation between steps.
//
// # Controllers
//
// A Controller only has to name itself, reset and decide. Controllers that
// also implement DeathReactor or WinReactor are notified when their champion
// dies or wins.
package match
