package match

import "context"

// Play steps m until it finishes or ctx is done. A cancelled match is left
// unfinished and cannot be scored.
func Play(ctx context.Context, m *Match) error {
	for !m.Finished() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// StepEpisode steps m until the current episode's environment step has run
// or the match finishes.
func StepEpisode(m *Match) error {
	start := m.Episode()
	for !m.Finished() && m.Episode() == start {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
