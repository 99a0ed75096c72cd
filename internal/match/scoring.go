package match

import "iter"

// Standing is one entry of the final elimination order.
type Standing struct {
	Name    string `json:"name"`
	Episode int    `json:"episode"`
	Score   int    `json:"score"`
}

// Score returns the accumulated score per controller name. Earlier
// eliminations score less; the winner, eliminated last, scores the most.
func (m *Match) Score() (map[string]int, error) {
	standings, err := m.Standings()
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(standings))
	for _, s := range standings {
		scores[s.Name] += s.Score
	}
	return scores, nil
}

// Standings returns the scored elimination order, first eliminated first.
func (m *Match) Standings() ([]Standing, error) {
	if !m.finished {
		return nil, ErrNotFinished
	}

	standings := make([]Standing, 0, len(m.eliminations))
	next, stop := iter.Pull(ScoreSequence())
	defer stop()
	for _, e := range m.eliminations {
		score, _ := next()
		standings = append(standings, Standing{
			Name:    e.Champion.Name(),
			Episode: e.Episode,
			Score:   score,
		})
	}
	return standings, nil
}

// ScoreSequence yields 1, 2, 3, 5, 8, 13, ...
func ScoreSequence() iter.Seq[int] {
	return func(yield func(int) bool) {
		a, b := 1, 2
		for {
			if !yield(a) {
				return
			}
			a, b = b, a+b
		}
	}
}

// MaxScore returns the sum of the first n terms of ScoreSequence, the total
// handed out by an n-champion match.
func MaxScore(n int) int {
	total := 0
	for v := range ScoreSequence() {
		if n == 0 {
			break
		}
		total += v
		n--
	}
	return total
}
