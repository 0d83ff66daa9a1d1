package game

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Settlement is the outcome of paying out one round-two question.
type Settlement struct {
	Pot     int           `json:"pot"`
	Winners []int64       `json:"winners"`
	Deltas  map[int64]int `json:"deltas"`
}

// normalizeAnswer trims, NFC-normalizes and case-folds s.
func normalizeAnswer(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// AnswersMatch compares two free-text answers ignoring case and
// surrounding space.
func AnswersMatch(a, b string) bool {
	return normalizeAnswer(a) == normalizeAnswer(b)
}

// Settle computes score deltas for a round-two question. scores holds the
// current score of every known team; bets placed by other teams do not
// count. A stake is the bet capped at the team's current score, so a score
// lowered after betting never goes negative. Every bettor pays its stake
// into the pot; the pot is split evenly among the correct teams holding the
// highest stake among correct teams, with the remainder going one unit each
// to the lowest team ids. If no bettor is correct the pot is lost.
func Settle(r2 RoundTwo, correct string, scores map[int64]int) Settlement {
	stakes := make(map[int64]int, len(r2.Bets))
	bettors := make([]int64, 0, len(r2.Bets))
	for id, bet := range r2.Bets {
		score, ok := scores[id]
		if !ok {
			continue
		}
		stakes[id] = min(max(bet, 0), max(score, 0))
		bettors = append(bettors, id)
	}
	slices.Sort(bettors)

	manual := make(map[int64]bool, len(r2.ManualCorrect))
	for _, id := range r2.ManualCorrect {
		manual[id] = true
	}

	s := Settlement{Winners: []int64{}, Deltas: make(map[int64]int, len(bettors))}
	var correctTeams []int64
	for _, id := range bettors {
		stake := stakes[id]
		s.Pot += stake
		s.Deltas[id] = -stake
		if manual[id] {
			correctTeams = append(correctTeams, id)
			continue
		}
		if ans, ok := r2.Answers[id]; ok && AnswersMatch(ans, correct) {
			correctTeams = append(correctTeams, id)
		}
	}
	if len(correctTeams) == 0 {
		return s
	}

	top := -1
	for _, id := range correctTeams {
		top = max(top, stakes[id])
	}
	for _, id := range correctTeams {
		if stakes[id] == top {
			s.Winners = append(s.Winners, id)
		}
	}

	share := s.Pot / len(s.Winners)
	remainder := s.Pot % len(s.Winners)
	for i, id := range s.Winners {
		inc := share
		if i < remainder {
			inc++
		}
		s.Deltas[id] += inc
	}
	return s
}
