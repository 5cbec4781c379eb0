package bracket

import "sort"

// Rounds is a bracket's matches grouped for display.
type Rounds struct {
	Bracket     *Bracket        `json:"bracket"`
	Rounds      map[int][]Match `json:"rounds"`
	RoundNums   []int           `json:"round_numbers"`
	TotalRounds int             `json:"total_rounds"`
	Teams       []Team          `json:"teams,omitempty"`
}

// GroupRounds buckets matches by round number, each bucket ordered by match
// number.
func GroupRounds(matches []Match) (map[int][]Match, []int) {
	rounds := make(map[int][]Match)
	var roundNums []int

	for _, m := range matches {
		if _, exists := rounds[m.RoundNumber]; !exists {
			roundNums = append(roundNums, m.RoundNumber)
		}
		rounds[m.RoundNumber] = append(rounds[m.RoundNumber], m)
	}

	sort.Ints(roundNums)
	for _, r := range roundNums {
		sort.Slice(rounds[r], func(i, j int) bool {
			return rounds[r][i].MatchNumber < rounds[r][j].MatchNumber
		})
	}

	return rounds, roundNums
}

// FindMatch returns the match at (round, matchNumber), or nil.
func FindMatch(matches []Match, round, matchNumber int) *Match {
	for i := range matches {
		if matches[i].RoundNumber == round && matches[i].MatchNumber == matchNumber {
			return &matches[i]
		}
	}
	return nil
}

// LastParentlessWinner returns the most recently decided match whose winner
// has no match to advance into, or nil.
func LastParentlessWinner(matches []Match) *Match {
	var last *Match
	for i := range matches {
		m := &matches[i]
		if m.WinnerName == nil {
			continue
		}
		nextRound, nextMatch, _ := NextPosition(m.RoundNumber, m.MatchNumber)
		if FindMatch(matches, nextRound, nextMatch) != nil {
			continue
		}
		if last == nil || completedAfter(m, last) {
			last = m
		}
	}
	return last
}

func completedAfter(a, b *Match) bool {
	if a.CompletedAt == nil || b.CompletedAt == nil {
		return a.CompletedAt != nil
	}
	return a.CompletedAt.After(*b.CompletedAt)
}
