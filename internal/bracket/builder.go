package bracket

import (
	"fmt"
	"math/bits"

	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/utils"
	"github.com/google/uuid"
)

// TotalRounds is ceil(log2(numTeams)).
func TotalRounds(numTeams int) int {
	if numTeams < 2 {
		return 0
	}
	return bits.Len(uint(numTeams - 1))
}

// MatchesPerRound returns the match count of every round, first round first.
// Round one holds numTeams/2 matches and each later round halves the previous
// count, never dropping below one.
func MatchesPerRound(numTeams int) []int {
	total := TotalRounds(numTeams)
	counts := make([]int, 0, total)
	n := numTeams / 2
	for range total {
		counts = append(counts, n)
		if n > 1 {
			n /= 2
		}
	}
	return counts
}

// Build lays out the full match tree for teamNames. Round one is paired from
// a shuffled copy of the names; later rounds are empty placeholders.
//
// With an odd team count the last shuffled name gets no round-one slot. No
// bye is granted for it.
func Build(bracketID uuid.UUID, teamNames []string, src random.Source) ([]Match, error) {
	if len(teamNames) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrMinimumTeamsNotMet, len(teamNames))
	}

	var matches []Match
	for i, count := range MatchesPerRound(len(teamNames)) {
		for j := range count {
			matches = append(matches, Match{
				ID:          uuid.New(),
				BracketID:   bracketID,
				RoundNumber: i + 1,
				MatchNumber: j + 1,
			})
		}
	}

	round1 := make([]*Match, 0, len(teamNames)/2)
	for i := range matches {
		if matches[i].RoundNumber == 1 {
			round1 = append(round1, &matches[i])
		}
	}
	Pair(round1, random.Strings(src, teamNames))

	return matches, nil
}

// Pair assigns names to round-one matches two at a time, in match order.
// A slot with no name left is cleared.
func Pair(round1 []*Match, names []string) {
	for i, m := range round1 {
		m.Team1Name, m.Team2Name = nil, nil
		if 2*i < len(names) {
			m.Team1Name = utils.Ptr(names[2*i])
		}
		if 2*i+1 < len(names) {
			m.Team2Name = utils.Ptr(names[2*i+1])
		}
	}
}

// RoundName is the display label of a round.
func RoundName(round, totalRounds int) string {
	switch totalRounds - round {
	case 0:
		return "Finals"
	case 1:
		return "Semi-Finals"
	case 2:
		return "Quarter-Finals"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
