package bracket

import (
	"fmt"
	"testing"

	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamNames(n int) []string {
	names := make([]string, n)
	for i := range n {
		names[i] = fmt.Sprintf("Team %d", i+1)
	}
	return names
}

func TestTotalRounds(t *testing.T) {
	testCases := []struct {
		teams    int
		expected int
	}{
		{teams: 0, expected: 0},
		{teams: 1, expected: 0},
		{teams: 2, expected: 1},
		{teams: 3, expected: 2},
		{teams: 4, expected: 2},
		{teams: 5, expected: 3},
		{teams: 8, expected: 3},
		{teams: 9, expected: 4},
		{teams: 16, expected: 4},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d teams", tc.teams), func(t *testing.T) {
			assert.Equal(t, tc.expected, TotalRounds(tc.teams))
		})
	}
}

func TestMatchesPerRound(t *testing.T) {
	assert.Equal(t, []int{1}, MatchesPerRound(2))
	assert.Equal(t, []int{1, 1}, MatchesPerRound(3))
	assert.Equal(t, []int{2, 1}, MatchesPerRound(4))
	assert.Equal(t, []int{2, 1, 1}, MatchesPerRound(5))
	assert.Equal(t, []int{3, 1, 1}, MatchesPerRound(6))
	assert.Equal(t, []int{4, 2, 1}, MatchesPerRound(8))
}

func TestBuild_RequiresTwoTeams(t *testing.T) {
	_, err := Build(uuid.New(), teamNames(1), random.NewSeeded(1))
	assert.ErrorIs(t, err, ErrMinimumTeamsNotMet)

	_, err = Build(uuid.New(), nil, random.NewSeeded(1))
	assert.ErrorIs(t, err, ErrMinimumTeamsNotMet)
}

func TestBuild_EvenTeamCount(t *testing.T) {
	id := uuid.New()
	names := teamNames(8)

	matches, err := Build(id, names, random.NewSeeded(5))
	require.NoError(t, err)
	require.Len(t, matches, 7)

	rounds, nums := GroupRounds(matches)
	assert.Equal(t, []int{1, 2, 3}, nums)
	assert.Len(t, rounds[1], 4)
	assert.Len(t, rounds[2], 2)
	assert.Len(t, rounds[3], 1)

	seen := make(map[string]bool)
	for _, m := range rounds[1] {
		require.NotNil(t, m.Team1Name)
		require.NotNil(t, m.Team2Name)
		seen[*m.Team1Name] = true
		seen[*m.Team2Name] = true
	}
	assert.Len(t, seen, 8)

	for _, m := range matches {
		assert.Equal(t, id, m.BracketID)
		assert.Nil(t, m.WinnerName)
		if m.RoundNumber > 1 {
			assert.Nil(t, m.Team1Name)
			assert.Nil(t, m.Team2Name)
		}
	}
}

func TestBuild_OddTeamCountDropsOneTeam(t *testing.T) {
	matches, err := Build(uuid.New(), teamNames(5), random.NewSeeded(11))
	require.NoError(t, err)

	rounds, nums := GroupRounds(matches)
	assert.Equal(t, []int{1, 2, 3}, nums)
	assert.Len(t, rounds[1], 2)
	assert.Len(t, rounds[2], 1)
	assert.Len(t, rounds[3], 1)

	placed := 0
	for _, m := range rounds[1] {
		if m.Team1Name != nil {
			placed++
		}
		if m.Team2Name != nil {
			placed++
		}
	}
	assert.Equal(t, 4, placed)
}

func TestBuild_DoesNotMutateNames(t *testing.T) {
	names := teamNames(6)
	before := append([]string(nil), names...)

	_, err := Build(uuid.New(), names, random.NewSeeded(3))
	require.NoError(t, err)

	assert.Equal(t, before, names)
}

func TestPair_ClearsMissingSlots(t *testing.T) {
	round1 := []*Match{
		{MatchNumber: 1, Team1Name: utils.Ptr("old"), Team2Name: utils.Ptr("old")},
		{MatchNumber: 2, Team1Name: utils.Ptr("old"), Team2Name: utils.Ptr("old")},
	}

	Pair(round1, []string{"a", "b", "c"})

	assert.Equal(t, "a", *round1[0].Team1Name)
	assert.Equal(t, "b", *round1[0].Team2Name)
	assert.Equal(t, "c", *round1[1].Team1Name)
	assert.Nil(t, round1[1].Team2Name)
}

func TestRoundName(t *testing.T) {
	assert.Equal(t, "Finals", RoundName(3, 3))
	assert.Equal(t, "Semi-Finals", RoundName(2, 3))
	assert.Equal(t, "Quarter-Finals", RoundName(2, 4))
	assert.Equal(t, "Round 1", RoundName(1, 4))
}
