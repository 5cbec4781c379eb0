package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareWinner_PlaysToChampion(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	e := ts.createEvent(t, 20)

	_, err := ts.brackets.Create(ctx, e.LinkCode, 0)
	require.NoError(t, err)

	data, err := ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	m1, m2 := data.Rounds[1][0], data.Rounds[1][1]

	res, err := ts.matches.DeclareWinner(ctx, e.LinkCode, m1.ID, *m1.Team1Name)
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Nil(t, res.Champion)
	assert.Equal(t, *m1.Team1Name, *res.Next.Team1Name)
	assert.Nil(t, res.Next.Team2Name)

	res, err = ts.matches.DeclareWinner(ctx, e.LinkCode, m2.ID, *m2.Team2Name)
	require.NoError(t, err)
	require.NotNil(t, res.Next)
	assert.Equal(t, *m2.Team2Name, *res.Next.Team2Name)

	champion, err := ts.matches.GetChampion(ctx, e.LinkCode)
	require.NoError(t, err)
	assert.Nil(t, champion)

	final := res.Next
	res, err = ts.matches.DeclareWinner(ctx, e.LinkCode, final.ID, *m2.Team2Name)
	require.NoError(t, err)
	assert.Nil(t, res.Next)
	require.NotNil(t, res.Champion)
	assert.Equal(t, *m2.Team2Name, res.Champion.Name)
	require.Len(t, res.Champion.Players, 5)
	for i := 1; i < len(res.Champion.Players); i++ {
		assert.GreaterOrEqual(t, res.Champion.Players[i-1].MMR, res.Champion.Players[i].MMR)
	}

	champion, err = ts.matches.GetChampion(ctx, e.LinkCode)
	require.NoError(t, err)
	assert.Equal(t, res.Champion, champion)

	data, err = ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	assert.Equal(t, bracket.BracketCompleted, data.Bracket.Status)
}

func TestDeclareWinner_InvalidWinner(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	e := ts.createEvent(t, 10)

	created, err := ts.brackets.Create(ctx, e.LinkCode, 0)
	require.NoError(t, err)
	m := created.Matches[0]

	_, err = ts.matches.DeclareWinner(ctx, e.LinkCode, m.ID, "Team 3")
	assert.ErrorIs(t, err, bracket.ErrInvalidWinner)

	data, err := ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	assert.Nil(t, data.Rounds[1][0].WinnerName)
}

func TestDeclareWinner_UnknownMatch(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	e := ts.createEvent(t, 10)
	other := ts.createEvent(t, 0)

	created, err := ts.brackets.Create(ctx, e.LinkCode, 0)
	require.NoError(t, err)

	_, err = ts.matches.DeclareWinner(ctx, e.LinkCode, uuid.New(), "Team 1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = ts.matches.DeclareWinner(ctx, other.LinkCode, created.Matches[0].ID, "Team 1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeclareWinner_ChampionNotFound(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	e := ts.createEvent(t, 10)

	created, err := ts.brackets.Create(ctx, e.LinkCode, 0)
	require.NoError(t, err)
	final := created.Matches[0]
	winner := *final.Team1Name

	_, err = ts.db.Exec("UPDATE teams SET name = 'Renamed' WHERE name = ?", winner)
	require.NoError(t, err)

	res, err := ts.matches.DeclareWinner(ctx, e.LinkCode, final.ID, winner)
	assert.ErrorIs(t, err, bracket.ErrChampionNotFound)
	require.NotNil(t, res)
	assert.Nil(t, res.Champion)

	// The result itself stays recorded.
	data, err := ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	require.NotNil(t, data.Rounds[1][0].WinnerName)
	assert.Equal(t, winner, *data.Rounds[1][0].WinnerName)
}

func TestDeclareWinner_ParentlessMatchCompletesBracket(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	e := ts.createEvent(t, 30)

	_, err := ts.brackets.Create(ctx, e.LinkCode, 0)
	require.NoError(t, err)

	data, err := ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	require.Len(t, data.Rounds[1], 3)
	require.Len(t, data.Rounds[2], 1)

	champ, err := ts.matches.GetChampion(ctx, e.LinkCode)
	require.NoError(t, err)
	assert.Nil(t, champ)

	// Six teams: round one's third match has no parent in round two.
	m3 := data.Rounds[1][2]
	res, err := ts.matches.DeclareWinner(ctx, e.LinkCode, m3.ID, *m3.Team1Name)
	require.NoError(t, err)
	assert.Nil(t, res.Next)
	require.NotNil(t, res.Champion)
	assert.Equal(t, *m3.Team1Name, res.Champion.Name)
	assert.Len(t, res.Champion.Players, 5)

	data, err = ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	assert.Equal(t, bracket.BracketCompleted, data.Bracket.Status)

	champ, err = ts.matches.GetChampion(ctx, e.LinkCode)
	require.NoError(t, err)
	require.NotNil(t, champ)
	assert.Equal(t, *m3.Team1Name, champ.Name)
}

func TestDeclareWinner_RedecideOverwritesParentSlot(t *testing.T) {
	ts := newTestServices(t)
	ctx := context.Background()
	e := ts.createEvent(t, 20)

	_, err := ts.brackets.Create(ctx, e.LinkCode, 0)
	require.NoError(t, err)
	data, err := ts.brackets.Get(ctx, e.LinkCode)
	require.NoError(t, err)
	m1 := data.Rounds[1][0]

	_, err = ts.matches.DeclareWinner(ctx, e.LinkCode, m1.ID, *m1.Team1Name)
	require.NoError(t, err)
	res, err := ts.matches.DeclareWinner(ctx, e.LinkCode, m1.ID, *m1.Team2Name)
	require.NoError(t, err)

	assert.Equal(t, *m1.Team2Name, *res.Match.WinnerName)
	assert.Equal(t, *m1.Team2Name, *res.Next.Team1Name)
}
