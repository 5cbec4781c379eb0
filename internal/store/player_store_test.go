package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/AdamBeresnev/op-shuffle/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := NewPlayerStore(database)
	e := createTestEvent(t, database)

	r := registerTestPlayer(t, database, e.ID, "Miracle", 9000, event.StatusPresent)

	registered, err := store.IsRegistered(ctx, e.ID, "Miracle")
	require.NoError(t, err)
	assert.True(t, registered)

	registered, err = store.IsRegistered(ctx, e.ID, "miracle")
	require.NoError(t, err)
	assert.False(t, registered)

	n, err := store.CountRegistrations(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetRegistration(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, team.NewRoleSet(team.Carry, team.Mid), got.Roles)
	assert.Equal(t, event.StatusPresent, got.Status)

	// Same name twice in one event violates the unique index.
	dup := *r
	dup.ID = uuid.New()
	assert.Error(t, store.CreateRegistration(ctx, &dup))
}

func TestRoster_ComputesEligibility(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := NewPlayerStore(database)
	e := createTestEvent(t, database)

	registerTestPlayer(t, database, e.ID, "present", 3000, event.StatusPresent)
	registerTestPlayer(t, database, e.ID, "absent", 3000, event.StatusAbsent)
	registerTestPlayer(t, database, e.ID, "reserve", 3000, event.StatusReserve)
	registerTestPlayer(t, database, e.ID, "banned", 3000, event.StatusPresent)

	now := time.Now().UTC()
	ml := &event.MasterlistPlayer{ID: uuid.New(), Name: "banned", IsBanned: true, BanReason: utils.Ptr("griefing"), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreateMasterlistPlayer(ctx, ml))

	roster, err := store.Roster(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, roster, 4)

	flags := make(map[string][2]bool)
	for _, p := range roster {
		flags[p.Name] = [2]bool{p.Eligible, p.Banned}
	}
	assert.Equal(t, [2]bool{true, false}, flags["present"])
	assert.Equal(t, [2]bool{false, false}, flags["absent"])
	assert.Equal(t, [2]bool{false, false}, flags["reserve"])
	assert.Equal(t, [2]bool{true, true}, flags["banned"])

	eligible, err := store.EligibleRoster(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "present", eligible[0].Name)
	assert.Equal(t, 3000, eligible[0].MMR)
}

func TestUpdateStatusAndDelete(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := NewPlayerStore(database)
	e := createTestEvent(t, database)
	r := registerTestPlayer(t, database, e.ID, "Ana", 7000, event.StatusPresent)

	require.NoError(t, store.UpdateStatus(ctx, r.ID, event.StatusAbsent))
	got, err := store.GetRegistration(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusAbsent, got.Status)

	assert.ErrorIs(t, store.UpdateStatus(ctx, uuid.New(), event.StatusAbsent), sql.ErrNoRows)

	require.NoError(t, store.DeleteRegistration(ctx, r.ID))
	_, err = store.GetRegistration(ctx, r.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, store.DeleteRegistration(ctx, r.ID), sql.ErrNoRows)
}

func TestMasterlist(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	store := NewPlayerStore(database)

	missing, err := store.GetMasterlistPlayer(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	now := time.Now().UTC()
	p := &event.MasterlistPlayer{ID: uuid.New(), Name: "Topson", DefaultMMR: utils.Ptr(8500), CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.CreateMasterlistPlayer(ctx, p))

	require.NoError(t, store.SetBanned(ctx, p.ID, true, utils.Ptr("smurfing")))
	got, err := store.GetMasterlistPlayer(ctx, "Topson")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsBanned)
	assert.Equal(t, "smurfing", *got.BanReason)
	assert.Equal(t, 8500, *got.DefaultMMR)

	require.NoError(t, store.SetBanned(ctx, p.ID, false, nil))
	list, err := store.ListMasterlist(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsBanned)
	assert.Nil(t, list[0].BanReason)
}
