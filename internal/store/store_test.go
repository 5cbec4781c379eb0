package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/db"
	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open("file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	// Every connection to :memory: is a separate database.
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })

	return database
}

func createTestEvent(t *testing.T, database *sqlx.DB) *event.Event {
	t.Helper()

	e := &event.Event{
		ID:         uuid.New(),
		LinkCode:   event.NewLinkCode(),
		Title:      "Friday Inhouse",
		MaxPlayers: event.DefaultMaxPlayers,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, NewEventStore(database).CreateEvent(context.Background(), e))
	return e
}

func registerTestPlayer(t *testing.T, database *sqlx.DB, eventID uuid.UUID, name string, mmr int, status event.PlayerStatus) *event.Registration {
	t.Helper()

	r := &event.Registration{
		ID:           uuid.New(),
		EventID:      eventID,
		Name:         name,
		MMR:          mmr,
		Roles:        team.NewRoleSet(team.Carry, team.Mid),
		Status:       status,
		RegisteredAt: time.Now().UTC(),
	}
	require.NoError(t, NewPlayerStore(database).CreateRegistration(context.Background(), r))
	return r
}
