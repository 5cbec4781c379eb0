package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/AdamBeresnev/op-shuffle/internal/db"
	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/metrics"
	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/store"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open("file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })

	return database
}

type testServices struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	events      *EventService
	shuffle     *ShuffleService
	brackets    *BracketService
	matches     *MatchService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	database := setupTestDB(t)
	eventStore := store.NewEventStore(database)
	playerStore := store.NewPlayerStore(database)
	tournamentStore := store.NewTournamentStore(database)

	tel := NewTelemetry(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics.New(nil))
	src := random.NewLocked(random.NewSeeded(42))

	return &testServices{
		db:          database,
		tournaments: tournamentStore,
		events:      NewEventService(eventStore, playerStore, tel),
		shuffle:     NewShuffleService(eventStore, playerStore, src, tel),
		brackets:    NewBracketService(database, eventStore, playerStore, tournamentStore, src, tel),
		matches:     NewMatchService(database, eventStore, tournamentStore, tel),
	}
}

// createEvent opens an event and registers n players with spread-out MMRs.
func (ts *testServices) createEvent(t *testing.T, n int) *event.Event {
	t.Helper()
	ctx := context.Background()

	e, err := ts.events.CreateEvent(ctx, event.EventInput{Title: "Inhouse League"})
	require.NoError(t, err)

	for i := range n {
		roles := []string{team.AllRoles[i%len(team.AllRoles)].String()}
		if i%3 == 0 {
			roles = append(roles, team.AllRoles[(i+2)%len(team.AllRoles)].String())
		}
		_, err := ts.events.Register(ctx, e.LinkCode, RegistrationInput{
			Name:  fmt.Sprintf("player-%02d", i),
			MMR:   1000 + (i*733)%6000,
			Roles: roles,
		})
		require.NoError(t, err)
	}
	return e
}

func countRows(t *testing.T, database *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}
