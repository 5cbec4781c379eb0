package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/store"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type BracketService struct {
	db      *sqlx.DB
	events  *store.EventStore
	players *store.PlayerStore
	store   *store.TournamentStore
	src     random.Source
	tel     *Telemetry
	now     func() time.Time
}

func NewBracketService(db *sqlx.DB, events *store.EventStore, players *store.PlayerStore, tournaments *store.TournamentStore, src random.Source, tel *Telemetry) *BracketService {
	return &BracketService{
		db:      db,
		events:  events,
		players: players,
		store:   tournaments,
		src:     src,
		tel:     tel,
		now:     time.Now,
	}
}

// CreatedBracket is the outcome of forming teams and laying out their bracket.
type CreatedBracket struct {
	Bracket   *bracket.Bracket `json:"bracket"`
	Formation *team.Result     `json:"formation"`
	Matches   []bracket.Match  `json:"matches"`
}

func (s *BracketService) event(ctx context.Context, code string) (*event.Event, error) {
	e, err := s.events.GetEventByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", code, err)
	}
	return e, nil
}

// Create forms teams from the event roster and persists them together with a
// fresh bracket. Nothing is written unless every row is.
func (s *BracketService) Create(ctx context.Context, code string, requested int) (*CreatedBracket, error) {
	var out *CreatedBracket
	err := s.tel.observe(ctx, "BracketService.Create", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("link_code", code))

		e, err := s.event(ctx, code)
		if err != nil {
			return err
		}

		existing, err := s.store.GetBracketByEvent(ctx, e.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", bracket.ErrBracketExists, existing.ID)
		}

		roster, err := s.players.EligibleRoster(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}

		res, err := team.NewFormer(s.src, s.tel.Logger).Form(roster, requested)
		if err != nil {
			return err
		}
		s.tel.Metrics.RecordFormation(res)

		b := &bracket.Bracket{
			ID:        uuid.New(),
			EventID:   e.ID,
			NumTeams:  len(res.Teams),
			TeamNames: res.TeamNames(),
			Status:    bracket.BracketActive,
			CreatedAt: s.now().UTC(),
		}
		matches, err := bracket.Build(b.ID, b.TeamNames, s.src)
		if err != nil {
			return err
		}

		if err := s.persist(ctx, b, res.Teams, matches); err != nil {
			return err
		}

		out = &CreatedBracket{Bracket: b, Formation: res, Matches: matches}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tel.Logger.InfoContext(ctx, "bracket created",
		"link_code", code,
		"bracket_id", out.Bracket.ID,
		"teams", out.Bracket.NumTeams,
		"rounds", out.Bracket.TotalRounds())
	return out, nil
}

// persist writes the bracket, teams, memberships and matches in one
// transaction.
func (s *BracketService) persist(ctx context.Context, b *bracket.Bracket, teams []team.Team, matches []bracket.Match) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	existing, err := s.store.GetBracketByEventTx(ctx, tx, b.EventID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", bracket.ErrBracketExists, existing.ID)
	}

	if err := s.store.CreateBracket(ctx, tx, b); err != nil {
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("%w: event %s", bracket.ErrBracketExists, b.EventID)
		}
		return fmt.Errorf("failed to create bracket: %w", err)
	}

	rows := make([]bracket.Team, 0, len(teams))
	var members []bracket.Membership
	for _, t := range teams {
		row := bracket.Team{ID: uuid.New(), BracketID: b.ID, Name: t.Name, AvgMMR: t.AvgMMR}
		rows = append(rows, row)
		for _, p := range t.Players {
			members = append(members, bracket.Membership{TeamID: row.ID, PlayerID: p.ID})
		}
	}

	if err := s.store.CreateTeams(ctx, tx, rows); err != nil {
		return fmt.Errorf("failed to create teams: %w", err)
	}
	if err := s.store.CreateMemberships(ctx, tx, members); err != nil {
		return fmt.Errorf("failed to create team memberships: %w", err)
	}
	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return fmt.Errorf("failed to create matches: %w", err)
	}

	return tx.Commit()
}

// Get returns the event's bracket grouped by round. An event without a
// bracket yields sql.ErrNoRows.
func (s *BracketService) Get(ctx context.Context, code string) (*bracket.Rounds, error) {
	e, err := s.event(ctx, code)
	if err != nil {
		return nil, err
	}

	b, err := s.store.GetBracketByEvent(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("no bracket for event %q: %w", code, sql.ErrNoRows)
	}

	matches, err := s.store.GetMatches(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	teams, err := s.store.GetTeams(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	rounds, nums := bracket.GroupRounds(matches)
	return &bracket.Rounds{
		Bracket:     b,
		Rounds:      rounds,
		RoundNums:   nums,
		TotalRounds: b.TotalRounds(),
		Teams:       teams,
	}, nil
}

func (s *BracketService) ListBrackets(ctx context.Context, code string) ([]bracket.Bracket, error) {
	e, err := s.event(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.store.ListBrackets(ctx, e.ID)
}

// TeamWithPlayers is a persisted team and its roster.
type TeamWithPlayers struct {
	bracket.Team
	Players []team.Player `json:"players"`
}

func (s *BracketService) LoadTeams(ctx context.Context, bracketID uuid.UUID) ([]TeamWithPlayers, error) {
	teams, err := s.store.GetTeams(ctx, bracketID)
	if err != nil {
		return nil, err
	}

	out := make([]TeamWithPlayers, 0, len(teams))
	for _, t := range teams {
		players, err := s.store.GetTeamPlayers(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load players of %s: %w", t.Name, err)
		}
		out = append(out, TeamWithPlayers{Team: t, Players: players})
	}
	return out, nil
}

// Reshuffle re-pairs the names already placed in round one. It is refused
// once any round-one match has a winner.
func (s *BracketService) Reshuffle(ctx context.Context, code string) ([]bracket.Match, error) {
	var round1 []bracket.Match
	err := s.tel.observe(ctx, "BracketService.Reshuffle", func(ctx context.Context) error {
		e, err := s.event(ctx, code)
		if err != nil {
			return err
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		b, err := s.store.GetBracketByEventTx(ctx, tx, e.ID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("no bracket for event %q: %w", code, sql.ErrNoRows)
		}

		matches, err := s.store.GetMatchesTx(ctx, tx, b.ID)
		if err != nil {
			return err
		}

		var slots []*bracket.Match
		var names []string
		for i := range matches {
			m := &matches[i]
			if m.RoundNumber != 1 {
				continue
			}
			if m.WinnerName != nil {
				return bracket.ErrAlreadyInProgress
			}
			slots = append(slots, m)
			for _, name := range []*string{m.Team1Name, m.Team2Name} {
				if name != nil {
					names = append(names, *name)
				}
			}
		}

		bracket.Pair(slots, random.Strings(s.src, names))
		for _, m := range slots {
			if err := s.store.UpdateMatch(ctx, tx, m); err != nil {
				return fmt.Errorf("failed to update match: %w", err)
			}
			round1 = append(round1, *m)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.tel.Logger.InfoContext(ctx, "bracket reshuffled", "link_code", code, "matches", len(round1))
	return round1, nil
}

// Delete removes the event's bracket with all its teams and matches.
// Registrations are kept so a new bracket can be created.
func (s *BracketService) Delete(ctx context.Context, code string) error {
	err := s.tel.observe(ctx, "BracketService.Delete", func(ctx context.Context) error {
		e, err := s.event(ctx, code)
		if err != nil {
			return err
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		b, err := s.store.GetBracketByEventTx(ctx, tx, e.ID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("no bracket for event %q: %w", code, sql.ErrNoRows)
		}

		if err := s.store.DeleteBracketTx(ctx, tx, b.ID); err != nil {
			return fmt.Errorf("failed to delete bracket: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return err
	}

	s.tel.Logger.InfoContext(ctx, "bracket deleted", "link_code", code)
	return nil
}
