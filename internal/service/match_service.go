package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/AdamBeresnev/op-shuffle/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type MatchService struct {
	db     *sqlx.DB
	events *store.EventStore
	store  *store.TournamentStore
	tel    *Telemetry
	now    func() time.Time
}

func NewMatchService(db *sqlx.DB, events *store.EventStore, tournaments *store.TournamentStore, tel *Telemetry) *MatchService {
	return &MatchService{db: db, events: events, store: tournaments, tel: tel, now: time.Now}
}

type DeclareResult struct {
	Match    *bracket.Match    `json:"match"`
	Next     *bracket.Match    `json:"next_match,omitempty"`
	Champion *bracket.Champion `json:"champion,omitempty"`
}

// DeclareWinner records winner for a match of the event's bracket and moves
// the winner into the parent match. Deciding a match with no parent completes
// the bracket and returns the champion.
//
// Re-deciding a match overwrites its winner and the one parent slot it feeds;
// results already recorded further up the tree are left as they are.
func (s *MatchService) DeclareWinner(ctx context.Context, code string, matchID uuid.UUID, winner string) (*DeclareResult, error) {
	var (
		res   DeclareResult
		final *bracket.Bracket
	)
	err := s.tel.observe(ctx, "MatchService.DeclareWinner", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(
			attribute.String("link_code", code),
			attribute.String("match_id", matchID.String()),
		)

		e, err := s.events.GetEventByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("event %q: %w", code, err)
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
		match, err := s.store.GetMatchByIDTx(ctx, tx, matchID)
		if err != nil {
			return fmt.Errorf("match %s: %w", matchID, err)
		}
		if b == nil || match.BracketID != b.ID {
			return fmt.Errorf("match %s is not part of event %q: %w", matchID, code, sql.ErrNoRows)
		}

		if err := match.Decide(winner, s.now()); err != nil {
			return err
		}
		if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
			return fmt.Errorf("failed to update match: %w", err)
		}
		res.Match = match

		nextRound, nextNumber, slot := bracket.NextPosition(match.RoundNumber, match.MatchNumber)
		next, err := s.store.GetMatchTx(ctx, tx, b.ID, nextRound, nextNumber)
		if err != nil {
			return fmt.Errorf("failed to get next match: %w", err)
		}

		switch {
		case next != nil:
			next.SetSlot(slot, match.WinnerName)
			if err := s.store.UpdateMatch(ctx, tx, next); err != nil {
				return fmt.Errorf("failed to update next match: %w", err)
			}
			res.Next = next
		default:
			// No parent match: the bracket is complete. Below the final round
			// this comes from uneven round sizes and is flagged.
			if match.RoundNumber < b.TotalRounds() {
				s.tel.Logger.WarnContext(ctx, "winner has no downstream match before the final round",
					"bracket_id", b.ID,
					"round", match.RoundNumber,
					"match", match.MatchNumber,
					"winner", winner)
			}
			if err := s.store.UpdateBracketStatusTx(ctx, tx, b.ID, bracket.BracketCompleted); err != nil {
				return fmt.Errorf("failed to update bracket status: %w", err)
			}
			final = b
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.tel.Logger.InfoContext(ctx, "match winner set",
		"link_code", code,
		"match_id", matchID,
		"round", res.Match.RoundNumber,
		"winner", winner)

	if final != nil {
		champion, err := s.champion(ctx, final.ID, winner)
		s.tel.Metrics.RecordMatchDecided(champion != nil)
		if err != nil {
			return &res, err
		}
		res.Champion = champion
		s.tel.Logger.InfoContext(ctx, "tournament champion declared", "bracket_id", final.ID, "champion", winner)
		return &res, nil
	}

	s.tel.Metrics.RecordMatchDecided(false)
	return &res, nil
}

// GetChampion returns nil without error while the bracket is undecided.
func (s *MatchService) GetChampion(ctx context.Context, code string) (*bracket.Champion, error) {
	e, err := s.events.GetEventByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", code, err)
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
	final := bracket.FindMatch(matches, b.TotalRounds(), 1)
	if final == nil || final.WinnerName == nil {
		if b.Status != bracket.BracketCompleted {
			return nil, nil
		}
		// Completed through a match with no parent below the final round.
		final = bracket.LastParentlessWinner(matches)
		if final == nil {
			return nil, nil
		}
	}
	return s.champion(ctx, b.ID, *final.WinnerName)
}

func (s *MatchService) champion(ctx context.Context, bracketID uuid.UUID, name string) (*bracket.Champion, error) {
	t, err := s.store.GetTeamByName(ctx, bracketID, name)
	if errors.Is(err, sql.ErrNoRows) {
		s.tel.Logger.ErrorContext(ctx, "champion team not found in database",
			"bracket_id", bracketID,
			"team", name)
		return nil, fmt.Errorf("%w: %s", bracket.ErrChampionNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	players, err := s.store.GetTeamPlayers(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load champion roster: %w", err)
	}
	return bracket.NewChampion(t.Name, players), nil
}
