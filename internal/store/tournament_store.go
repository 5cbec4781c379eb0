package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/op-shuffle/internal/bracket"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	bracketColumns = "id, event_id, num_teams, team_names, status, created_at"
	teamColumns    = "id, bracket_id, name, avg_mmr"
	matchColumns   = "id, bracket_id, round_number, match_number, team1_name, team2_name, winner_name, completed_at"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateBracket(ctx context.Context, tx *sqlx.Tx, b *bracket.Bracket) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO brackets (`+bracketColumns+`)
		VALUES (:id, :event_id, :num_teams, :team_names, :status, :created_at)`, b)
	return err
}

func (s *TournamentStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO teams (`+teamColumns+`)
		VALUES (:id, :bracket_id, :name, :avg_mmr)`, teams)
	return err
}

func (s *TournamentStore) CreateMemberships(ctx context.Context, tx *sqlx.Tx, members []bracket.Membership) error {
	if len(members) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO team_players (team_id, player_id)
		VALUES (:team_id, :player_id)`, members)
	return err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO matches (`+matchColumns+`)
		VALUES (:id, :bracket_id, :round_number, :match_number, :team1_name, :team2_name, :winner_name, :completed_at)`, matches)
	return err
}

func (s *TournamentStore) GetBracket(ctx context.Context, id uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	if err := s.db.GetContext(ctx, &b, "SELECT "+bracketColumns+" FROM brackets WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBracketByEventTx returns nil without error when the event has no bracket.
func (s *TournamentStore) GetBracketByEventTx(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID) (*bracket.Bracket, error) {
	return getBracketByEvent(ctx, tx, eventID)
}

// GetBracketByEvent returns nil without error when the event has no bracket.
func (s *TournamentStore) GetBracketByEvent(ctx context.Context, eventID uuid.UUID) (*bracket.Bracket, error) {
	return getBracketByEvent(ctx, s.db, eventID)
}

func getBracketByEvent(ctx context.Context, q sqlx.QueryerContext, eventID uuid.UUID) (*bracket.Bracket, error) {
	var b bracket.Bracket
	err := sqlx.GetContext(ctx, q, &b, "SELECT "+bracketColumns+" FROM brackets WHERE event_id = ?", eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *TournamentStore) ListBrackets(ctx context.Context, eventID uuid.UUID) ([]bracket.Bracket, error) {
	var brackets []bracket.Bracket
	err := s.db.SelectContext(ctx, &brackets, "SELECT "+bracketColumns+" FROM brackets WHERE event_id = ? ORDER BY created_at DESC", eventID)
	return brackets, err
}

func (s *TournamentStore) UpdateBracketStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.Status) error {
	_, err := tx.ExecContext(ctx, "UPDATE brackets SET status = ? WHERE id = ?", status, id)
	return err
}

func (s *TournamentStore) GetTeams(ctx context.Context, bracketID uuid.UUID) ([]bracket.Team, error) {
	var teams []bracket.Team
	err := s.db.SelectContext(ctx, &teams, "SELECT "+teamColumns+" FROM teams WHERE bracket_id = ? ORDER BY avg_mmr DESC, name ASC", bracketID)
	return teams, err
}

func (s *TournamentStore) GetTeamByName(ctx context.Context, bracketID uuid.UUID, name string) (*bracket.Team, error) {
	var t bracket.Team
	if err := s.db.GetContext(ctx, &t, "SELECT "+teamColumns+" FROM teams WHERE bracket_id = ? AND name = ?", bracketID, name); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TournamentStore) GetTeamPlayers(ctx context.Context, teamID uuid.UUID) ([]team.Player, error) {
	var players []team.Player
	err := s.db.SelectContext(ctx, &players, `SELECT p.id, p.player_name, p.mmr, p.preferred_roles
		FROM team_players tp
		JOIN players p ON p.id = tp.player_id
		WHERE tp.team_id = ?
		ORDER BY p.mmr DESC`, teamID)
	return players, err
}

func (s *TournamentStore) GetMatches(ctx context.Context, bracketID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, s.db, bracketID)
}

func (s *TournamentStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, bracketID uuid.UUID) ([]bracket.Match, error) {
	return getMatches(ctx, tx, bracketID)
}

func getMatches(ctx context.Context, q sqlx.QueryerContext, bracketID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT "+matchColumns+" FROM matches WHERE bracket_id = ? ORDER BY round_number ASC, match_number ASC", bracketID)
	return matches, err
}

func (s *TournamentStore) GetMatchByIDTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	var m bracket.Match
	if err := tx.GetContext(ctx, &m, "SELECT "+matchColumns+" FROM matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatchTx returns nil without error when no match sits at the position.
func (s *TournamentStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, bracketID uuid.UUID, round, number int) (*bracket.Match, error) {
	var m bracket.Match
	err := tx.GetContext(ctx, &m, "SELECT "+matchColumns+" FROM matches WHERE bracket_id = ? AND round_number = ? AND match_number = ?", bracketID, round, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *TournamentStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *bracket.Match) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE matches SET
		team1_name = :team1_name,
		team2_name = :team2_name,
		winner_name = :winner_name,
		completed_at = :completed_at
		WHERE id = :id`, match)
	return err
}

// DeleteBracketTx removes a bracket together with its matches, teams and
// memberships.
func (s *TournamentStore) DeleteBracketTx(ctx context.Context, tx *sqlx.Tx, bracketID uuid.UUID) error {
	queries := []string{
		"DELETE FROM matches WHERE bracket_id = ?",
		"DELETE FROM team_players WHERE team_id IN (SELECT id FROM teams WHERE bracket_id = ?)",
		"DELETE FROM teams WHERE bracket_id = ?",
		"DELETE FROM brackets WHERE id = ?",
	}
	for _, q := range queries {
		if _, err := tx.ExecContext(ctx, q, bracketID); err != nil {
			return err
		}
	}
	return nil
}
