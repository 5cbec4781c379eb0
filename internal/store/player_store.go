package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PlayerStore struct {
	db *sqlx.DB
}

const (
	registrationColumns = "id, event_id, player_name, mmr, preferred_roles, status, registered_at"
	masterlistColumns   = "id, player_name, default_mmr, is_banned, ban_reason, notes, created_at, updated_at"

	createRegistrationQuery = `
		INSERT INTO players (` + registrationColumns + `) VALUES
		(:id, :event_id, :player_name, :mmr, :preferred_roles, :status, :registered_at)
	`
	getRegistrationQuery    = "SELECT " + registrationColumns + " FROM players WHERE id = ?"
	listRegistrationsQuery  = "SELECT " + registrationColumns + " FROM players WHERE event_id = ? ORDER BY registered_at, player_name"
	isRegisteredQuery       = "SELECT EXISTS (SELECT 1 FROM players WHERE event_id = ? AND player_name = ?)"
	countRegistrationsQuery = "SELECT COUNT(*) FROM players WHERE event_id = ?"
	updateStatusQuery       = "UPDATE players SET status = ? WHERE id = ?"
	deleteMembershipsQuery  = "DELETE FROM team_players WHERE player_id = ?"
	deleteRegistrationQuery = "DELETE FROM players WHERE id = ?"

	rosterQuery = `
		SELECT p.id, p.player_name, p.mmr, p.preferred_roles,
			p.status = 'Present' AS eligible,
			COALESCE(m.is_banned, 0) AS banned
		FROM players p
		LEFT JOIN masterlist m ON m.player_name = p.player_name
		WHERE p.event_id = ?
		ORDER BY p.registered_at, p.player_name
	`

	getMasterlistByNameQuery = "SELECT " + masterlistColumns + " FROM masterlist WHERE player_name = ?"
	listMasterlistQuery      = "SELECT " + masterlistColumns + " FROM masterlist ORDER BY player_name"
	createMasterlistQuery    = `
		INSERT INTO masterlist (` + masterlistColumns + `) VALUES
		(:id, :player_name, :default_mmr, :is_banned, :ban_reason, :notes, :created_at, :updated_at)
	`
	updateMasterlistQuery = `
		UPDATE masterlist SET
		player_name = :player_name,
		default_mmr = :default_mmr,
		notes = :notes,
		updated_at = :updated_at
		WHERE id = :id
	`
	setBanQuery            = "UPDATE masterlist SET is_banned = ?, ban_reason = ?, updated_at = ? WHERE id = ?"
	deleteMasterlistQuery  = "DELETE FROM masterlist WHERE id = ?"
	getMasterlistByIDQuery = "SELECT " + masterlistColumns + " FROM masterlist WHERE id = ?"
)

func NewPlayerStore(db *sqlx.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

func (s *PlayerStore) CreateRegistration(ctx context.Context, r *event.Registration) error {
	_, err := s.db.NamedExecContext(ctx, createRegistrationQuery, r)
	return err
}

func (s *PlayerStore) GetRegistration(ctx context.Context, id uuid.UUID) (*event.Registration, error) {
	var r event.Registration
	if err := s.db.GetContext(ctx, &r, getRegistrationQuery, id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PlayerStore) ListRegistrations(ctx context.Context, eventID uuid.UUID) ([]event.Registration, error) {
	var regs []event.Registration
	err := s.db.SelectContext(ctx, &regs, listRegistrationsQuery, eventID)
	return regs, err
}

func (s *PlayerStore) IsRegistered(ctx context.Context, eventID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, isRegisteredQuery, eventID, name)
	return exists, err
}

func (s *PlayerStore) CountRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, countRegistrationsQuery, eventID)
	return n, err
}

func (s *PlayerStore) UpdateStatus(ctx context.Context, id uuid.UUID, status event.PlayerStatus) error {
	res, err := s.db.ExecContext(ctx, updateStatusQuery, status, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeleteRegistration removes the player along with any team memberships
// referencing them.
func (s *PlayerStore) DeleteRegistration(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteMembershipsQuery, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, deleteRegistrationQuery, id)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// Roster returns every player registered to the event with eligibility and
// ban flags computed.
func (s *PlayerStore) Roster(ctx context.Context, eventID uuid.UUID) ([]team.Player, error) {
	var players []team.Player
	err := s.db.SelectContext(ctx, &players, rosterQuery, eventID)
	return players, err
}

// EligibleRoster is the Present, non-banned part of the roster.
func (s *PlayerStore) EligibleRoster(ctx context.Context, eventID uuid.UUID) ([]team.Player, error) {
	players, err := s.Roster(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return team.FilterEligible(players), nil
}

// GetMasterlistPlayer returns nil without error when name is unknown.
func (s *PlayerStore) GetMasterlistPlayer(ctx context.Context, name string) (*event.MasterlistPlayer, error) {
	var p event.MasterlistPlayer
	err := s.db.GetContext(ctx, &p, getMasterlistByNameQuery, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlayerStore) ListMasterlist(ctx context.Context) ([]event.MasterlistPlayer, error) {
	var players []event.MasterlistPlayer
	err := s.db.SelectContext(ctx, &players, listMasterlistQuery)
	return players, err
}

func (s *PlayerStore) CreateMasterlistPlayer(ctx context.Context, p *event.MasterlistPlayer) error {
	_, err := s.db.NamedExecContext(ctx, createMasterlistQuery, p)
	return err
}

func (s *PlayerStore) GetMasterlistPlayerByID(ctx context.Context, id uuid.UUID) (*event.MasterlistPlayer, error) {
	var p event.MasterlistPlayer
	if err := s.db.GetContext(ctx, &p, getMasterlistByIDQuery, id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PlayerStore) UpdateMasterlistPlayer(ctx context.Context, p *event.MasterlistPlayer) error {
	res, err := s.db.NamedExecContext(ctx, updateMasterlistQuery, p)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *PlayerStore) DeleteMasterlistPlayer(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, deleteMasterlistQuery, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *PlayerStore) SetBanned(ctx context.Context, id uuid.UUID, banned bool, reason *string) error {
	res, err := s.db.ExecContext(ctx, setBanQuery, banned, reason, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
