package store

import (
	"context"

	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const eventColumns = "id, link_code, title, description, max_players, is_active, opens_at, expires_at, created_at"

type EventStore struct {
	db *sqlx.DB
}

func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

func (s *EventStore) CreateEvent(ctx context.Context, e *event.Event) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO events (`+eventColumns+`)
		VALUES (:id, :link_code, :title, :description, :max_players, :is_active, :opens_at, :expires_at, :created_at)`, e)
	return err
}

func (s *EventStore) GetEvent(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	var e event.Event
	err := s.db.GetContext(ctx, &e, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EventStore) GetEventByCode(ctx context.Context, code string) (*event.Event, error) {
	var e event.Event
	err := s.db.GetContext(ctx, &e, "SELECT "+eventColumns+" FROM events WHERE link_code = ?", code)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EventStore) ListEvents(ctx context.Context) ([]event.Event, error) {
	var events []event.Event
	err := s.db.SelectContext(ctx, &events, "SELECT "+eventColumns+" FROM events ORDER BY created_at DESC")
	return events, err
}

func (s *EventStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := s.db.ExecContext(ctx, "UPDATE events SET is_active = ? WHERE id = ?", active, id)
	return err
}
