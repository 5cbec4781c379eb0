package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/store"
	"github.com/AdamBeresnev/op-shuffle/internal/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type EventService struct {
	events  *store.EventStore
	players *store.PlayerStore
	tel     *Telemetry
	now     func() time.Time
}

func NewEventService(events *store.EventStore, players *store.PlayerStore, tel *Telemetry) *EventService {
	return &EventService{events: events, players: players, tel: tel, now: time.Now}
}

var registrationOutcomes = map[string]error{
	"invalid":   event.ErrInvalid,
	"no_roles":  event.ErrNoRoles,
	"closed":    event.ErrEventClosed,
	"duplicate": event.ErrAlreadyRegistered,
	"full":      event.ErrEventFull,
	"banned":    event.ErrPlayerBanned,
	"not_found": sql.ErrNoRows,
}

type RegistrationInput struct {
	Name  string   `json:"name"`
	MMR   int      `json:"mmr"`
	Roles []string `json:"roles"`
}

type MasterlistInput struct {
	Name       string `json:"name"`
	DefaultMMR *int   `json:"default_mmr"`
	Notes      string `json:"notes"`
}

func (s *EventService) CreateEvent(ctx context.Context, in event.EventInput) (*event.Event, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	e := &event.Event{
		ID:          uuid.New(),
		LinkCode:    event.NewLinkCode(),
		Title:       strings.TrimSpace(in.Title),
		Description: utils.StringOrNil(in.Description),
		MaxPlayers:  in.MaxPlayers,
		IsActive:    true,
		OpensAt:     in.OpensAt,
		ExpiresAt:   in.ExpiresAt,
		CreatedAt:   s.now().UTC(),
	}
	if e.MaxPlayers == 0 {
		e.MaxPlayers = event.DefaultMaxPlayers
	}

	err := s.tel.observe(ctx, "EventService.CreateEvent", func(ctx context.Context) error {
		return s.events.CreateEvent(ctx, e)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.tel.Logger.InfoContext(ctx, "event created", "event_id", e.ID, "link_code", e.LinkCode, "title", e.Title)
	return e, nil
}

// GetEvent resolves a link code. Unknown codes wrap sql.ErrNoRows.
func (s *EventService) GetEvent(ctx context.Context, code string) (*event.Event, error) {
	e, err := s.events.GetEventByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", code, err)
	}
	return e, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]event.Event, error) {
	return s.events.ListEvents(ctx)
}

func (s *EventService) SetActive(ctx context.Context, code string, active bool) error {
	e, err := s.GetEvent(ctx, code)
	if err != nil {
		return err
	}
	return s.events.SetActive(ctx, e.ID, active)
}

// Register signs a player up for the event behind code. A masterlist entry
// for the same name supplies the stored MMR in place of the submitted one.
func (s *EventService) Register(ctx context.Context, code string, in RegistrationInput) (*event.Registration, error) {
	var reg *event.Registration
	err := s.tel.observe(ctx, "EventService.Register", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("link_code", code))

		name, err := event.NormalizeName(in.Name)
		if err != nil {
			return err
		}
		if err := event.ValidateMMR(in.MMR); err != nil {
			return err
		}
		roles, err := event.ParseRoles(in.Roles)
		if err != nil {
			return err
		}

		e, err := s.GetEvent(ctx, code)
		if err != nil {
			return err
		}
		now := s.now()
		if !e.AcceptsAt(now) {
			return fmt.Errorf("%w: %s", event.ErrEventClosed, e.Title)
		}

		registered, err := s.players.IsRegistered(ctx, e.ID, name)
		if err != nil {
			return err
		}
		if registered {
			return fmt.Errorf("%w: %s", event.ErrAlreadyRegistered, name)
		}

		count, err := s.players.CountRegistrations(ctx, e.ID)
		if err != nil {
			return err
		}
		if count >= e.MaxPlayers {
			return fmt.Errorf("%w: %d players", event.ErrEventFull, e.MaxPlayers)
		}

		mmr := in.MMR
		known, err := s.players.GetMasterlistPlayer(ctx, name)
		if err != nil {
			return err
		}
		if known != nil {
			if known.IsBanned {
				return fmt.Errorf("%w: %s", event.ErrPlayerBanned, utils.OrZero(known.BanReason))
			}
			if known.DefaultMMR != nil {
				mmr = *known.DefaultMMR
			}
		}

		reg = &event.Registration{
			ID:           uuid.New(),
			EventID:      e.ID,
			Name:         name,
			MMR:          mmr,
			Roles:        roles,
			Status:       event.StatusPresent,
			RegisteredAt: now.UTC(),
		}
		if err := s.players.CreateRegistration(ctx, reg); err != nil {
			reg = nil
			if store.IsUniqueViolation(err) {
				return fmt.Errorf("%w: %s", event.ErrAlreadyRegistered, name)
			}
			return fmt.Errorf("failed to save registration: %w", err)
		}
		return nil
	})
	s.tel.Metrics.RecordRegistration(err, registrationOutcomes)
	if err != nil {
		s.tel.Logger.WarnContext(ctx, "registration rejected", "link_code", code, "player", in.Name, "error", err)
		return nil, err
	}

	s.tel.Logger.InfoContext(ctx, "player registered", "link_code", code, "player", reg.Name, "mmr", reg.MMR)
	return reg, nil
}

func (s *EventService) IsRegistered(ctx context.Context, code, name string) (bool, error) {
	e, err := s.GetEvent(ctx, code)
	if err != nil {
		return false, err
	}
	name, err = event.NormalizeName(name)
	if err != nil {
		return false, nil
	}
	return s.players.IsRegistered(ctx, e.ID, name)
}

func (s *EventService) ListPlayers(ctx context.Context, code string) ([]event.Registration, error) {
	e, err := s.GetEvent(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.players.ListRegistrations(ctx, e.ID)
}

// registration loads a player and checks it belongs to the event.
func (s *EventService) registration(ctx context.Context, code string, playerID uuid.UUID) (*event.Registration, error) {
	e, err := s.GetEvent(ctx, code)
	if err != nil {
		return nil, err
	}
	reg, err := s.players.GetRegistration(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("player %s: %w", playerID, err)
	}
	if reg.EventID != e.ID {
		return nil, fmt.Errorf("player %s is not registered for %s: %w", playerID, code, sql.ErrNoRows)
	}
	return reg, nil
}

func (s *EventService) SetPlayerStatus(ctx context.Context, code string, playerID uuid.UUID, status event.PlayerStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", event.ErrInvalid, status)
	}
	if _, err := s.registration(ctx, code, playerID); err != nil {
		return err
	}
	if err := s.players.UpdateStatus(ctx, playerID, status); err != nil {
		return err
	}
	s.tel.Logger.InfoContext(ctx, "player status changed", "link_code", code, "player_id", playerID, "status", status)
	return nil
}

func (s *EventService) RemovePlayer(ctx context.Context, code string, playerID uuid.UUID) error {
	reg, err := s.registration(ctx, code, playerID)
	if err != nil {
		return err
	}
	if err := s.players.DeleteRegistration(ctx, playerID); err != nil {
		return err
	}
	s.tel.Logger.InfoContext(ctx, "player removed", "link_code", code, "player", reg.Name)
	return nil
}

func (s *EventService) ListMasterlist(ctx context.Context) ([]event.MasterlistPlayer, error) {
	return s.players.ListMasterlist(ctx)
}

func (s *EventService) AddMasterlistPlayer(ctx context.Context, in MasterlistInput) (*event.MasterlistPlayer, error) {
	name, err := event.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.DefaultMMR != nil {
		if err := event.ValidateMMR(*in.DefaultMMR); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	p := &event.MasterlistPlayer{
		ID:         uuid.New(),
		Name:       name,
		DefaultMMR: in.DefaultMMR,
		Notes:      utils.StringOrNil(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.players.CreateMasterlistPlayer(ctx, p); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s already exists in masterlist", ErrConflict, name)
		}
		return nil, err
	}
	return p, nil
}

func (s *EventService) UpdateMasterlistPlayer(ctx context.Context, id uuid.UUID, in MasterlistInput) (*event.MasterlistPlayer, error) {
	name, err := event.NormalizeName(in.Name)
	if err != nil {
		return nil, err
	}
	if in.DefaultMMR != nil {
		if err := event.ValidateMMR(*in.DefaultMMR); err != nil {
			return nil, err
		}
	}

	p, err := s.players.GetMasterlistPlayerByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = name
	p.DefaultMMR = in.DefaultMMR
	p.Notes = utils.StringOrNil(in.Notes)
	p.UpdatedAt = s.now().UTC()

	if err := s.players.UpdateMasterlistPlayer(ctx, p); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: another player named %s exists", ErrConflict, name)
		}
		return nil, err
	}
	return p, nil
}

func (s *EventService) DeleteMasterlistPlayer(ctx context.Context, id uuid.UUID) error {
	return s.players.DeleteMasterlistPlayer(ctx, id)
}

func (s *EventService) BanPlayer(ctx context.Context, id uuid.UUID, reason string) error {
	r := utils.StringOrNil(reason)
	if r == nil {
		return fmt.Errorf("%w: a ban reason is required", event.ErrInvalid)
	}
	if err := s.players.SetBanned(ctx, id, true, r); err != nil {
		return err
	}
	s.tel.Logger.InfoContext(ctx, "player banned", "masterlist_id", id, "reason", *r)
	return nil
}

func (s *EventService) UnbanPlayer(ctx context.Context, id uuid.UUID) error {
	if err := s.players.SetBanned(ctx, id, false, nil); err != nil {
		return err
	}
	s.tel.Logger.InfoContext(ctx, "player unbanned", "masterlist_id", id)
	return nil
}
