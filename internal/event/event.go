package event

import (
	"errors"
	"strings"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
)

var (
	ErrAlreadyRegistered = errors.New("player already registered for this event")
	ErrEventFull         = errors.New("event has reached its player limit")
	ErrEventClosed       = errors.New("event is not accepting registrations")
	ErrPlayerBanned      = errors.New("player is banned")
	ErrNoRoles           = errors.New("at least one preferred role is required")
)

const DefaultMaxPlayers = 100

type PlayerStatus string

const (
	StatusPresent PlayerStatus = "Present"
	StatusAbsent  PlayerStatus = "Absent"
	StatusReserve PlayerStatus = "Reserve"
)

func (s PlayerStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusReserve:
		return true
	}
	return false
}

// Event is a registration window players sign up to by link code.
type Event struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	LinkCode    string     `db:"link_code" json:"link_code"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	MaxPlayers  int        `db:"max_players" json:"max_players"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	OpensAt     *time.Time `db:"opens_at" json:"opens_at,omitempty"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// AcceptsAt reports whether registration is open at now.
func (e *Event) AcceptsAt(now time.Time) bool {
	if !e.IsActive {
		return false
	}
	if e.OpensAt != nil && now.Before(*e.OpensAt) {
		return false
	}
	if e.ExpiresAt != nil && !now.Before(*e.ExpiresAt) {
		return false
	}
	return true
}

// NewLinkCode returns a 32 character hex code.
func NewLinkCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Registration is a player's sign-up row for one event.
type Registration struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	EventID      uuid.UUID    `db:"event_id" json:"event_id"`
	Name         string       `db:"player_name" json:"name"`
	MMR          int          `db:"mmr" json:"mmr"`
	Roles        team.RoleSet `db:"preferred_roles" json:"roles"`
	Status       PlayerStatus `db:"status" json:"status"`
	RegisteredAt time.Time    `db:"registered_at" json:"registered_at"`
}

// MasterlistPlayer is the cross-event record of a known player.
type MasterlistPlayer struct {
	ID         uuid.UUID `db:"id" json:"id"`
	Name       string    `db:"player_name" json:"name"`
	DefaultMMR *int      `db:"default_mmr" json:"default_mmr,omitempty"`
	IsBanned   bool      `db:"is_banned" json:"is_banned"`
	BanReason  *string   `db:"ban_reason" json:"ban_reason,omitempty"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
