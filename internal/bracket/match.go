package bracket

import (
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/utils"
	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending MatchStatus = "pending"
	MatchDecided MatchStatus = "decided"
)

type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

type Match struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BracketID uuid.UUID `db:"bracket_id" json:"bracket_id"`

	RoundNumber int `db:"round_number" json:"round_number"`
	MatchNumber int `db:"match_number" json:"match_number"`

	Team1Name  *string `db:"team1_name" json:"team1_name"`
	Team2Name  *string `db:"team2_name" json:"team2_name"`
	WinnerName *string `db:"winner_name" json:"winner_name"`

	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

func (m *Match) Status() MatchStatus {
	if m.WinnerName != nil {
		return MatchDecided
	}
	return MatchPending
}

func (m *Match) IsWinner(slot Slot) bool {
	name := m.Slot(slot)
	return name != nil && m.WinnerName != nil && *name == *m.WinnerName
}

func (m *Match) Slot(slot Slot) *string {
	if slot == Slot1 {
		return m.Team1Name
	}
	return m.Team2Name
}

func (m *Match) SetSlot(slot Slot, name *string) {
	if slot == Slot1 {
		m.Team1Name = name
	} else {
		m.Team2Name = name
	}
}

// Decide records winner. The name must occupy one of the two slots.
// Deciding an already decided match overwrites the previous result.
func (m *Match) Decide(winner string, at time.Time) error {
	if winner == "" || (utils.OrZero(m.Team1Name) != winner && utils.OrZero(m.Team2Name) != winner) {
		return fmt.Errorf("%w: %q", ErrInvalidWinner, winner)
	}
	m.WinnerName = utils.Ptr(winner)
	m.CompletedAt = utils.Ptr(at.UTC())
	return nil
}

// NextPosition returns where the winner of (round, matchNumber) goes: odd
// match numbers feed slot 1 of the parent, even ones slot 2.
func NextPosition(round, matchNumber int) (nextRound, nextMatch int, slot Slot) {
	nextRound = round + 1
	nextMatch = (matchNumber + 1) / 2
	slot = Slot2
	if matchNumber%2 != 0 {
		slot = Slot1
	}
	return nextRound, nextMatch, slot
}
