package bracket

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
)

type Status string

const (
	BracketActive    Status = "active"
	BracketCompleted Status = "completed"
)

type Bracket struct {
	ID       uuid.UUID `db:"id" json:"id"`
	EventID  uuid.UUID `db:"event_id" json:"event_id"`
	NumTeams int       `db:"num_teams" json:"num_teams"`
	// Team names in the order they were formed, before pairing.
	TeamNames Names     `db:"team_names" json:"team_names"`
	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (b *Bracket) TotalRounds() int {
	return TotalRounds(b.NumTeams)
}

// Names is stored as a JSON array.
type Names []string

func (n Names) Value() (driver.Value, error) {
	if n == nil {
		n = Names{}
	}
	b, err := json.Marshal([]string(n))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (n *Names) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = nil
		return nil
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(n))
	case []byte:
		return json.Unmarshal(v, (*[]string)(n))
	default:
		return fmt.Errorf("cannot scan %T into Names", src)
	}
}

// Team is a formed team persisted with its bracket. Members live in the
// team_players table.
type Team struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BracketID uuid.UUID `db:"bracket_id" json:"bracket_id"`
	Name      string    `db:"name" json:"name"`
	AvgMMR    int       `db:"avg_mmr" json:"avg_mmr"`
}

type Membership struct {
	TeamID   uuid.UUID `db:"team_id"`
	PlayerID uuid.UUID `db:"player_id"`
}

type Champion struct {
	Name    string        `json:"name"`
	Players []team.Player `json:"players"`
}

// NewChampion orders members by MMR and keeps at most a full team, so a
// corrupted membership table can never report more than five champions.
func NewChampion(name string, members []team.Player) *Champion {
	players := make([]team.Player, len(members))
	copy(players, members)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].MMR > players[j].MMR
	})
	if len(players) > team.TeamSize {
		players = players[:team.TeamSize]
	}
	return &Champion{Name: name, Players: players}
}
