package team

import "github.com/google/uuid"

type Player struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"player_name"`
	MMR   int       `json:"mmr" db:"mmr"`
	Roles RoleSet   `json:"roles" db:"preferred_roles"`

	Eligible bool `json:"-" db:"eligible"`
	Banned   bool `json:"-" db:"banned"`
}

// FilterEligible keeps the players that may be placed on a team.
func FilterEligible(players []Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if p.Eligible && !p.Banned {
			out = append(out, p)
		}
	}
	return out
}

type Team struct {
	Name    string   `json:"name"`
	Players []Player `json:"players"`
	AvgMMR  int      `json:"avg_mmr"`
}

type Balance struct {
	AverageMMR int `json:"average_mmr"`
	Variance   int `json:"variance"`
	MinTeamMMR int `json:"min_team_mmr"`
	MaxTeamMMR int `json:"max_team_mmr"`
	Spread     int `json:"mmr_difference"`
}

type Result struct {
	Teams    []Team   `json:"teams"`
	Reserved []Player `json:"reserved"`
	Balance  Balance  `json:"balance"`
	Swaps    int      `json:"swaps"`
}

// TeamNames returns the team names in result order.
func (r *Result) TeamNames() []string {
	names := make([]string, len(r.Teams))
	for i, t := range r.Teams {
		names[i] = t.Name
	}
	return names
}
