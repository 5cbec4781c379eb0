package team

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sort"

	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/google/uuid"
)

const (
	TeamSize             = 5
	MinPlayers           = 10
	MinTeams             = 2
	MaxBalanceIterations = 100
)

var ErrInsufficientPlayers = errors.New("not enough players to shuffle")

// Former partitions a roster into five-player teams.
type Former struct {
	src    random.Source
	logger *slog.Logger
}

func NewFormer(src random.Source, logger *slog.Logger) *Former {
	if logger == nil {
		logger = slog.Default()
	}
	return &Former{src: src, logger: logger}
}

// TeamCount returns requested when 2 <= requested <= n/5, otherwise n/5.
func TeamCount(n, requested int) int {
	limit := n / TeamSize
	if requested >= MinTeams && requested <= limit {
		return requested
	}
	return limit
}

// Form runs one formation pass over players. requested <= 0 means no
// preference. The players slice is not modified.
func (f *Former) Form(players []Player, requested int) (*Result, error) {
	n := len(players)
	if n < MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d, got %d", ErrInsufficientPlayers, MinPlayers, n)
	}

	k := TeamCount(n, requested)
	if requested > 0 && k != requested {
		f.logger.Debug("requested team count out of range, using automatic count",
			"requested", requested, "teams", k, "players", n)
	}

	order := make([]Player, n)
	copy(order, players)
	f.src.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	d, deferred := f.assignRoles(order, k)
	reserved := d.fill(deferred)
	swaps := balance(d.members)

	res := buildResult(d.members, reserved)
	res.Swaps = swaps

	f.logger.Info("teams formed",
		"players", n,
		"teams", len(res.Teams),
		"reserved", len(res.Reserved),
		"swaps", swaps,
		"mmr_difference", res.Balance.Spread)

	return res, nil
}

type draft struct {
	members [][]Player
	needed  []RoleSet
	// filled records which player took each role slot during the role pass.
	filled []map[Role]uuid.UUID
}

func newDraft(k int) *draft {
	d := &draft{
		members: make([][]Player, k),
		needed:  make([]RoleSet, k),
		filled:  make([]map[Role]uuid.UUID, k),
	}
	for i := range k {
		d.needed[i] = AllRoleSet
		d.filled[i] = make(map[Role]uuid.UUID, TeamSize)
	}
	return d
}

// assignRoles places each player on the smallest team that still needs one
// of their roles. Players no team can use are returned in encounter order.
func (f *Former) assignRoles(order []Player, k int) (*draft, []Player) {
	d := newDraft(k)
	var deferred []Player

	idx := make([]int, k)
	for _, p := range order {
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return len(d.members[idx[a]]) < len(d.members[idx[b]])
		})

		placed := false
		for _, t := range idx {
			prefs := p.Roles.Roles()
			f.src.Shuffle(len(prefs), func(i, j int) {
				prefs[i], prefs[j] = prefs[j], prefs[i]
			})

			for _, r := range prefs {
				if !d.needed[t].Has(r) {
					continue
				}
				d.members[t] = append(d.members[t], p)
				d.needed[t] = d.needed[t].Remove(r)
				d.filled[t][r] = p.ID
				placed = true
				break
			}
			if placed {
				break
			}
		}

		if !placed {
			deferred = append(deferred, p)
		}
	}

	return d, deferred
}

// fill tops teams up to TeamSize from pool in order and returns the leftovers.
func (d *draft) fill(pool []Player) []Player {
	for i := range d.members {
		for len(d.members[i]) < TeamSize && len(pool) > 0 {
			d.members[i] = append(d.members[i], pool[0])
			pool = pool[1:]
		}
	}
	reserved := make([]Player, len(pool))
	copy(reserved, pool)
	return reserved
}

func mmrSum(players []Player) int {
	sum := 0
	for _, p := range players {
		sum += p.MMR
	}
	return sum
}

func mean(players []Player) float64 {
	if len(players) == 0 {
		return 0
	}
	return float64(mmrSum(players)) / float64(len(players))
}

// balance swaps players between the highest and lowest rated teams until no
// swap narrows their gap or MaxBalanceIterations is reached.
func balance(members [][]Player) int {
	swaps := 0
	for range MaxBalanceIterations {
		if !balanceStep(members) {
			break
		}
		swaps++
	}
	return swaps
}

func balanceStep(members [][]Player) bool {
	if len(members) < MinTeams {
		return false
	}

	means := make([]float64, len(members))
	for i, m := range members {
		means[i] = mean(m)
	}

	hi, lo := 0, 0
	for i, m := range means {
		if m > means[hi] {
			hi = i
		}
		if m < means[lo] {
			lo = i
		}
	}
	if hi == lo {
		return false
	}

	high, low := members[hi], members[lo]
	sumHigh, sumLow := mmrSum(high), mmrSum(low)
	best := math.Abs(means[hi] - means[lo])
	bh, bl := -1, -1

	for i, ph := range high {
		for j, pl := range low {
			if ph.Roles.Intersect(pl.Roles) == 0 {
				continue
			}
			newHigh := float64(sumHigh-ph.MMR+pl.MMR) / float64(len(high))
			newLow := float64(sumLow-pl.MMR+ph.MMR) / float64(len(low))
			if diff := math.Abs(newHigh - newLow); diff < best {
				best = diff
				bh, bl = i, j
			}
		}
	}
	if bh < 0 {
		return false
	}

	ph, pl := high[bh], low[bl]
	members[hi] = append(slices.Delete(high, bh, bh+1), pl)
	members[lo] = append(slices.Delete(low, bl, bl+1), ph)
	return true
}

func buildResult(members [][]Player, reserved []Player) *Result {
	teams := make([]Team, 0, len(members))
	for i, m := range members {
		if len(m) == 0 {
			continue
		}
		players := make([]Player, len(m))
		copy(players, m)
		sort.SliceStable(players, func(a, b int) bool {
			return players[a].MMR > players[b].MMR
		})
		teams = append(teams, Team{
			Name:    fmt.Sprintf("Team %d", i+1),
			Players: players,
			AvgMMR:  int(math.Round(mean(m))),
		})
	}
	sort.SliceStable(teams, func(a, b int) bool {
		return teams[a].AvgMMR > teams[b].AvgMMR
	})

	if reserved == nil {
		reserved = []Player{}
	}

	return &Result{
		Teams:    teams,
		Reserved: reserved,
		Balance:  CalculateBalance(teams),
	}
}

// CalculateBalance summarizes the spread of team averages.
func CalculateBalance(teams []Team) Balance {
	if len(teams) == 0 {
		return Balance{}
	}

	minAvg, maxAvg := teams[0].AvgMMR, teams[0].AvgMMR
	total := 0
	for _, t := range teams {
		total += t.AvgMMR
		minAvg = min(minAvg, t.AvgMMR)
		maxAvg = max(maxAvg, t.AvgMMR)
	}
	avg := float64(total) / float64(len(teams))

	variance := 0.0
	for _, t := range teams {
		d := float64(t.AvgMMR) - avg
		variance += d * d
	}
	variance /= float64(len(teams))

	return Balance{
		AverageMMR: int(math.Round(avg)),
		Variance:   int(math.Round(variance)),
		MinTeamMMR: minAvg,
		MaxTeamMMR: maxAvg,
		Spread:     maxAvg - minAvg,
	}
}
