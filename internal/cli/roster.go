package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AdamBeresnev/op-shuffle/internal/event"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type rosterFile struct {
	Players []rosterEntry `yaml:"players"`
}

type rosterEntry struct {
	Name   string   `yaml:"name"`
	MMR    int      `yaml:"mmr"`
	Roles  []string `yaml:"roles"`
	Status string   `yaml:"status"`
	Banned bool     `yaml:"banned"`
}

// ReadRoster decodes a roster document. Entries go through the same checks
// as a web registration; a missing status means Present.
func ReadRoster(r io.Reader) ([]team.Player, error) {
	var f rosterFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode roster: %w", err)
	}

	seen := make(map[string]bool, len(f.Players))
	players := make([]team.Player, 0, len(f.Players))
	for i, e := range f.Players {
		name, err := event.NormalizeName(e.Name)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		if seen[name] {
			return nil, fmt.Errorf("player %q: %w", name, event.ErrAlreadyRegistered)
		}
		seen[name] = true

		if err := event.ValidateMMR(e.MMR); err != nil {
			return nil, fmt.Errorf("player %q: %w", name, err)
		}
		roles, err := event.ParseRoles(e.Roles)
		if err != nil {
			return nil, fmt.Errorf("player %q: %w", name, err)
		}

		status := event.StatusPresent
		if e.Status != "" {
			status = event.PlayerStatus(e.Status)
		}
		if !status.Valid() {
			return nil, fmt.Errorf("player %q: %w: unknown status %q", name, event.ErrInvalid, e.Status)
		}

		players = append(players, team.Player{
			ID:       uuid.New(),
			Name:     name,
			MMR:      e.MMR,
			Roles:    roles,
			Eligible: status == event.StatusPresent,
			Banned:   e.Banned,
		})
	}
	return players, nil
}

func loadRoster(path string) ([]team.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()
	return ReadRoster(f)
}
