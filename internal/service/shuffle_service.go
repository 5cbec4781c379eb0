package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/op-shuffle/internal/random"
	"github.com/AdamBeresnev/op-shuffle/internal/store"
	"github.com/AdamBeresnev/op-shuffle/internal/team"
)

// ShuffleService forms teams without persisting anything.
type ShuffleService struct {
	events  *store.EventStore
	players *store.PlayerStore
	src     random.Source
	tel     *Telemetry
}

func NewShuffleService(events *store.EventStore, players *store.PlayerStore, src random.Source, tel *Telemetry) *ShuffleService {
	return &ShuffleService{events: events, players: players, src: src, tel: tel}
}

// Preview forms teams from the event's eligible roster. requested <= 0 picks
// the team count automatically.
func (s *ShuffleService) Preview(ctx context.Context, code string, requested int) (*team.Result, error) {
	var res *team.Result
	err := s.tel.observe(ctx, "ShuffleService.Preview", func(ctx context.Context) error {
		e, err := s.events.GetEventByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("event %q: %w", code, err)
		}

		roster, err := s.players.EligibleRoster(ctx, e.ID)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}

		res, err = team.NewFormer(s.src, s.tel.Logger).Form(roster, requested)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.tel.Metrics.RecordFormation(res)
	return res, nil
}
