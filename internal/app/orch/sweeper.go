package orch

import (
	"context"
	"fmt"

	"github.com/dkeye/Relay/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type SweepReport struct {
	Evicted []domain.ConnectionID
	Purged  []domain.RoomName
}

// Sweep is the safety net behind eager reaping: it evicts members whose
// transport died without a disconnect and purges groups nobody is in.
func (o *Orchestrator) Sweep() SweepReport {
	var rep SweepReport
	for _, id := range o.Registry.Disconnected() {
		if out := o.Disconnect(id); out.Removed {
			rep.Evicted = append(rep.Evicted, id)
		}
	}
	o.mu.Lock()
	rep.Purged = o.Reaper.PurgeOrphans()
	o.mu.Unlock()
	log.Info().Str("module", "orch").Int("evicted", len(rep.Evicted)).Int("purged", len(rep.Purged)).Msg("sweep done")
	return rep
}

// Sweeper runs Sweep on a cron schedule such as "@every 1h".
type Sweeper struct {
	cron     *cron.Cron
	schedule string
}

func NewSweeper(o *Orchestrator, schedule string) (*Sweeper, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { o.Sweep() }); err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", schedule, err)
	}
	return &Sweeper{cron: c, schedule: schedule}, nil
}

// Run blocks until ctx is done, then waits for an in-flight sweep.
func (s *Sweeper) Run(ctx context.Context) {
	s.cron.Start()
	log.Info().Str("module", "orch").Str("schedule", s.schedule).Msg("sweeper started")
	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info().Str("module", "orch").Msg("sweeper stopped")
}
