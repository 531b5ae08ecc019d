package audit

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Pruner periodically removes audit records past the retention window.
type Pruner struct {
	store     *Store
	retention time.Duration
	cron      *cron.Cron
}

// NewPruner schedules pruning on the given cron expression. A typical
// schedule is "0 3 * * *" (daily at 03:00).
func NewPruner(store *Store, schedule string, retention time.Duration) (*Pruner, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive")
	}

	p := &Pruner{
		store:     store,
		retention: retention,
		cron:      cron.New(),
	}

	if _, err := p.cron.AddFunc(schedule, p.prune); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}

	return p, nil
}

// Start begins the schedule.
func (p *Pruner) Start() {
	p.cron.Start()
	log.Info().Dur("retention", p.retention).Msg("Audit retention pruner started")
}

// Stop halts the schedule; a prune already in flight completes.
func (p *Pruner) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
}

func (p *Pruner) prune() {
	cutoff := time.Now().Add(-p.retention)
	if _, err := p.store.PruneBefore(cutoff); err != nil {
		log.Error().Err(err).Msg("Audit prune failed")
	}
}
