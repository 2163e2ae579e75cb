package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/tarefas-app/tarefas-be/internal/services"
)

// EventPruner periodically deletes activity events older than the configured
// retention window.
type EventPruner struct {
	eventSvc  services.EventServiceProvider
	schedule  cron.Schedule
	retention time.Duration
	nextRun   time.Time
	ticker    *time.Ticker
	done      chan bool
}

// NewEventPruner creates a pruner from a standard cron expression and a
// retention period in days.
func NewEventPruner(eventSvc services.EventServiceProvider, cronExpr string, retentionDays int) (*EventPruner, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &EventPruner{
		eventSvc:  eventSvc,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		nextRun:   schedule.Next(time.Now()),
		done:      make(chan bool),
	}, nil
}

// Run starts the pruner's ticking loop.
func (p *EventPruner) Run() {
	log.Info().Time("next_run", p.nextRun).Msg("Starting event retention pruner...")
	p.ticker = time.NewTicker(1 * time.Minute)
	defer p.ticker.Stop()

	for {
		select {
		case <-p.done:
			log.Info().Msg("Stopping event retention pruner.")
			return
		case <-p.ticker.C:
			now := time.Now()
			if now.After(p.nextRun) {
				p.prune(now)
				p.nextRun = p.schedule.Next(now)
			}
		}
	}
}

// Stop halts the pruner.
func (p *EventPruner) Stop() {
	p.done <- true
}

func (p *EventPruner) prune(now time.Time) {
	cutoff := now.Add(-p.retention)
	removed, err := p.eventSvc.PruneOlderThan(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Pruner: failed to delete expired events")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Pruner: expired events removed")
	}
}
