package report

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/mr1hm/go-rescue-command/internal/dashboard"
	"github.com/mr1hm/go-rescue-command/internal/logging"
	"github.com/mr1hm/go-rescue-command/internal/models"
)

const DefaultSchedule = "@every 1m"

type StatsSource interface {
	Stats() dashboard.Stats
}

// Scheduler periodically journals a status snapshot of the dashboard.
type Scheduler struct {
	cron *cron.Cron
	src  StatsSource
	sink dashboard.EventSink
	log  *slog.Logger
}

func NewScheduler(schedule string, src StatsSource, sink dashboard.EventSink) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	s := &Scheduler{
		cron: cron.New(),
		src:  src,
		sink: sink,
		log:  logging.For("report"),
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.Run() }); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("report scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts scheduling and waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("report scheduler stopped")
}

// Run takes one snapshot immediately.
func (s *Scheduler) Run() dashboard.Stats {
	stats := s.src.Stats()
	s.log.Info("status snapshot",
		"total", stats.Total,
		"open", stats.Open,
		"dispatched", stats.Dispatched,
		"resolved", stats.Resolved,
		"units_available", stats.UnitsAvailable,
		"units_total", stats.UnitsTotal,
	)
	if s.sink != nil {
		s.sink.Publish(models.NewEvent(models.EventStatusSnapshot, 0, "", stats))
	}
	return stats
}
