package scheduler

import (
	"fmt"

	"github.com/robfig/cron"

	"github.com/openshelf/openshelf-backend/internal/platform/logger"
)

// Scheduler owns the process's cron timers. Jobs register a callable body;
// lifecycle (Start/Stop) belongs to main.
type Scheduler struct {
	log  *logger.Logger
	cron *cron.Cron
}

func New(baseLog *logger.Logger) *Scheduler {
	return &Scheduler{
		log:  baseLog.With("component", "Scheduler"),
		cron: cron.New(),
	}
}

// AddJob registers job under a six-field cron spec (seconds first).
func (s *Scheduler) AddJob(spec, name string, job func()) error {
	if err := s.cron.AddFunc(spec, job); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.log.Info("job scheduled", "job", name, "cron", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("scheduler stopped")
}
