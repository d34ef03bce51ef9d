// Package jobs wires periodic background work to the cron scheduler.
package jobs

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"moneymap/internal/logger"
	"moneymap/internal/services"
)

// AlertScheduler runs the budget alert check on a cron schedule. The check
// itself is safe to overlap with on-demand API evaluations: the budget
// cooldown is claimed with a conditional update, so a tick racing a request
// fires each alert at most once.
type AlertScheduler struct {
	alerts   services.AlertServicer
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

// NewAlertScheduler creates a scheduler for the given cron expression
// (standard five-field syntax, e.g. "0 0 * * *" for daily at midnight).
func NewAlertScheduler(alerts services.AlertServicer, schedule string) *AlertScheduler {
	return &AlertScheduler{
		alerts:   alerts,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the job and starts the cron loop.
func (s *AlertScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule budget alert check: %w", err)
	}

	s.cron.Start()
	s.running = true
	logger.Get().Infow("budget alert scheduler started", "schedule", s.schedule)
	return nil
}

func (s *AlertScheduler) run() {
	logger.Get().Info("starting scheduled budget alert check")
	s.alerts.RunDailyCheck()
}

// Stop stops the scheduler and waits for a running check to finish.
func (s *AlertScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	logger.Get().Info("budget alert scheduler stopped")
}
