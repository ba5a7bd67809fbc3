// Package scheduler runs the daily report job.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vivabem/vivabem-server/internal/consent"
	"github.com/vivabem/vivabem-server/internal/report"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
)

// Runner schedules daily report generation for every consented user
type Runner struct {
	cron    *cron.Cron
	store   *store.Store
	reports *report.Service
	consent *consent.Service
	logger  *zap.Logger
	spec    string
	running bool
	mu      sync.Mutex
}

// NewRunner creates a new scheduler runner
func NewRunner(spec string, st *store.Store, reports *report.Service, cs *consent.Service, logger *zap.Logger) *Runner {
	if spec == "" {
		spec = "0 7 * * *"
	}
	return &Runner{
		cron:    cron.New(),
		store:   st,
		reports: reports,
		consent: cs,
		logger:  logger.Named("scheduler"),
		spec:    spec,
	}
}

// Start registers the daily job and starts the cron loop
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := r.cron.AddFunc(r.spec, r.runDailyReports); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", r.spec, err)
	}

	r.cron.Start()
	r.running = true
	r.logger.Info("Scheduler started", zap.String("spec", r.spec))
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Scheduler stopped")
}

// runDailyReports generates yesterday's closed day for every user that
// currently passes the consent gate; the report service's notifier handles
// the actual e-mail.
func (r *Runner) runDailyReports() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	day := time.Now().AddDate(0, 0, -1)

	users, err := r.store.ListUsers()
	if err != nil {
		r.logger.Error("Failed to list users for daily reports", zap.Error(err))
		return
	}

	generated := 0
	for _, user := range users {
		if ctx.Err() != nil {
			r.logger.Warn("Daily report run aborted", zap.Error(ctx.Err()))
			return
		}

		_, ok, err := r.consent.Authorized(ctx, user.ID)
		if err != nil {
			r.logger.Warn("Consent check failed during daily run",
				zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}

		if _, err := r.reports.GenerateDaily(ctx, user.ID, day); err != nil {
			r.logger.Warn("Daily report failed",
				zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		generated++
	}

	r.logger.Info("Daily report run completed",
		zap.Int("users", len(users)),
		zap.Int("generated", generated),
	)
}
