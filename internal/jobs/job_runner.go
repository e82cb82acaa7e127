package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"munlink-backend/internal/config"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/metrics"
	"munlink-backend/internal/service"
)

const (
	JobExpireSpecialStatuses = "expire-special-statuses"
	JobRemindPendingUploads  = "remind-pending-uploads"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	services *Services
	config   *config.Config
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	SpecialStatuses service.SpecialStatusService
	Notifications   service.NotificationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, services *Services, cfg *config.Config, m *metrics.Metrics) *JobRunner {
	return &JobRunner{
		db:       db,
		services: services,
		config:   cfg,
		metrics:  m,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery. A panic is
// reported as the job's error.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) (err error) {
	ctx := logger.WithAttrs(context.Background(), "job", jobName)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorContext(ctx, "Job panicked", "panic", r)
			err = fmt.Errorf("job %s panicked: %v", jobName, r)
		}
		jr.metrics.IncrementJobRun(jobName, err)
	}()

	logger.InfoContext(ctx, "Starting job")
	if err = jobFunc(ctx); err != nil {
		logger.ErrorContext(ctx, "Job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	logger.InfoContext(ctx, "Job completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Run executes one job by name; "all" runs every job in order.
func (jr *JobRunner) Run(name string) error {
	switch name {
	case JobExpireSpecialStatuses:
		return jr.ExpireSpecialStatuses()
	case JobRemindPendingUploads:
		return jr.RemindPendingUploads()
	case "all":
		return jr.RunAll()
	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

// RunAll runs all jobs (for manual execution)
func (jr *JobRunner) RunAll() error {
	var firstErr error
	for _, run := range []func() error{jr.ExpireSpecialStatuses, jr.RemindPendingUploads} {
		if err := run(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
