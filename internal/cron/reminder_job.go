package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/batcom-app/batcom-backend/internal/notify"
	"github.com/batcom-app/batcom-backend/pkg/logger"
)

// Counter keys roll over daily; the TTL only has to outlive the day they
// describe.
const sweepCounterTTL = 48 * time.Hour

// sweepCounter is the slice of the redis client used to count sweep runs.
type sweepCounter interface {
	CounterKey(name string) string
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// ReminderJob triggers the unpaid-order reminder sweep. The sweep itself
// enforces the local-time window, so the job can run on any cadence and only
// the in-window cycles produce a chat message.
type ReminderJob struct {
	notify  notify.Service
	counter sweepCounter
	logg    *logger.Logger
	now     func() time.Time
}

// NewReminderJob wires the reminder sweep job. The counter is optional; runs
// are simply not counted without one.
func NewReminderJob(svc notify.Service, counter sweepCounter, logg *logger.Logger) (*ReminderJob, error) {
	if svc == nil {
		return nil, errors.New("notify service required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &ReminderJob{notify: svc, counter: counter, logg: logg, now: time.Now}, nil
}

// Name identifies the job in logs and metrics.
func (j *ReminderJob) Name() string { return "unpaid_reminder_sweep" }

// Run executes one sweep.
func (j *ReminderJob) Run(ctx context.Context) error {
	now := j.now()

	if j.counter != nil {
		key := j.counter.CounterKey("reminder-sweeps:" + now.Format("2006-01-02"))
		if n, err := j.counter.IncrWithTTL(ctx, key, sweepCounterTTL); err != nil {
			j.logg.Warn(ctx, "sweep counter unavailable: "+err.Error())
		} else {
			ctx = j.logg.WithField(ctx, "sweepRun", n)
		}
	}

	result, err := j.notify.Sweep(ctx, now)
	if err != nil {
		return fmt.Errorf("reminder sweep: %w", err)
	}
	if !result.Sent {
		j.logg.Info(ctx, "reminder sweep skipped: "+result.Reason)
		return nil
	}
	j.logg.Info(ctx, fmt.Sprintf("reminder sent covering %d users", result.Users))
	return nil
}
