package shadowmonitor

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/contentforge/conditioncore/internal/infrastructure/logger"
)

// tickTimeout bounds a single scheduled run. At 15s per check a full
// tickBatchLimit pass can take longer than this; RunTick then stops at the
// deadline and the unchecked entries stay due for the next tick.
const tickTimeout = 10 * time.Minute

// Ticker is anything the scheduler can invoke on a cron cadence. Both the
// Shadow Monitor (C11) and the Audit Engine (C12) implement it so they can
// share one cron instance, the way the teacher's CronScheduler runs every
// trigger off a single *cron.Cron (internal/application/trigger/cron_scheduler.go).
type Ticker interface {
	RunTick(ctx context.Context) error
}

// Scheduler drives one or more Tickers off fixed cron expressions.
type Scheduler struct {
	cron *cron.Cron
	log  *logger.Logger
}

// NewScheduler builds a Scheduler with second-precision UTC cron, matching
// the teacher's CronScheduler construction.
func NewScheduler(log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		log:  log,
	}
}

// Register schedules ticker to run on spec (6-field cron expression with a
// leading seconds field, e.g. "0 0 * * * *", or a descriptor such as
// "@every 15m"). name is used only for logging.
func (s *Scheduler) Register(name, spec string, ticker Ticker) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()
		if err := ticker.RunTick(ctx); err != nil {
			s.log.Error("scheduled tick failed", "job", name, "error", err)
		}
	})
	return err
}

// Start starts the cron loop in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler, waiting for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
