package entitlements

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the expiry sweep four times an hour
const DefaultSweepSchedule = "@every 15m"

const sweepTimeout = 2 * time.Minute

// Sweeper periodically deactivates lapsed entitlements
type Sweeper struct {
	ctx      context.Context
	cron     *cron.Cron
	svc      Service
	log      *slog.Logger
	schedule string
}

// NewSweeper creates a sweeper; ctx bounds every run
func NewSweeper(ctx context.Context, svc Service, schedule string, log *slog.Logger) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{
		ctx:      ctx,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		svc:      svc,
		log:      log,
		schedule: schedule,
	}
}

// Start registers the sweep and starts the scheduler
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops scheduling and waits for a running sweep to finish
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(s.ctx, sweepTimeout)
	defer cancel()

	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Sweeper context is done", "error", ctx.Err())
		return
	}

	n, err := s.svc.SweepExpired(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to sweep expired entitlements", "error", err)
		return
	}
	if n > 0 {
		s.log.InfoContext(ctx, "Expired entitlements deactivated", "count", n)
	}
}
