package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ONEYTY111/active-break-sub000/internal/engine"
	"github.com/ONEYTY111/active-break-sub000/internal/store"
)

// Scheduler is the host adapter around the decision engine. It stands in for
// the platform's periodic background task: a best-effort ticker that invokes
// the dispatcher once per tick per active user. The engine itself keeps no
// timers and no memory between ticks, so losing or doubling a tick is safe.
type Scheduler struct {
	repo       store.Repo
	dispatcher *engine.Dispatcher
	log        *zap.Logger
	interval   time.Duration
	defaultTZ  string
}

// New creates a scheduler ticking at the given cadence.
func New(repo store.Repo, dispatcher *engine.Dispatcher, log *zap.Logger, interval time.Duration, defaultTZ string) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		repo:       repo,
		dispatcher: dispatcher,
		log:        log,
		interval:   interval,
		defaultTZ:  defaultTZ,
	}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick evaluates every user who has the master switch on and at least one
// enabled rule. A failing user never blocks the rest.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	profiles, err := s.repo.ListActiveProfiles(ctx)
	if err != nil {
		s.log.Error("ListActiveProfiles failed", zap.Error(err))
		return
	}

	for _, p := range profiles {
		localNow := now.In(s.location(p.TZ))
		verdicts := s.dispatcher.RunTick(ctx, p.UserID, localNow)

		fired := 0
		for _, v := range verdicts {
			if v.Fired() {
				fired++
			}
		}
		if fired > 0 {
			s.log.Info("tick fired reminders",
				zap.Int64("user", p.UserID),
				zap.Int("rules", len(verdicts)),
				zap.Int("fired", fired))
		} else {
			s.log.Debug("tick evaluated",
				zap.Int64("user", p.UserID),
				zap.Int("rules", len(verdicts)))
		}
	}
}

// location resolves the user's timezone, falling back to the configured
// default and finally UTC. Window and cadence math runs in wall time.
func (s *Scheduler) location(tz string) *time.Location {
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation(s.defaultTZ); err == nil {
		return loc
	}
	return time.UTC
}
