package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExpirySweep clears elapsed completion markers and returns how many users
// were affected.
type ExpirySweep interface {
	SweepExpired(ctx context.Context) (int, error)
}

// SweepRecorder is told when a sweep finishes.
type SweepRecorder interface {
	MarkSweep(at time.Time)
}

// ExpirySweeper periodically resets tasks whose cooldown has ended, so reads
// never have to mutate state.
type ExpirySweeper struct {
	sweep    ExpirySweep
	recorder SweepRecorder
	monitor  ConnectionHealth
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewExpirySweeper(sweep ExpirySweep, monitor ConnectionHealth, recorder SweepRecorder, interval time.Duration, logger *zap.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExpirySweeper{
		sweep:    sweep,
		recorder: recorder,
		monitor:  monitor,
		interval: interval,
		logger:   logger,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}

	schedule := everySpec(interval)
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()
		if err := s.Run(ctx); err != nil {
			s.logger.Error("expiry sweep failed", zap.Error(err))
		}
	}); err != nil {
		s.logger.Error("invalid expiry sweep schedule", zap.String("schedule", schedule), zap.Error(err))
	}
	return s
}

func (s *ExpirySweeper) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
}

func (s *ExpirySweeper) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("expiry sweeper stopped")
}

// Run performs one sweep. It is a no-op while primary storage is offline.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Debug("skipping expiry sweep (offline)")
		return nil
	}
	affected, err := s.sweep.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if s.recorder != nil {
		s.recorder.MarkSweep(time.Now())
	}
	if affected > 0 {
		s.logger.Info("expired completions cleared", zap.Int("users", affected))
	}
	return nil
}
