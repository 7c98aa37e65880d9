package progress

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
	"github.com/fastygo/droptracker/usecase"
)

// UseCase derives levels and streaks and announces threshold crossings
// through the notifier exactly once per crossing.
type UseCase struct {
	repo     repository.ProgressRepository
	notifier usecase.Notifier
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func New(repo repository.ProgressRepository, notifier usecase.Notifier, loc *time.Location, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{
		repo:     repo,
		notifier: notifier,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

func (uc *UseCase) GetProgress(ctx context.Context, userID string) (*domain.ProgressView, error) {
	progress, err := uc.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := progress.View()
	return &view, nil
}

// RecordCompletion adjusts the completed counter by delta (+1 on completion,
// -1 when a completion is undone) and announces a tier change if one happened.
func (uc *UseCase) RecordCompletion(ctx context.Context, userID string, delta int) (domain.Level, error) {
	count, err := uc.repo.AdjustCompleted(ctx, userID, delta)
	if err != nil {
		return domain.Level{}, err
	}
	level := domain.LevelFor(count)

	previous, claimed, err := uc.repo.ClaimTier(ctx, userID, level.Tier.Index)
	if err != nil {
		return level, err
	}
	if !claimed {
		return level, nil
	}

	change := domain.TierChange{Previous: tierAt(previous), Current: level.Tier}
	uc.logger.Info("tier changed",
		zap.String("user_id", userID),
		zap.String("previous", change.Previous.Name),
		zap.String("current", change.Current.Name),
		zap.Int("count", count))
	uc.notify(ctx, userID, domain.TierNotification(change))
	return level, nil
}

// RecordLogin advances the login streak and announces new milestones.
func (uc *UseCase) RecordLogin(ctx context.Context, userID string) (domain.Streak, error) {
	progress, err := uc.repo.Get(ctx, userID)
	if err != nil {
		return domain.Streak{}, err
	}

	next, reached := progress.Streak.Advance(uc.now(), uc.loc)
	if progress.Streak.LastLoginDate != nil && next.LastLoginDate == progress.Streak.LastLoginDate {
		return next, nil
	}
	if err := uc.repo.SaveStreak(ctx, userID, next); err != nil {
		return progress.Streak, err
	}

	for _, days := range reached {
		uc.logger.Info("streak milestone reached", zap.String("user_id", userID), zap.Int("days", days))
		uc.notify(ctx, userID, domain.StreakNotification(days))
	}
	return next, nil
}

func (uc *UseCase) notify(ctx context.Context, userID string, n domain.Notification) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.Notify(ctx, userID, n); err != nil {
		uc.logger.Error("failed to record notification",
			zap.String("user_id", userID),
			zap.String("type", string(n.Type)),
			zap.Error(err))
	}
}

func tierAt(index int) domain.Tier {
	table := domain.Tiers()
	if index < 0 {
		return table[0]
	}
	if index >= len(table) {
		return table[len(table)-1]
	}
	return table[index]
}
