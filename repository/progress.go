package repository

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

// ProgressRepository persists per-user gamification state. Get returns a zero
// record for users that have none yet.
type ProgressRepository interface {
	Get(ctx context.Context, userID string) (*domain.Progress, error)
	// AdjustCompleted atomically adds delta to the completed counter, never
	// going below zero, and returns the new value.
	AdjustCompleted(ctx context.Context, userID string, delta int) (int, error)
	// ClaimTier records tier as the last announced tier. It returns the tier
	// announced before and whether the stored value changed.
	ClaimTier(ctx context.Context, userID string, tier int) (int, bool, error)
	SaveStreak(ctx context.Context, userID string, streak domain.Streak) error
}
