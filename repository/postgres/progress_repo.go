package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

type progressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository returns a Postgres-backed ProgressRepository.
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &progressRepository{pool: pool}
}

func (r *progressRepository) Get(ctx context.Context, userID string) (*domain.Progress, error) {
	const query = `
	SELECT completed_count, notified_tier, streak_current, streak_longest, last_login_at, milestones, updated_at
	FROM user_progress
	WHERE user_id = $1
	`
	progress := &domain.Progress{UserID: userID}
	var (
		lastLogin  *time.Time
		milestones []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&progress.CompletedCount,
		&progress.NotifiedTier,
		&progress.Streak.Current,
		&progress.Streak.Longest,
		&lastLogin,
		&milestones,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return progress, nil
		}
		return nil, err
	}

	progress.Streak.LastLoginDate = lastLogin
	if progress.Streak.Milestones, err = decodeInts(milestones); err != nil {
		return nil, err
	}
	return progress, nil
}

func (r *progressRepository) AdjustCompleted(ctx context.Context, userID string, delta int) (int, error) {
	const query = `
	INSERT INTO user_progress (user_id, completed_count, updated_at)
	VALUES ($1, GREATEST($2, 0), NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET completed_count = GREATEST(user_progress.completed_count + $2, 0),
		updated_at = NOW()
	RETURNING completed_count
	`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID, delta).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *progressRepository) ClaimTier(ctx context.Context, userID string, tier int) (int, bool, error) {
	const query = `
	WITH prev AS (
		SELECT notified_tier FROM user_progress WHERE user_id = $1 FOR UPDATE
	)
	UPDATE user_progress
	SET notified_tier = $2,
		updated_at = NOW()
	FROM prev
	WHERE user_progress.user_id = $1
	  AND prev.notified_tier <> $2
	RETURNING prev.notified_tier
	`
	var previous int
	err := r.pool.QueryRow(ctx, query, userID, tier).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tier, false, nil
		}
		return 0, false, err
	}
	return previous, true, nil
}

func (r *progressRepository) SaveStreak(ctx context.Context, userID string, streak domain.Streak) error {
	const query = `
	INSERT INTO user_progress (user_id, streak_current, streak_longest, last_login_at, milestones, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (user_id) DO UPDATE
	SET streak_current = EXCLUDED.streak_current,
		streak_longest = EXCLUDED.streak_longest,
		last_login_at = EXCLUDED.last_login_at,
		milestones = EXCLUDED.milestones,
		updated_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		userID,
		streak.Current,
		streak.Longest,
		nullTimePtr(streak.LastLoginDate),
		marshalInts(streak.Milestones),
	)
	return err
}
