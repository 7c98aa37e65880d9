package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

type contactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) repository.ContactRepository {
	return &contactRepository{pool: pool}
}

func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	if msg == nil {
		return domain.ErrInvalidPayload
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO contact_messages (id, name, email, subject, message, remote_ip)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	return r.pool.QueryRow(ctx, query,
		msg.ID,
		msg.Name,
		msg.Email,
		msg.Subject,
		msg.Message,
		msg.RemoteIP,
	).Scan(&msg.CreatedAt)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository returns the admin dashboard counters backed by count queries.
func NewStatsRepository(pool *pgxpool.Pool) repository.StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Counts(ctx context.Context) (*domain.Stats, error) {
	const query = `
	SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM tasks),
		(SELECT COUNT(*) FROM tasks WHERE last_completed_at IS NOT NULL),
		(SELECT COUNT(*) FROM projects),
		(SELECT COUNT(*) FROM contact_messages)
	`
	stats := &domain.Stats{GeneratedAt: time.Now().UTC()}
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.Users,
		&stats.Tasks,
		&stats.ActiveTasks,
		&stats.Projects,
		&stats.ContactMessages,
	); err != nil {
		return nil, err
	}
	return stats, nil
}
