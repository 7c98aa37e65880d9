package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, user_id, title, url, intensity, timer_type, custom_hours, last_completed_at, created_at, updated_at`

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	ORDER BY created_at DESC, id
	LIMIT $2 OFFSET $3
	`
	// A NULL limit is LIMIT ALL.
	var limit interface{} = repository.PageLimit(filter.Limit)
	offset := repository.PageOffset(filter.Offset)
	if filter.All {
		limit, offset = nil, 0
	}
	rows, err := r.pool.Query(ctx, query, filter.UserID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, url, intensity, timer_type, custom_hours, last_completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.URL,
		string(task.Intensity),
		string(task.TimerType),
		task.CustomHours,
		nullTimePtr(task.LastCompletedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, classify(err, nil, domain.ErrTaskExists)
	}

	return task, nil
}

// Update changes the editable fields. The completion marker is owned by
// SetCompletion and ClearExpired.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		url = $3,
		intensity = $4,
		timer_type = $5,
		custom_hours = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING last_completed_at, created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.URL,
		string(task.Intensity),
		string(task.TimerType),
		task.CustomHours,
	).Scan(&task.LastCompletedAt, &task.CreatedAt, &task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) SetCompletion(ctx context.Context, id string, expected, completedAt *time.Time) (time.Time, error) {
	const query = `
	UPDATE tasks
	SET last_completed_at = $2, updated_at = NOW()
	WHERE id = $1 AND last_completed_at IS NOT DISTINCT FROM $3
	RETURNING updated_at
	`
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, query, id, nullTimePtr(completedAt), nullTimePtr(expected)).Scan(&updatedAt)
	if err == nil {
		return domain.StoredTime(updatedAt), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, err
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return time.Time{}, err
	}
	if !exists {
		return time.Time{}, domain.ErrTaskNotFound
	}
	return time.Time{}, domain.ErrTaskChanged
}

func (r *taskRepository) ClearExpired(ctx context.Context, now time.Time) ([]string, error) {
	const query = `
	UPDATE tasks
	SET last_completed_at = NULL,
		updated_at = NOW()
	WHERE last_completed_at IS NOT NULL
	  AND last_completed_at + make_interval(hours => CASE timer_type
			WHEN '8h' THEN 8
			WHEN '12h' THEN 12
			WHEN '24h' THEN 24
			WHEN 'custom' THEN GREATEST(custom_hours, 0)
			ELSE 0
		END) <= $1
	RETURNING user_id
	`
	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var owners []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		owners = append(owners, userID)
	}
	return owners, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var intensity, timerType string

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.URL,
		&intensity,
		&timerType,
		&task.CustomHours,
		&task.LastCompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Intensity = domain.Intensity(intensity)
	task.TimerType = domain.TimerType(timerType)
	// pgx decodes timestamptz in time.Local.
	if task.LastCompletedAt != nil {
		at := domain.StoredTime(*task.LastCompletedAt)
		task.LastCompletedAt = &at
	}
	task.CreatedAt = domain.StoredTime(task.CreatedAt)
	task.UpdatedAt = domain.StoredTime(task.UpdatedAt)
	return &task, nil
}
