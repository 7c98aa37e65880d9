package repository

import (
	"context"
	"time"

	"github.com/fastygo/droptracker/domain"
)

type TaskFilter struct {
	UserID string
	Limit  int
	Offset int
	// All returns every matching task and ignores Limit and Offset.
	All bool
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
	// SetCompletion replaces the completion marker only while it still equals
	// expected and returns the new update time. A marker changed in the meantime
	// yields domain.ErrTaskChanged.
	SetCompletion(ctx context.Context, id string, expected, completedAt *time.Time) (time.Time, error)
	// ClearExpired resets completion markers whose cooldown ended at or before now
	// and returns the owners of the affected tasks.
	ClearExpired(ctx context.Context, now time.Time) ([]string, error)
}

// TaskPublisher fans out task-list change signals to subscribers.
type TaskPublisher interface {
	Publish(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) (<-chan struct{}, error)
}
