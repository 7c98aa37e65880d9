package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
	"github.com/fastygo/droptracker/usecase"
)

// CompletionRecorder is notified whenever a completion marker is set or undone.
type CompletionRecorder interface {
	RecordCompletion(ctx context.Context, userID string, delta int) (domain.Level, error)
}

type UseCase struct {
	tasks     repository.TaskRepository
	publisher repository.TaskPublisher
	buffer    usecase.OperationBuffer
	progress  CompletionRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func New(
	tasks repository.TaskRepository,
	publisher repository.TaskPublisher,
	buffer usecase.OperationBuffer,
	progress CompletionRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:     tasks,
		publisher: publisher,
		buffer:    buffer,
		progress:  progress,
		logger:    logger,
		now:       time.Now,
	}
}

// ListTasks returns the user's tasks with their timer state evaluated at the
// current instant. Stale completion markers are reported as due but left for
// the expiry sweep to clear.
func (uc *UseCase) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskView, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	views := make([]domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, domain.NewTaskView(t, now))
	}
	return views, nil
}

func (uc *UseCase) GetTask(ctx context.Context, userID, id string) (*domain.TaskView, error) {
	task, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	view := domain.NewTaskView(*task, uc.now())
	return &view, nil
}

func (uc *UseCase) CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	task.LastCompletedAt = nil
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if domain.IsTransient(err) && uc.shouldBuffer(ctx, usecase.OperationCreate, task) {
			return task, nil
		}
		return nil, err
	}
	uc.publish(ctx, created.UserID)
	return created, nil
}

func (uc *UseCase) UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := uc.owned(ctx, task.UserID, task.ID); err != nil {
		return nil, err
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if domain.IsTransient(err) && uc.shouldBuffer(ctx, usecase.OperationUpdate, task) {
			return task, nil
		}
		return nil, err
	}
	uc.publish(ctx, task.UserID)
	return task, nil
}

func (uc *UseCase) DeleteTask(ctx context.Context, userID, id string) error {
	if _, err := uc.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		task := &domain.Task{ID: id, UserID: userID}
		if domain.IsTransient(err) && uc.shouldBuffer(ctx, usecase.OperationDelete, task) {
			return nil
		}
		return err
	}
	uc.publish(ctx, userID)
	return nil
}

// ToggleCompletion marks an active task as not completed, or completes a due
// one. Completions feed the leveling counter. The write is conditional on the
// marker that was read, so concurrent toggles of one task count once.
func (uc *UseCase) ToggleCompletion(ctx context.Context, userID, id string) (*domain.TaskView, error) {
	task, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	delta := 1
	var completedAt *time.Time
	if task.Active(now) {
		delta = -1
	} else {
		stamp := domain.StoredTime(now)
		completedAt = &stamp
	}

	updatedAt, err := uc.tasks.SetCompletion(ctx, id, task.LastCompletedAt, completedAt)
	if err != nil {
		if errors.Is(err, domain.ErrTaskChanged) {
			uc.logger.Debug("toggle lost a race, returning current state", zap.String("task_id", id))
			return uc.GetTask(ctx, userID, id)
		}
		return nil, err
	}
	task.LastCompletedAt = completedAt
	task.UpdatedAt = updatedAt

	if uc.progress != nil {
		if _, err := uc.progress.RecordCompletion(ctx, userID, delta); err != nil {
			uc.logger.Error("failed to record completion", zap.String("task_id", id), zap.Error(err))
		}
	}

	uc.publish(ctx, userID)
	view := domain.NewTaskView(*task, now)
	return &view, nil
}

// SweepExpired clears completion markers whose cooldown has elapsed and
// signals every affected user so their subscribers receive a fresh snapshot.
func (uc *UseCase) SweepExpired(ctx context.Context) (int, error) {
	owners, err := uc.tasks.ClearExpired(ctx, uc.now())
	if err != nil {
		return 0, err
	}
	for _, userID := range owners {
		uc.publish(ctx, userID)
	}
	return len(owners), nil
}

// Subscribe streams full task-list snapshots for a user: one immediately, then
// one after every change signal. The channel closes when ctx is done.
func (uc *UseCase) Subscribe(ctx context.Context, userID string) (<-chan domain.TaskSnapshot, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if uc.publisher == nil {
		return nil, domain.NewError(domain.ErrCodeInternal, "task subscriptions unavailable")
	}
	signals, err := uc.publisher.Subscribe(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan domain.TaskSnapshot, 1)
	go func() {
		defer close(out)
		if !uc.emitSnapshot(ctx, userID, out) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				if !uc.emitSnapshot(ctx, userID, out) {
					return
				}
			}
		}
	}()
	return out, nil
}

func (uc *UseCase) emitSnapshot(ctx context.Context, userID string, out chan<- domain.TaskSnapshot) bool {
	views, err := uc.ListTasks(ctx, repository.TaskFilter{UserID: userID, All: true})
	if err != nil {
		uc.logger.Warn("snapshot load failed", zap.String("user_id", userID), zap.Error(err))
		return ctx.Err() == nil
	}
	snapshot := domain.TaskSnapshot{UserID: userID, Tasks: views, At: uc.now()}
	select {
	case out <- snapshot:
		return true
	case <-ctx.Done():
		return false
	}
}

func (uc *UseCase) owned(ctx context.Context, userID, id string) (*domain.Task, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	if id == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "missing task id")
	}
	task, err := uc.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (uc *UseCase) publish(ctx context.Context, userID string) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, userID); err != nil {
		uc.logger.Warn("failed to publish task change", zap.String("user_id", userID), zap.Error(err))
	}
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered", zap.String("operation", operation))
	return true
}
