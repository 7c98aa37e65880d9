package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/internal/infrastructure/buffer"
	"github.com/fastygo/droptracker/usecase"
)

// BufferBridge lets use cases park writes in the local buffer while
// PostgreSQL is unreachable.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	if operation != usecase.OperationUpdate {
		return fmt.Errorf("profile operation %q cannot be buffered", operation)
	}
	return b.enqueue(ctx, buffer.EntityProfile, operation, user.ID, buffer.PriorityProfile, user)
}

// BufferTask queues a task write. Deletes only carry the identifiers.
func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if task == nil || task.ID == "" || task.UserID == "" {
		return domain.ErrInvalidPayload
	}
	var payload interface{} = task
	switch operation {
	case usecase.OperationCreate, usecase.OperationUpdate:
	case usecase.OperationDelete:
		payload = domain.Task{ID: task.ID, UserID: task.UserID}
	default:
		return fmt.Errorf("task operation %q cannot be buffered", operation)
	}
	return b.enqueue(ctx, buffer.EntityTask, operation, task.UserID, buffer.PriorityTask, payload)
}

func (b *BufferBridge) enqueue(ctx context.Context, entity, operation, userID string, priority int, v interface{}) error {
	if b.processor == nil {
		return fmt.Errorf("offline buffer not configured")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", entity, err)
	}
	return b.processor.BufferOperation(ctx, buffer.Item{
		UserID:    userID,
		Entity:    entity,
		Operation: operation,
		Data:      data,
		Priority:  priority,
	})
}
