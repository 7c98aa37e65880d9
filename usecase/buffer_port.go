package usecase

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}

// Notifier receives one-shot events destined for a user's notification log.
type Notifier interface {
	Notify(ctx context.Context, userID string, n domain.Notification) error
}
