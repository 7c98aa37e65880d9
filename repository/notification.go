package repository

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

// NotificationStore loads and replaces a user's notification log as a whole.
type NotificationStore interface {
	Load(ctx context.Context, userID string) ([]domain.Notification, error)
	Save(ctx context.Context, userID string, items []domain.Notification) error
}
