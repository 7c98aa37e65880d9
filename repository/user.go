package repository

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

// UserRepository persists accounts mirrored from the identity provider.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	// ListActiveIDs returns every user eligible for broadcast notifications.
	ListActiveIDs(ctx context.Context) ([]string, error)
}
