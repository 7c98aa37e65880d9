package repository

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

// SessionRepository stores login sessions with store-side expiry and keeps
// a per-user index so every session of a user can be revoked at once.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, session *domain.Session) error
	// Extend persists a later ExpiresAt for a session that still exists.
	Extend(ctx context.Context, session *domain.Session) error
	DeleteByUser(ctx context.Context, userID string) (int, error)
}
