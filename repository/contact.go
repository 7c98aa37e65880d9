package repository

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
}

type StatsRepository interface {
	Counts(ctx context.Context) (*domain.Stats, error)
}
