package repository

import (
	"context"

	"github.com/fastygo/droptracker/domain"
)

type ProjectFilter struct {
	Category string
	Status   string
	Featured bool
	Limit    int
	Offset   int
}

type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error
}
