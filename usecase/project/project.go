package project

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

// Broadcaster fans a notification out to every active user.
type Broadcaster interface {
	Broadcast(ctx context.Context, n domain.Notification) (int, error)
}

// UseCase manages the admin-curated Explorer listing.
type UseCase struct {
	projects    repository.ProjectRepository
	broadcaster Broadcaster
	logger      *zap.Logger
}

func New(projects repository.ProjectRepository, broadcaster Broadcaster, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		projects:    projects,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

func (uc *UseCase) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	return uc.projects.List(ctx, filter)
}

func (uc *UseCase) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return uc.projects.GetByID(ctx, id)
}

// CreateProject stores a new listing and announces it to all users.
func (uc *UseCase) CreateProject(ctx context.Context, actor domain.Actor, project *domain.Project) (*domain.Project, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	project.CreatedBy = actor.UserID

	created, err := uc.projects.Create(ctx, project)
	if err != nil {
		return nil, err
	}

	if uc.broadcaster != nil {
		delivered, err := uc.broadcaster.Broadcast(ctx, domain.ListingNotification(created))
		if err != nil {
			uc.logger.Error("failed to announce new listing", zap.String("project_id", created.ID), zap.Error(err))
		} else {
			uc.logger.Info("new listing announced", zap.String("project_id", created.ID), zap.Int("recipients", delivered))
		}
	}
	return created, nil
}

func (uc *UseCase) UpdateProject(ctx context.Context, actor domain.Actor, project *domain.Project) (*domain.Project, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if project == nil || project.ID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "missing project id")
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	if err := uc.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (uc *UseCase) DeleteProject(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if id == "" {
		return domain.NewError(domain.ErrCodeInvalid, "missing project id")
	}
	return uc.projects.Delete(ctx, id)
}
