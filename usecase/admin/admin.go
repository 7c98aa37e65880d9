package admin

import (
	"context"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

type UseCase struct {
	stats repository.StatsRepository
}

func New(stats repository.StatsRepository) *UseCase {
	return &UseCase{stats: stats}
}

func (uc *UseCase) Stats(ctx context.Context, actor domain.Actor) (*domain.Stats, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return uc.stats.Counts(ctx)
}
