package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
	"github.com/fastygo/droptracker/usecase"
)

// ProgressReader exposes the gamification summary shown next to the profile.
type ProgressReader interface {
	GetProgress(ctx context.Context, userID string) (*domain.ProgressView, error)
}

// Profile combines the stored account with its derived progress.
type Profile struct {
	User     *domain.User         `json:"user"`
	Progress *domain.ProgressView `json:"progress,omitempty"`
}

type UseCase struct {
	users    repository.UserRepository
	progress ProgressReader
	buffer   usecase.OperationBuffer
	logger   *zap.Logger
}

func New(users repository.UserRepository, progress ProgressReader, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		progress: progress,
		buffer:   buffer,
		logger:   logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: user}
	if uc.progress != nil {
		view, err := uc.progress.GetProgress(ctx, userID)
		if err != nil {
			uc.logger.Warn("progress unavailable for profile", zap.String("user_id", userID), zap.Error(err))
		} else {
			profile.Progress = view
		}
	}
	return profile, nil
}

// UpdateProfile applies the user-editable fields. Role and status are owned
// by administrators and are never taken from the request.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID, email string, metadata map[string]string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if email = strings.TrimSpace(email); email != "" {
		user.Email = email
	}
	if metadata != nil {
		user.Metadata = metadata
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil && domain.IsTransient(err) {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return user, nil
		}
		return nil, err
	}
	return user, nil
}
