package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

// LoginRecorder advances per-user login state such as streaks.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID string) (domain.Streak, error)
}

// LoginResult is returned to a client that opened a session.
type LoginResult struct {
	Session *domain.Session `json:"session"`
	Streak  domain.Streak   `json:"streak"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logins   LoginRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, logins LoginRecorder, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		logins:   logins,
		logger:   logger,
		now:      time.Now,
	}
}

// Login opens a session for an identity already verified by the identity
// provider. Unknown users are registered on first login.
func (uc *UseCase) Login(ctx context.Context, actor domain.Actor, email string, ttl time.Duration) (*LoginResult, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.users.GetByID(ctx, actor.UserID)
	switch {
	case err == nil:
		if user.Status != "" && !user.IsActive() {
			return nil, domain.NewError(domain.ErrCodeForbidden, "account disabled")
		}
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		user = &domain.User{ID: actor.UserID, Email: email, Role: domain.RoleUser, Status: "active"}
		if err := uc.users.Upsert(ctx, user); err != nil {
			return nil, err
		}
		uc.logger.Info("user registered", zap.String("user_id", user.ID))
	default:
		return nil, err
	}

	session, err := uc.CreateSession(ctx, user, ttl)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Session: session}
	if uc.logins != nil {
		streak, err := uc.logins.RecordLogin(ctx, user.ID)
		if err != nil {
			uc.logger.Error("failed to record login streak", zap.String("user_id", user.ID), zap.Error(err))
		}
		result.Streak = streak
	}
	return result, nil
}

func (uc *UseCase) CreateSession(ctx context.Context, user *domain.User, ttl time.Duration) (*domain.Session, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	session := domain.NewSession(uuid.NewString(), user, uc.now(), ttl)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a live session owned by userID. Expired sessions are
// purged on access.
func (uc *UseCase) GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.OwnedBy(userID) {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired(uc.now()) {
		if err := uc.sessions.Delete(ctx, session); err != nil {
			uc.logger.Warn("failed to purge expired session", zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, userID, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.now().Add(ttl)
	if err := uc.sessions.Extend(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.OwnedBy(userID) {
		return domain.ErrSessionNotFound
	}
	return uc.sessions.Delete(ctx, session)
}

// RevokeAll signs the user out everywhere.
func (uc *UseCase) RevokeAll(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, domain.ErrUnauthorized
	}
	removed, err := uc.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("sessions revoked", zap.String("user_id", userID), zap.Int("count", removed))
	return removed, nil
}
