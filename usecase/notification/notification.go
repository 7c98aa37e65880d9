package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
	"github.com/fastygo/droptracker/usecase"
)

// UseCase owns the bounded per-user notification logs. Every mutation loads
// the log, applies the change and persists the result before returning.
type UseCase struct {
	store  repository.NotificationStore
	users  repository.UserRepository
	cap    int
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*userLock
}

// userLock serializes writes to one user's log. The entry lives only while
// refs is positive.
type userLock struct {
	mu   sync.Mutex
	refs int
}

func New(store repository.NotificationStore, users repository.UserRepository, capacity int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if capacity <= 0 {
		capacity = domain.DefaultNotificationCap
	}
	return &UseCase{
		store:  store,
		users:  users,
		cap:    capacity,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*userLock),
	}
}

var _ usecase.Notifier = (*UseCase)(nil)

// Notify appends an event to the user's log.
func (uc *UseCase) Notify(ctx context.Context, userID string, n domain.Notification) error {
	var appended domain.Notification
	err := uc.mutate(ctx, userID, func(log *domain.NotificationLog) error {
		appended = log.Append(n, uc.now())
		return nil
	})
	if err != nil {
		return err
	}
	uc.logger.Debug("notification appended",
		zap.String("user_id", userID),
		zap.String("type", string(appended.Type)),
		zap.String("notification_id", appended.ID))
	return nil
}

// Broadcast appends the same event to every active user's log. Failures for
// individual users are logged and do not stop the fan-out.
func (uc *UseCase) Broadcast(ctx context.Context, n domain.Notification) (int, error) {
	if uc.users == nil {
		return 0, nil
	}
	ids, err := uc.users.ListActiveIDs(ctx)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, id := range ids {
		if err := uc.Notify(ctx, id, n); err != nil {
			uc.logger.Warn("broadcast delivery failed", zap.String("user_id", id), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered, nil
}

func (uc *UseCase) List(ctx context.Context, userID string) (*domain.NotificationLog, error) {
	items, err := uc.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewNotificationLog(items, uc.cap), nil
}

func (uc *UseCase) MarkRead(ctx context.Context, userID, id string) error {
	return uc.mutate(ctx, userID, func(log *domain.NotificationLog) error {
		if !log.MarkRead(id) {
			return domain.ErrNotificationNotFound
		}
		return nil
	})
}

func (uc *UseCase) MarkAllRead(ctx context.Context, userID string) error {
	return uc.mutate(ctx, userID, func(log *domain.NotificationLog) error {
		log.MarkAllRead()
		return nil
	})
}

func (uc *UseCase) Remove(ctx context.Context, userID, id string) error {
	return uc.mutate(ctx, userID, func(log *domain.NotificationLog) error {
		if !log.Remove(id) {
			return domain.ErrNotificationNotFound
		}
		return nil
	})
}

func (uc *UseCase) Clear(ctx context.Context, userID string) error {
	return uc.mutate(ctx, userID, func(log *domain.NotificationLog) error {
		log.Clear()
		return nil
	})
}

func (uc *UseCase) mutate(ctx context.Context, userID string, fn func(log *domain.NotificationLog) error) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	unlock := uc.lock(userID)
	defer unlock()

	items, err := uc.store.Load(ctx, userID)
	if err != nil {
		return err
	}
	log := domain.NewNotificationLog(items, uc.cap)
	if err := fn(log); err != nil {
		return err
	}
	return uc.store.Save(ctx, userID, log.Items)
}

func (uc *UseCase) lock(userID string) func() {
	uc.mu.Lock()
	entry, ok := uc.locks[userID]
	if !ok {
		entry = &userLock{}
		uc.locks[userID] = entry
	}
	entry.refs++
	uc.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		uc.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(uc.locks, userID)
		}
		uc.mu.Unlock()
	}
}
