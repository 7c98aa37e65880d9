package redis

import (
	"context"
	"encoding/json"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

type notificationStore struct {
	client *redislib.Client
	prefix string
}

// NewNotificationStore keeps each user's notification log as one JSON document.
func NewNotificationStore(client *redislib.Client) repository.NotificationStore {
	return &notificationStore{
		client: client,
		prefix: "notifications:",
	}
}

func (s *notificationStore) Load(ctx context.Context, userID string) ([]domain.Notification, error) {
	result, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var items []domain.Notification
	if err := json.Unmarshal(result, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *notificationStore) Save(ctx context.Context, userID string, items []domain.Notification) error {
	if len(items) == 0 {
		return s.client.Del(ctx, s.key(userID)).Err()
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), payload, 0).Err()
}

func (s *notificationStore) key(userID string) string {
	return fmt.Sprintf("%s%s", s.prefix, userID)
}
