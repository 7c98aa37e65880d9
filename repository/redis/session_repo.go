package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/droptracker/domain"
	"github.com/fastygo/droptracker/repository"
)

const (
	sessionKeyPrefix   = "droptracker:session:"
	userSessionsPrefix = "droptracker:user-sessions:"
)

type sessionRepository struct {
	client     *redislib.Client
	defaultTTL time.Duration
}

// NewSessionRepository stores each session as a JSON string whose TTL matches
// its expiry, plus a set of session ids per user.
func NewSessionRepository(client *redislib.Client, defaultTTL time.Duration) repository.SessionRepository {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &sessionRepository{client: client, defaultTTL: defaultTTL}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" || session.UserID == "" {
		return domain.ErrInvalidPayload
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	ttl := session.Remaining(now)
	if ttl <= 0 {
		ttl = r.defaultTTL
		session.ExpiresAt = now.Add(ttl)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	index := userSessionsKey(session.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
		pipe.SAdd(ctx, index, session.ID)
		// The index lives as long as its longest session.
		pipe.ExpireGT(ctx, index, ttl)
		pipe.ExpireNX(ctx, index, ttl)
		return nil
	})
	return err
}

func (r *sessionRepository) Delete(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Del(ctx, sessionKey(session.ID))
		pipe.SRem(ctx, userSessionsKey(session.UserID), session.ID)
		return nil
	})
	return err
}

func (r *sessionRepository) Extend(ctx context.Context, session *domain.Session) error {
	ttl := session.Remaining(time.Now())
	if ttl <= 0 {
		return domain.ErrSessionNotFound
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// SET XX keeps a concurrently revoked session from being resurrected.
	ok, err := r.client.SetXX(ctx, sessionKey(session.ID), payload, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSessionNotFound
	}
	return r.client.ExpireGT(ctx, userSessionsKey(session.UserID), ttl).Err()
}

// DeleteByUser removes every session indexed for userID and returns how many
// were still live.
func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) (int, error) {
	index := userSessionsKey(userID)
	ids, err := r.client.SMembers(ctx, index).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	var removed *redislib.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		removed = pipe.Del(ctx, keys...)
		pipe.Del(ctx, index)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(removed.Val()), nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func userSessionsKey(userID string) string {
	return userSessionsPrefix + userID
}
