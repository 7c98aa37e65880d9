package redis

import (
	"context"
	"fmt"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/droptracker/repository"
)

type taskPublisher struct {
	client *redislib.Client
	prefix string
}

// NewTaskPublisher signals task-list changes over Redis pub/sub so every
// instance can push fresh snapshots to its subscribers.
func NewTaskPublisher(client *redislib.Client) repository.TaskPublisher {
	return &taskPublisher{
		client: client,
		prefix: "tasks:",
	}
}

func (p *taskPublisher) Publish(ctx context.Context, userID string) error {
	return p.client.Publish(ctx, p.channel(userID), "changed").Err()
}

// Subscribe delivers a signal per published change until ctx is done.
// Signals are coalesced when the consumer lags behind.
func (p *taskPublisher) Subscribe(ctx context.Context, userID string) (<-chan struct{}, error) {
	sub := p.client.Subscribe(ctx, p.channel(userID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (p *taskPublisher) channel(userID string) string {
	return fmt.Sprintf("%s%s", p.prefix, userID)
}
