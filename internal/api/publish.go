package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CommitChannelPrefix prefixes the per-project commit channel.
const CommitChannelPrefix = "studio:commits:"

// CommitEvent announces a saved commit.
type CommitEvent struct {
	Project string `json:"project"`
	Seq     uint64 `json:"seq"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Version uint64 `json:"version"`
}

// Publisher announces commits to other processes.
type Publisher interface {
	Publish(ctx context.Context, ev CommitEvent) error
}

// CommitChannel returns the channel commits of projectID are published on.
func CommitChannel(projectID string) string {
	return CommitChannelPrefix + projectID
}

// RedisPublisher publishes commit events with Redis PUBLISH.
type RedisPublisher struct {
	client redis.UniversalClient
}

// NewRedisPublisher returns a publisher on client.
func NewRedisPublisher(client redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends ev as JSON on the project's commit channel.
func (p *RedisPublisher) Publish(ctx context.Context, ev CommitEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, CommitChannel(ev.Project), data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Subscribe listens for commits of projectID until ctx is done. Events that
// fail to decode are skipped.
func (p *RedisPublisher) Subscribe(ctx context.Context, projectID string, fn func(CommitEvent)) error {
	sub := p.client.Subscribe(ctx, CommitChannel(projectID))
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev CommitEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			fn(ev)
		}
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, CommitEvent) error { return nil }
