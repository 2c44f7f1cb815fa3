package output

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/chrisdamba/pupulse/internal/models"
)

// RedisOutput appends events to one Redis stream per topic, trimmed to
// maxLen entries.
type RedisOutput struct {
	client  *redis.Client
	prefix  string
	maxLen  int64
	timeout time.Duration
}

func NewRedisOutput(cfg models.RedisConfig) (*RedisOutput, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisOutputWithClient(client, cfg.StreamPrefix, cfg.MaxLen), nil
}

func NewRedisOutputWithClient(client *redis.Client, prefix string, maxLen int64) *RedisOutput {
	return &RedisOutput{client: client, prefix: prefix, maxLen: maxLen, timeout: 5 * time.Second}
}

func (r *RedisOutput) stream(topic string) string {
	if r.prefix == "" {
		return topic
	}
	return r.prefix + ":" + topic
}

func (r *RedisOutput) WriteMessage(topic string, msg []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: r.stream(topic),
		MaxLen: r.maxLen,
		Values: map[string]interface{}{
			"key":     messageKey(msg),
			"payload": string(msg),
		},
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", args.Stream, err)
	}
	return nil
}

func (r *RedisOutput) Close() error {
	return r.client.Close()
}
