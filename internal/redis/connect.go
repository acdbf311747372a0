package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/generative-ai-agents/arc-agent/internal/retry"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis pings addr until it answers, backing off 1s, 2s, 4s... between
// attempts. It gives up early when ctx ends.
func ConnectRedis(ctx context.Context, addr string, password string, maxRetries int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Password:        password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
	})

	policy := retry.Policy{
		MaxAttempts: maxRetries,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    30 * time.Second,
	}

	always := func(error) bool { return true }
	attempts, err := policy.Do(ctx, always, func(ctx context.Context, attempt int) error {
		log.Info().Int("attempt", attempt).Int("max_retries", maxRetries).Str("addr", addr).Msg("Connecting to Redis")

		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("Redis ping failed")
			return err
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", attempts, err)
	}

	log.Info().Int("attempts_needed", attempts).Msg("Redis connected")
	return client, nil
}
