package queue

import (
	"context"
	"fmt"
	"time"

	"snippetbox/internal/platform/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingTimeout = 3 * time.Second

// ConnectRedis builds the client shared by the directory cache and the
// notification queue, and checks that the server answers.
func ConnectRedis(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := Ping(ctx, rdb); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")
	return rdb, nil
}

func Ping(ctx context.Context, rdb *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to Redis: %w", err)
	}
	return nil
}

func CloseRedis(rdb *redis.Client, log zerolog.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("closing redis")
		return
	}
	log.Info().Msg("redis connection closed")
}
