package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"tour-service/internal/config"
)

// RedisService caches aggregation results. A nil client disables it:
// reads miss and writes are dropped.
type RedisService struct {
	client *redis.Client
}

func NewRedisService(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) *RedisService {
	if !cfg.RedisEnabled() {
		logger.Info().Msg("redis not configured, cache disabled")
		return &RedisService{}
	}

	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			logger.Warn().Err(err).Msg("invalid REDIS_URL, cache disabled")
			return &RedisService{}
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis connection failed, cache disabled")
		_ = client.Close()
		return &RedisService{}
	}

	logger.Info().Str("addr", opts.Addr).Msg("connected to redis")
	return NewRedisServiceWithClient(client)
}

// NewRedisServiceWithClient wraps an existing client.
func NewRedisServiceWithClient(client *redis.Client) *RedisService {
	return &RedisService{client: client}
}

func (r *RedisService) Enabled() bool {
	return r.client != nil
}

func (r *RedisService) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	if r.client == nil {
		return false, nil
	}
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisService) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// DeletePrefix removes every key starting with prefix.
func (r *RedisService) DeletePrefix(ctx context.Context, prefix string) error {
	if r.client == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *RedisService) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
