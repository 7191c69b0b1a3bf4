package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jky-sys/Screener-3.0/pkg/model"
)

const redisKeyPrefix = "screener:candles:"

// RedisStore keeps candle histories as JSON values with a Redis expiry
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to addr and verifies the connection
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]model.Candle, bool, error) {
	data, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var candles []model.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, false, fmt.Errorf("decoding cached candles for %s: %w", key, err)
	}
	return candles, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, candles []model.Candle, ttl time.Duration) error {
	data, err := json.Marshal(candles)
	if err != nil {
		return fmt.Errorf("encoding candles for %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
