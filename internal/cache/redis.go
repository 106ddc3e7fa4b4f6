package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingPrefix = "carrental:pending-order:"
	claimPrefix   = "carrental:claim:"
)

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// RedisPendingOrders shares pending orders between instances.
type RedisPendingOrders struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPendingOrders(rdb *redis.Client, ttl time.Duration) *RedisPendingOrders {
	return &RedisPendingOrders{rdb: rdb, ttl: ttl}
}

func (s *RedisPendingOrders) Put(ctx context.Context, sessionID string, orderID uint64) error {
	return s.rdb.Set(ctx, pendingPrefix+sessionID, strconv.FormatUint(orderID, 10), s.ttl).Err()
}

func (s *RedisPendingOrders) Get(ctx context.Context, sessionID string) (uint64, bool, error) {
	raw, err := s.rdb.Get(ctx, pendingPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *RedisPendingOrders) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, pendingPrefix+sessionID).Err()
}

// RedisClaimSet makes auto-cancel claims visible to every instance.
type RedisClaimSet struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClaimSet(rdb *redis.Client, ttl time.Duration) *RedisClaimSet {
	return &RedisClaimSet{rdb: rdb, ttl: ttl}
}

func (c *RedisClaimSet) Claim(ctx context.Context, key string) (bool, error) {
	return c.rdb.SetNX(ctx, claimPrefix+key, 1, c.ttl).Result()
}

func (c *RedisClaimSet) Release(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, claimPrefix+key).Err()
}
