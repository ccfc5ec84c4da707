package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyOrderCreate = "idem:order:create:%s:%s"
	pendingMarker  = "pending"
)

// Claim outcomes for an idempotency key.
type Claim struct {
	// Acquired is true when the caller owns the key and must Complete or Release it.
	Acquired bool
	// OrderID is set when an earlier request already created the order.
	OrderID int64
}

// InProgress reports a key held by a request that has not finished yet.
func (c Claim) InProgress() bool {
	return !c.Acquired && c.OrderID == 0
}

// RedisStore maps client supplied Idempotency-Key values to created order ids.
// Keys are scoped per order type so the same client key cannot collide across
// the B2C and B2B endpoints.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func (s *RedisStore) Claim(ctx context.Context, scope, key string) (Claim, error) {
	redisKey := fmt.Sprintf(keyOrderCreate, scope, key)

	ok, err := s.client.SetNX(ctx, redisKey, pendingMarker, s.ttl).Result()
	if err != nil {
		return Claim{}, fmt.Errorf("claiming idempotency key: %w", err)
	}
	if ok {
		return Claim{Acquired: true}, nil
	}

	value, err := s.client.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		// Expired or released between SETNX and GET; the next attempt can claim it.
		return Claim{}, nil
	}
	if err != nil {
		return Claim{}, fmt.Errorf("reading idempotency key: %w", err)
	}
	if value == pendingMarker {
		return Claim{}, nil
	}

	orderID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return Claim{}, fmt.Errorf("parsing idempotency value %q: %w", value, err)
	}
	return Claim{OrderID: orderID}, nil
}

func (s *RedisStore) Complete(ctx context.Context, scope, key string, orderID int64) error {
	redisKey := fmt.Sprintf(keyOrderCreate, scope, key)
	if err := s.client.Set(ctx, redisKey, orderID, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing idempotency result: %w", err)
	}
	return nil
}

// Release frees a claimed key after a failed attempt so the client can retry.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	redisKey := fmt.Sprintf(keyOrderCreate, scope, key)
	if err := s.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("releasing idempotency key: %w", err)
	}
	return nil
}

// NopStore grants every claim. Used when Redis is not configured.
type NopStore struct{}

func (NopStore) Claim(context.Context, string, string) (Claim, error) {
	return Claim{Acquired: true}, nil
}

func (NopStore) Complete(context.Context, string, string, int64) error { return nil }

func (NopStore) Release(context.Context, string, string) error { return nil }
