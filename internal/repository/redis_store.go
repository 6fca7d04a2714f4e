package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"trip-quote-agent/internal/domain"
)

const defaultRedisPrefix = "tripquote:"

// RedisStore keeps the state and pending quote of a session as two JSON
// strings with a sliding expiry.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("repository: redis client must not be nil")
	}
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (r *RedisStore) stateKey(key string) string {
	return r.prefix + "session:" + key + ":state"
}

func (r *RedisStore) pendingKey(key string) string {
	return r.prefix + "session:" + key + ":pending"
}

func (r *RedisStore) Load(ctx context.Context, key string) (domain.Session, error) {
	if key == "" {
		return domain.Session{}, errEmptyKey
	}
	vals, err := r.rdb.MGet(ctx, r.stateKey(key), r.pendingKey(key)).Result()
	if err != nil {
		return domain.Session{}, fmt.Errorf("repository: Load mget: %w", err)
	}

	s := domain.Session{State: domain.NewConversationState()}
	if raw, ok := vals[0].(string); ok {
		if err := json.Unmarshal([]byte(raw), &s.State); err != nil {
			return domain.Session{}, fmt.Errorf("repository: Load state: %w", err)
		}
	}
	if raw, ok := vals[1].(string); ok {
		var p domain.PendingQuote
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return domain.Session{}, fmt.Errorf("repository: Load pending: %w", err)
		}
		s.Pending = &p
	}
	return s, nil
}

func (r *RedisStore) SaveState(ctx context.Context, key string, state domain.ConversationState) error {
	if err := r.set(ctx, key, r.stateKey(key), state); err != nil {
		return fmt.Errorf("repository: SaveState: %w", err)
	}
	return nil
}

func (r *RedisStore) SavePending(ctx context.Context, key string, pending domain.PendingQuote) error {
	if err := r.set(ctx, key, r.pendingKey(key), pending); err != nil {
		return fmt.Errorf("repository: SavePending: %w", err)
	}
	return nil
}

func (r *RedisStore) DeletePending(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	if err := r.rdb.Del(ctx, r.pendingKey(key)).Err(); err != nil {
		return fmt.Errorf("repository: DeletePending: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	if err := r.rdb.Del(ctx, r.stateKey(key), r.pendingKey(key)).Err(); err != nil {
		return fmt.Errorf("repository: Clear: %w", err)
	}
	return nil
}

// ActiveSessions counts state keys with SCAN so it never blocks the server.
func (r *RedisStore) ActiveSessions(ctx context.Context) (int, error) {
	n := 0
	iter := r.rdb.Scan(ctx, 0, r.prefix+"session:*", 100).Iterator()
	for iter.Next(ctx) {
		if strings.HasSuffix(iter.Val(), ":state") {
			n++
		}
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("repository: ActiveSessions scan: %w", err)
	}
	return n, nil
}

func (r *RedisStore) set(ctx context.Context, key, redisKey string, v any) error {
	if key == "" {
		return errEmptyKey
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// Both keys share one expiry so a session never half-expires.
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, redisKey, data, r.ttl)
	pipe.Expire(ctx, r.stateKey(key), r.ttl)
	pipe.Expire(ctx, r.pendingKey(key), r.ttl)
	_, err = pipe.Exec(ctx)
	return err
}
