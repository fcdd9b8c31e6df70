package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore keeps session records in Redis so every portal instance sees the same state.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed Store. ttl <= 0 keeps records until deleted.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if rdb == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{
		rdb:    rdb,
		ttl:    ttl,
		tracer: otel.Tracer("patient-portal.internal.session"),
	}
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "session.get", trace.WithAttributes(attribute.String("session.key", key)))
	defer span.End()

	data, err := s.rdb.Get(ctx, recordKey(sid, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: get %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, sid, key string, value []byte) error {
	ctx, span := s.tracer.Start(ctx, "session.set", trace.WithAttributes(attribute.String("session.key", key)))
	defer span.End()

	if err := s.rdb.Set(ctx, recordKey(sid, key), value, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Take(ctx context.Context, sid, key string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "session.take", trace.WithAttributes(attribute.String("session.key", key)))
	defer span.End()

	data, err := s.rdb.GetDel(ctx, recordKey(sid, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: take %s: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "session.delete")
	defer span.End()

	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = recordKey(sid, key)
	}
	if err := s.rdb.Del(ctx, redisKeys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, sid string, keys ...string) error {
	if s.ttl <= 0 || len(keys) == 0 {
		return nil
	}
	ctx, span := s.tracer.Start(ctx, "session.touch")
	defer span.End()

	pipe := s.rdb.Pipeline()
	for _, key := range keys {
		pipe.Expire(ctx, recordKey(sid, key), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: touch: %w", err)
	}
	return nil
}
