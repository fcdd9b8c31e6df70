package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/patient-portal/internal/config"
	"github.com/wolfman30/patient-portal/internal/session"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

// Session store kinds accepted in SESSION_STORE.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSessionStore returns the session store selected by cfg together with a
// close function for its resources.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (session.Store, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() error { return nil }

	switch cfg.SessionStore {
	case StoreMemory:
		logger.Warn("using in-memory session store; sessions are lost on restart")
		return session.NewMemoryStore(cfg.SessionTTL), noop, nil
	case StoreRedis, "":
		client := BuildRedisClient(ctx, cfg, logger, true)
		if client == nil {
			return nil, nil, fmt.Errorf("bootstrap: redis session store unavailable at %q", cfg.RedisAddr)
		}
		logger.Info("redis session store ready", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL.String())
		return session.NewRedisStore(client, cfg.SessionTTL), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown session store %q", cfg.SessionStore)
	}
}
