package bootstrap

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appconfig "github.com/wolfman30/patient-portal/internal/config"
	"github.com/wolfman30/patient-portal/internal/observability/metrics"
	"github.com/wolfman30/patient-portal/internal/session"
	"github.com/wolfman30/patient-portal/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, false))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, false))
}

func TestBuildSessionStoreRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &appconfig.Config{SessionStore: StoreRedis, RedisAddr: mr.Addr(), SessionTTL: time.Hour}
	store, closeFn, err := BuildSessionStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	_, ok := store.(*session.RedisStore)
	require.True(t, ok)

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "sid", session.KeyUser, []byte(`{"usucodigo":"7"}`)))
	assert.True(t, mr.Exists("portal:session:sid:"+session.KeyUser))
}

func TestSessionsExpireUnderDefaultConfig(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	t.Setenv("SESSION_STORE", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("REDIS_ADDR", mr.Addr())

	store, closeFn, err := BuildSessionStore(context.Background(), appconfig.Load(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })

	ctx := context.Background()
	sessions := session.NewManager(store)
	require.NoError(t, sessions.SaveUser(ctx, "sid", session.User{ID: "7"}))
	key := "portal:session:sid:" + session.KeyUser
	assert.Equal(t, appconfig.DefaultSessionTTL, mr.TTL(key))

	mr.FastForward(appconfig.DefaultSessionTTL - time.Hour)
	_, err = sessions.User(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, appconfig.DefaultSessionTTL, mr.TTL(key), "reads restart the expiry")

	mr.FastForward(appconfig.DefaultSessionTTL + time.Second)
	assert.False(t, mr.Exists(key))
	_, err = sessions.User(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestBuildSessionStoreRedisUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, _, err = BuildSessionStore(context.Background(), &appconfig.Config{SessionStore: StoreRedis, RedisAddr: addr}, nil)
	assert.Error(t, err)
}

func TestBuildSessionStoreMemoryAndUnknown(t *testing.T) {
	store, closeFn, err := BuildSessionStore(context.Background(), &appconfig.Config{SessionStore: StoreMemory}, nil)
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	_, ok := store.(*session.MemoryStore)
	assert.True(t, ok)

	_, _, err = BuildSessionStore(context.Background(), &appconfig.Config{SessionStore: "dynamo"}, nil)
	assert.Error(t, err)
}

func TestBuildPortalHandler(t *testing.T) {
	cfg := &appconfig.Config{
		BackendOrigin:    "http://localhost:8081",
		LoginPage:        "login.html",
		RescheduleCutoff: 12 * time.Hour,
		DisplayTimezone:  "UTC",
	}
	h, err := BuildPortalHandler(cfg, session.NewMemoryStore(0), metrics.NewPortalMetrics(prometheus.NewRegistry()), nil)
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestBuildPortalHandlerWarnsOnUnknownTimezone(t *testing.T) {
	var buf bytes.Buffer
	cfg := &appconfig.Config{BackendOrigin: "http://localhost:8081", DisplayTimezone: "Not/AZone"}
	h, err := BuildPortalHandler(cfg, session.NewMemoryStore(0), metrics.NewPortalMetrics(prometheus.NewRegistry()), logging.NewWithWriter(&buf, "info"))
	require.NoError(t, err)
	assert.NotNil(t, h)
	assert.Contains(t, buf.String(), "display timezone unavailable, using UTC")
	assert.Contains(t, buf.String(), "Not/AZone")
}

func TestBuildRateLimiter(t *testing.T) {
	assert.Nil(t, BuildRateLimiter(&appconfig.Config{}))
	rl := BuildRateLimiter(&appconfig.Config{RateLimitRPS: 5})
	require.NotNil(t, rl)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRunRateLimiterJanitorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunRateLimiterJanitor(ctx, BuildRateLimiter(&appconfig.Config{RateLimitRPS: 1}), time.Millisecond, time.Minute, nil)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
