package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(s *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	s.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestStartRequiresConfiguration(t *testing.T) {
	r := newRouter(NewGoogleService("", "", "", "", nil, nil))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStartRedirectsWithState(t *testing.T) {
	states := NewMemoryStateStore()
	s := NewGoogleService("client", "secret", "http://localhost/callback", "http://localhost/ui", nil, states)
	r := newRouter(s)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))

	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	ctx := context.Background()
	ok, err := states.Consume(ctx, state)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = states.Consume(ctx, state)
	require.NoError(t, err)
	assert.False(t, ok, "state is single use")
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	r := newRouter(NewGoogleService("client", "secret", "http://localhost/callback", "http://localhost/ui", nil, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=nope&code=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemoryStatesExpire(t *testing.T) {
	now := time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
	s := newMemoryStates(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "old", time.Minute))
	require.NoError(t, s.Put(ctx, "fresh", time.Hour))
	now = now.Add(2 * time.Minute)

	ok, err := s.Consume(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = s.Consume(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}

type fakeStateRedis struct {
	mu   sync.Mutex
	keys map[string]time.Duration
}

func (f *fakeStateRedis) Set(_ context.Context, key string, _ interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStateRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			delete(f.keys, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStatesConsumeOnce(t *testing.T) {
	client := &fakeStateRedis{keys: map[string]time.Duration{}}
	s := NewRedisStateStore(client)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "abc", 5*time.Minute))
	assert.Equal(t, 5*time.Minute, client.keys[redisStatePrefix+"abc"])

	ok, err := s.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Consume(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAppendToken(t *testing.T) {
	got, err := appendToken("http://localhost:5173/auth?next=/dashboard", "abc")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5173/auth?next=%2Fdashboard&token=abc", got)

	_, err = appendToken("", "abc")
	assert.Error(t, err)
}
