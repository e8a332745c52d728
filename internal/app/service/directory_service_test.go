package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"snippetbox/internal/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func newDirectoryUpstream(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/users/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"name":"Leanne Graham"}`))
		case "/users/2":
			w.WriteHeader(http.StatusInternalServerError)
		case "/users/3":
			_, _ = w.Write([]byte(`<html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDirectoryGetUser_CachesResponse(t *testing.T) {
	var hits int32
	upstream := newDirectoryUpstream(t, &hits)
	mr, rdb := setupTestRedis(t)
	svc := NewDirectoryService(upstream.Client(), upstream.URL+"/", rdb, time.Minute, nopLogger)

	for i := 0; i < 3; i++ {
		body, err := svc.GetUser(context.Background(), 1)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":1,"name":"Leanne Graham"}`, string(body))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	assert.True(t, mr.Exists("directory:user:1"))
	assert.Equal(t, time.Minute, mr.TTL("directory:user:1"))

	mr.FastForward(2 * time.Minute)
	_, err := svc.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestDirectoryGetUser_UpstreamErrors(t *testing.T) {
	var hits int32
	upstream := newDirectoryUpstream(t, &hits)
	mr, rdb := setupTestRedis(t)
	svc := NewDirectoryService(upstream.Client(), upstream.URL, rdb, time.Minute, nopLogger)

	_, err := svc.GetUser(context.Background(), 99)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = svc.GetUser(context.Background(), 2)
	assert.True(t, errors.Is(err, common.ErrServiceUnavailable))

	_, err = svc.GetUser(context.Background(), 3)
	assert.True(t, errors.Is(err, common.ErrServiceUnavailable))

	assert.Empty(t, mr.Keys(), "failures must not be cached")
}

func TestDirectoryGetUser_UpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	url := upstream.URL
	upstream.Close()

	svc := NewDirectoryService(http.DefaultClient, url, nil, time.Minute, nopLogger)
	_, err := svc.GetUser(context.Background(), 1)
	assert.True(t, errors.Is(err, common.ErrServiceUnavailable))
	assert.Equal(t, 503, common.HTTPStatusFromError(err))
}

func TestDirectoryGetUser_RedisDownFallsThrough(t *testing.T) {
	var hits int32
	upstream := newDirectoryUpstream(t, &hits)
	mr, rdb := setupTestRedis(t)
	mr.Close()

	svc := NewDirectoryService(upstream.Client(), upstream.URL, rdb, time.Minute, nopLogger)
	body, err := svc.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Leanne")
}

func TestDirectoryGetUser_InvalidID(t *testing.T) {
	svc := NewDirectoryService(http.DefaultClient, "http://unused", nil, time.Minute, nopLogger)
	_, err := svc.GetUser(context.Background(), 0)
	assert.True(t, errors.Is(err, common.ErrValidation))
}
