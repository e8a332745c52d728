package queue

import (
	"context"
	"io"
	"testing"

	"snippetbox/internal/platform/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := ConnectRedis(context.Background(), &config.Config{RedisAddr: mr.Addr()}, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer CloseRedis(rdb, zerolog.New(io.Discard))

	assert.NoError(t, Ping(context.Background(), rdb))
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), &config.Config{RedisAddr: addr}, zerolog.New(io.Discard))
	assert.Error(t, err)
}
