package main

import (
	"context"
	"io"
	"testing"

	"snippetbox/internal/domain/model"
	"snippetbox/internal/platform/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStorage_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{StorageDriver: config.StorageDriverMemory}

	store, checks, closeStore, err := openStorage(ctx, cfg, zerolog.New(io.Discard))
	require.NoError(t, err)
	defer closeStore()

	require.Len(t, checks, 1)
	assert.Equal(t, "database", checks[0].Name)
	assert.NoError(t, checks[0].Check(ctx))

	roleID, err := store.roles.Ensure(ctx, nil, model.RoleUser)
	require.NoError(t, err)
	_, err = store.users.Create(ctx, nil, &model.User{Name: "alice", Email: "a@b.com", Salt: "s", RoleID: roleID})
	require.NoError(t, err)
	assert.NotNil(t, store.tx)
	assert.NotNil(t, store.snippets)
}

func TestOpenStorage_PostgresUnreachable(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.StorageDriverPostgres,
		DBConnStr:     "host=127.0.0.1 port=1 user=x password=x dbname=x sslmode=disable connect_timeout=1",
	}

	_, _, _, err := openStorage(context.Background(), cfg, zerolog.New(io.Discard))
	assert.Error(t, err)
}
