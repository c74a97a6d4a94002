//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/JonMunkholm/cardex/internal/cache"
	"github.com/JonMunkholm/cardex/internal/card"
)

func startRedis(t *testing.T) *cache.Redis {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := cache.Open(ctx, url, cache.Options{PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedis(client)
}

func TestRedis_Integration(t *testing.T) {
	c := startRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	in := card.Card{
		ID:           uuid.New(),
		Name:         "Omar Khalil",
		Gender:       card.GenderMale,
		DateOfBirth:  time.Date(1988, time.May, 9, 0, 0, 0, 0, time.UTC),
		Email:        "omar@example.com",
		PhoneNumber:  "0780000000",
		Address:      "Aqaba",
		LastUpdateAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
	}

	_, ok, err := c.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, in, time.Minute))
	got, ok, err := c.Get(ctx, in.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in.Name, got.Name)
	assert.True(t, in.DateOfBirth.Equal(got.DateOfBirth))
	assert.True(t, in.LastUpdateAt.Equal(got.LastUpdateAt))

	deleted := in
	deleted.Deleted = true
	require.NoError(t, c.Set(ctx, deleted, time.Minute))
	_, ok, err = c.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.False(t, ok, "setting a deleted card evicts it")

	require.NoError(t, c.Set(ctx, in, time.Minute))
	require.NoError(t, c.Delete(ctx, in.ID, uuid.New()))
	_, ok, err = c.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Delete(ctx))
}
