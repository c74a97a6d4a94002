package cache_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cardex/internal/cache"
	"github.com/JonMunkholm/cardex/internal/core"
)

var _ core.Cache = (*cache.Redis)(nil)

func TestKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a0e-4b1d-4c55-9a8e-0e7c1b2d3f40")
	assert.Equal(t, "BusinessCard_6f1c2a0e-4b1d-4c55-9a8e-0e7c1b2d3f40", cache.Key(id))
}

func TestOpen_BadURL(t *testing.T) {
	_, err := cache.Open(context.Background(), "not-a-redis-url", cache.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}
