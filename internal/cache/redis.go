// Package cache keeps recently read or written cards in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/cardex/internal/card"
)

const keyPrefix = "BusinessCard_"

// Key returns the Redis key for a card id.
func Key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Options tunes the client built by Open.
type Options struct {
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Open parses url, applies opts and pings the server.
func Open(ctx context.Context, url string, opts Options) (*redis.Client, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}
	if opts.DialTimeout > 0 {
		ro.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		ro.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		ro.WriteTimeout = opts.WriteTimeout
	}

	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Redis is a card cache on a go-redis client. Values are JSON.
type Redis struct {
	client redis.Cmdable
}

// NewRedis wraps client. The caller owns the client's lifecycle.
func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

type entry struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Gender       int       `json:"gender"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	Address      string    `json:"address"`
	Photo        string    `json:"photo,omitempty"`
	LastUpdateAt time.Time `json:"lastUpdateAt"`
}

func toEntry(c card.Card) entry {
	return entry{
		ID:           c.ID,
		Name:         c.Name,
		Gender:       int(c.Gender),
		DateOfBirth:  c.DateOfBirth,
		Email:        c.Email,
		PhoneNumber:  c.PhoneNumber,
		Address:      c.Address,
		Photo:        c.Photo,
		LastUpdateAt: c.LastUpdateAt,
	}
}

func (e entry) card() card.Card {
	return card.Card{
		ID:           e.ID,
		Name:         e.Name,
		Gender:       card.Gender(e.Gender),
		DateOfBirth:  e.DateOfBirth,
		Email:        e.Email,
		PhoneNumber:  e.PhoneNumber,
		Address:      e.Address,
		Photo:        e.Photo,
		LastUpdateAt: e.LastUpdateAt,
	}
}

// Get returns the cached card. A missing key is a miss, not an error.
func (r *Redis) Get(ctx context.Context, id uuid.UUID) (card.Card, bool, error) {
	raw, err := r.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return card.Card{}, false, nil
	}
	if err != nil {
		return card.Card{}, false, err
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return card.Card{}, false, fmt.Errorf("decode cached card %s: %w", id, err)
	}
	return e.card(), true, nil
}

// Set stores c for ttl. Deleted cards are evicted instead.
func (r *Redis) Set(ctx context.Context, c card.Card, ttl time.Duration) error {
	if c.Deleted {
		return r.Delete(ctx, c.ID)
	}
	raw, err := json.Marshal(toEntry(c))
	if err != nil {
		return fmt.Errorf("encode card %s: %w", c.ID, err)
	}
	return r.client.Set(ctx, Key(c.ID), raw, ttl).Err()
}

// Delete evicts ids in a single DEL.
func (r *Redis) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}
	return r.client.Del(ctx, keys...).Err()
}
