package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/cardex/internal/card"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports.go -package=mocks

// Repository persists cards. Implementations own concurrency safety of
// CreateOrUpdate for the same email.
type Repository interface {
	// CreateOrUpdate inserts c, or updates the non-deleted card with the same
	// email (case-insensitive). It returns the stored card with its ID.
	CreateOrUpdate(ctx context.Context, c card.Card) (card.Card, error)

	// FindByID returns a non-deleted card or an error matching card.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (card.Card, error)

	// FindByIDs returns the non-deleted cards among ids, or every non-deleted
	// card when ids is empty. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]card.Card, error)

	// DeleteMany soft-deletes (or removes when force is set) the cards and
	// returns the ids that matched.
	DeleteMany(ctx context.Context, ids []uuid.UUID, force bool) ([]uuid.UUID, error)

	// List returns one page of non-deleted cards.
	List(ctx context.Context, q card.ListQuery) (card.Page, error)
}

// Cache holds cards by id. Misses are reported with ok=false, not an error.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (c card.Card, ok bool, err error)
	Set(ctx context.Context, c card.Card, ttl time.Duration) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
}

// Upload is a file received by a transport.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the upload length in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Data))
}

type noopCache struct{}

func (noopCache) Get(context.Context, uuid.UUID) (card.Card, bool, error) { return card.Card{}, false, nil }
func (noopCache) Set(context.Context, card.Card, time.Duration) error      { return nil }
func (noopCache) Delete(context.Context, ...uuid.UUID) error               { return nil }
