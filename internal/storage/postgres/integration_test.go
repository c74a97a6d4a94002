//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/JonMunkholm/cardex/internal/card"
)

// startPostgres runs a throwaway database and returns a migrated Store.
func startPostgres(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("cardex"),
		tcpostgres.WithUsername("cardex"),
		tcpostgres.WithPassword("cardex"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := Open(ctx, dsn, PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx), "migrate must be repeatable")
	return s
}

func TestStore_Integration(t *testing.T) {
	s := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	in := card.Card{
		Name:        "Lina Haddad",
		Gender:      card.GenderFemale,
		DateOfBirth: time.Date(1992, time.October, 5, 0, 0, 0, 0, time.UTC),
		Email:       "Lina@Example.com",
		PhoneNumber: "0791234567",
		Address:     "عمّان",
	}
	first, err := s.CreateOrUpdate(ctx, in)
	require.NoError(t, err)

	in.Name = "Lina H."
	in.Email = "lina@example.com"
	second, err := s.CreateOrUpdate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lina H.", got.Name)
	assert.Equal(t, "عمّان", got.Address)
	assert.True(t, in.DateOfBirth.Equal(got.DateOfBirth))

	other := in
	other.Name = "Zaid Nasser"
	other.Gender = card.GenderMale
	other.Email = "zaid@example.com"
	other.DateOfBirth = time.Date(1985, time.March, 17, 0, 0, 0, 0, time.UTC)
	zaid, err := s.CreateOrUpdate(ctx, other)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query card.ListQuery
		want  []uuid.UUID
		total int64
	}{
		{"default order by name", card.ListQuery{}, []uuid.UUID{first.ID, zaid.ID}, 2},
		{"descending", card.ListQuery{OrderDirection: "desc"}, []uuid.UUID{zaid.ID, first.ID}, 2},
		{"birth date order", card.ListQuery{OrderBy: "dateOfBirth"}, []uuid.UUID{zaid.ID, first.ID}, 2},
		{"month search", card.ListQuery{Search: "oct"}, []uuid.UUID{first.ID}, 1},
		{"female search", card.ListQuery{Search: "fem"}, []uuid.UUID{first.ID}, 1},
		{"year search", card.ListQuery{Search: "1985"}, []uuid.UUID{zaid.ID}, 1},
		{"second page", card.ListQuery{Page: 2, PageSize: 1}, []uuid.UUID{zaid.ID}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.total, page.Total)
			ids := make([]uuid.UUID, len(page.Cards))
			for i, c := range page.Cards {
				ids[i] = c.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	found, err := s.FindByIDs(ctx, []uuid.UUID{zaid.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "zaid@example.com", found[0].Email)

	deleted, err := s.DeleteMany(ctx, []uuid.UUID{first.ID, uuid.New()}, false)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, deleted)

	_, err = s.FindByID(ctx, first.ID)
	assert.True(t, errors.Is(err, card.ErrNotFound))

	// The email is free again after a soft delete.
	again, err := s.CreateOrUpdate(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)

	deleted, err = s.DeleteMany(ctx, []uuid.UUID{again.ID, zaid.ID}, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{again.ID, zaid.ID}, deleted)

	all, err := s.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}
