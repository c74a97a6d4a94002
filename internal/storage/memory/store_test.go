package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/core"
	"github.com/JonMunkholm/cardex/internal/storage/memory"
)

var _ core.Repository = (*memory.Store)(nil)

func dob(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, s *memory.Store, cards ...card.Card) []card.Card {
	t.Helper()
	out := make([]card.Card, len(cards))
	for i, c := range cards {
		stored, err := s.CreateOrUpdate(context.Background(), c)
		require.NoError(t, err)
		out[i] = stored
	}
	return out
}

func sample() []card.Card {
	return []card.Card{
		{Name: "Charlie Brown", Gender: card.GenderMale, Email: "charlie@example.com", PhoneNumber: "0501112222", DateOfBirth: dob(1990, time.March, 14), Address: "Amman"},
		{Name: "Alice Smith", Gender: card.GenderFemale, Email: "alice@example.com", PhoneNumber: "0793334444", DateOfBirth: dob(1985, time.July, 2), Address: "Irbid"},
		{Name: "Bob Jones", Gender: card.GenderUnspecified, Email: "bob@example.org", PhoneNumber: "0785556666", DateOfBirth: dob(2001, time.December, 25), Address: "Zarqa"},
	}
}

func TestCreateOrUpdate_MatchesEmailCaseInsensitively(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	first, err := s.CreateOrUpdate(ctx, card.Card{Name: "Old", Email: "Sam@Example.com"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, first.ID)

	second, err := s.CreateOrUpdate(ctx, card.Card{Name: "New", Email: " sam@example.COM "})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := s.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	all, err := s.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestFindByID_NotFound(t *testing.T) {
	s := memory.New()
	stored := seed(t, s, sample()...)

	_, err := s.FindByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, card.ErrNotFound))

	_, err = s.DeleteMany(context.Background(), []uuid.UUID{stored[0].ID}, false)
	require.NoError(t, err)
	_, err = s.FindByID(context.Background(), stored[0].ID)
	assert.True(t, errors.Is(err, card.ErrNotFound), "soft-deleted card must be hidden")
}

func TestFindByIDs(t *testing.T) {
	s := memory.New()
	stored := seed(t, s, sample()...)
	ctx := context.Background()

	all, err := s.FindByIDs(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, stored[0].ID, all[0].ID, "insertion order is kept")

	some, err := s.FindByIDs(ctx, []uuid.UUID{stored[2].ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Bob Jones", some[0].Name)

	_, err = s.DeleteMany(ctx, []uuid.UUID{stored[1].ID}, false)
	require.NoError(t, err)
	all, err = s.FindByIDs(ctx, []uuid.UUID{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteMany(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete frees the email", func(t *testing.T) {
		s := memory.New()
		stored := seed(t, s, sample()...)

		ids, err := s.DeleteMany(ctx, []uuid.UUID{stored[0].ID, stored[0].ID, uuid.New()}, false)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{stored[0].ID}, ids)

		again, err := s.DeleteMany(ctx, []uuid.UUID{stored[0].ID}, false)
		require.NoError(t, err)
		assert.Empty(t, again)

		recreated, err := s.CreateOrUpdate(ctx, stored[0])
		require.NoError(t, err)
		assert.NotEqual(t, stored[0].ID, recreated.ID)
	})

	t.Run("force removes", func(t *testing.T) {
		s := memory.New()
		stored := seed(t, s, sample()...)

		ids, err := s.DeleteMany(ctx, []uuid.UUID{stored[1].ID, stored[2].ID}, true)
		require.NoError(t, err)
		assert.Len(t, ids, 2)

		all, err := s.FindByIDs(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, stored[0].ID, all[0].ID)
	})
}

func TestList(t *testing.T) {
	s := memory.New()
	seed(t, s, sample()...)
	ctx := context.Background()

	names := func(p card.Page) []string {
		out := make([]string, len(p.Cards))
		for i, c := range p.Cards {
			out[i] = c.Name
		}
		return out
	}

	tests := []struct {
		name  string
		query card.ListQuery
		want  []string
		total int64
	}{
		{"default orders by name", card.ListQuery{}, []string{"Alice Smith", "Bob Jones", "Charlie Brown"}, 3},
		{"descending", card.ListQuery{OrderDirection: "DESC"}, []string{"Charlie Brown", "Bob Jones", "Alice Smith"}, 3},
		{"by date of birth", card.ListQuery{OrderBy: "dateOfBirth"}, []string{"Alice Smith", "Charlie Brown", "Bob Jones"}, 3},
		{"by email", card.ListQuery{OrderBy: "email"}, []string{"Alice Smith", "Bob Jones", "Charlie Brown"}, 3},
		{"second page", card.ListQuery{Page: 2, PageSize: 2}, []string{"Charlie Brown"}, 3},
		{"page past the end", card.ListQuery{Page: 5, PageSize: 2}, []string{}, 3},
		{"search name", card.ListQuery{Search: "JON"}, []string{"Bob Jones"}, 1},
		{"search resets page", card.ListQuery{Search: "example.com", Page: 3}, []string{"Alice Smith", "Charlie Brown"}, 2},
		{"search phone", card.ListQuery{Search: "3334"}, []string{"Alice Smith"}, 1},
		{"search female", card.ListQuery{Search: "female"}, []string{"Alice Smith"}, 1},
		{"search male", card.ListQuery{Search: "Male"}, []string{"Charlie Brown"}, 1},
		{"search month", card.ListQuery{Search: "dec"}, []string{"Bob Jones"}, 1},
		{"search year", card.ListQuery{Search: "1985"}, []string{"Alice Smith"}, 1},
		{"search day", card.ListQuery{Search: "25"}, []string{"Bob Jones"}, 1},
		{"no match", card.ListQuery{Search: "zzz"}, []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(page))
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestList_OrderByLastUpdate(t *testing.T) {
	s := memory.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	seed(t, s, sample()...)

	page, err := s.List(context.Background(), card.ListQuery{OrderBy: "lastUpdateAt", OrderDirection: "desc"})
	require.NoError(t, err)
	require.Len(t, page.Cards, 3)
	assert.Equal(t, "Bob Jones", page.Cards[0].Name)
	assert.Equal(t, "Charlie Brown", page.Cards[2].Name)
}

func TestCancelledContext(t *testing.T) {
	s := memory.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CreateOrUpdate(ctx, card.Card{Email: "a@b.co"})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.List(ctx, card.ListQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}
