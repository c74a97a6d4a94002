// Package memory is an in-process card repository used when no database is
// configured and by tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/cardex/internal/card"
)

// Store keeps cards in maps guarded by a single RWMutex.
type Store struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]card.Card
	byEmail map[string]uuid.UUID // lower(email) -> live card
	order   []uuid.UUID          // insertion order
	now     func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		byID:    make(map[uuid.UUID]card.Card),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func emailKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateOrUpdate inserts c or overwrites the live card with the same email.
func (s *Store) CreateOrUpdate(ctx context.Context, c card.Card) (card.Card, error) {
	if err := ctx.Err(); err != nil {
		return card.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(c.Email)
	if id, ok := s.byEmail[key]; ok {
		c.ID = id
	} else {
		c.ID = uuid.New()
		s.byEmail[key] = c.ID
		s.order = append(s.order, c.ID)
	}
	c.Deleted = false
	c.LastUpdateAt = s.now().UTC()
	s.byID[c.ID] = c
	return c, nil
}

// FindByID returns a live card or card.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (card.Card, error) {
	if err := ctx.Err(); err != nil {
		return card.Card{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok || c.Deleted {
		return card.Card{}, card.New(card.KindBusinessCardNotFound, "id %s", id)
	}
	return c, nil
}

// FindByIDs returns live cards among ids in insertion order, or all live
// cards when ids is empty.
func (s *Store) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]card.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]card.Card, 0)
	for _, id := range s.order {
		c, ok := s.byID[id]
		if !ok || c.Deleted {
			continue
		}
		if len(want) > 0 {
			if _, hit := want[id]; !hit {
				continue
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// DeleteMany marks the live cards among ids as deleted, or removes them when
// force is set. It returns the ids that matched.
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID, force bool) ([]uuid.UUID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		c, ok := s.byID[id]
		if !ok || c.Deleted || seen[id] {
			continue
		}
		seen[id] = true
		delete(s.byEmail, emailKey(c.Email))
		if force {
			delete(s.byID, id)
			s.removeFromOrder(id)
		} else {
			c.Deleted = true
			c.LastUpdateAt = s.now().UTC()
			s.byID[id] = c
		}
		deleted = append(deleted, id)
	}
	return deleted, nil
}

func (s *Store) removeFromOrder(id uuid.UUID) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// List filters, orders and pages the live cards.
func (s *Store) List(ctx context.Context, q card.ListQuery) (card.Page, error) {
	if err := ctx.Err(); err != nil {
		return card.Page{}, err
	}
	q = q.Normalize()

	s.mu.RLock()
	all := make([]card.Card, 0, len(s.byID))
	for _, id := range s.order {
		if c := s.byID[id]; !c.Deleted {
			all = append(all, c)
		}
	}
	s.mu.RUnlock()

	if q.Search != "" {
		m := newMatcher(q.Search)
		filtered := all[:0]
		for _, c := range all {
			if m.match(c) {
				filtered = append(filtered, c)
			}
		}
		all = filtered
	}

	less := orderFunc(q.OrderBy)
	sort.SliceStable(all, func(i, j int) bool {
		if q.OrderDirection == "desc" {
			return less(all[j], all[i])
		}
		return less(all[i], all[j])
	})

	page := card.Page{Page: q.Page, PageSize: q.PageSize, Total: int64(len(all))}
	start := (q.Page - 1) * q.PageSize
	if start >= len(all) {
		page.Cards = []card.Card{}
		return page, nil
	}
	end := min(start+q.PageSize, len(all))
	page.Cards = append([]card.Card(nil), all[start:end]...)
	return page, nil
}

func orderFunc(orderBy string) func(a, b card.Card) bool {
	switch strings.ToLower(orderBy) {
	case "email":
		return func(a, b card.Card) bool { return strings.ToLower(a.Email) < strings.ToLower(b.Email) }
	case "dateofbirth":
		return func(a, b card.Card) bool { return a.DateOfBirth.Before(b.DateOfBirth) }
	case "lastupdateat":
		return func(a, b card.Card) bool { return a.LastUpdateAt.Before(b.LastUpdateAt) }
	default:
		return func(a, b card.Card) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	}
}

// matcher mirrors the postgres search: substring on name, email and phone,
// gender words, a month abbreviation, or the year or day digits of the
// birth date.
type matcher struct {
	card.Search
}

func newMatcher(search string) matcher {
	return matcher{card.ParseSearch(search)}
}

func (m matcher) match(c card.Card) bool {
	switch {
	case strings.Contains(strings.ToLower(c.Name), m.Text),
		strings.Contains(strings.ToLower(c.Email), m.Text),
		strings.Contains(strings.ToLower(c.PhoneNumber), m.Text):
		return true
	case m.Gender != card.GenderInvalid && c.Gender == m.Gender:
		return true
	case m.Month != 0 && c.DateOfBirth.Month() == m.Month:
		return true
	}
	if c.DateOfBirth.IsZero() {
		return false
	}
	return strings.Contains(strconv.Itoa(c.DateOfBirth.Year()), m.Text) ||
		strings.Contains(strconv.Itoa(c.DateOfBirth.Day()), m.Text)
}
