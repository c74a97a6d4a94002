package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/cardex/internal/card"
	"github.com/JonMunkholm/cardex/internal/logging"
)

// Create validates w and stores it, updating the existing card with the same
// email if there is one. Unlike bulk import, an oversized photo is an error.
func (s *Service) Create(ctx context.Context, w card.Wire) (card.Card, error) {
	if err := card.Validate(w); err != nil {
		return card.Card{}, err
	}
	if err := card.CheckPhoto(w.Photo); err != nil {
		return card.Card{}, err
	}
	c, err := w.Card()
	if err != nil {
		return card.Card{}, err
	}

	stored, err := s.repo.CreateOrUpdate(ctx, c)
	if err != nil {
		return card.Card{}, card.Wrap(card.KindCreationFailed, err)
	}
	s.cacheSet(ctx, stored)

	logging.FromContext(ctx).Info("card stored", "card_id", stored.ID)
	return stored, nil
}

// Get returns a card by id, reading through the cache.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (card.Card, error) {
	if c, ok := s.cacheGet(ctx, id); ok {
		return c, nil
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, card.ErrNotFound) {
			return card.Card{}, err
		}
		return card.Card{}, fmt.Errorf("find card %s: %w", id, err)
	}
	s.cacheSet(ctx, c)
	return c, nil
}

// List returns a page of cards. Photos are blanked unless q.WithPhoto is set.
func (s *Service) List(ctx context.Context, q card.ListQuery) (card.Page, error) {
	q = q.Normalize()

	page, err := s.repo.List(ctx, q)
	if err != nil {
		return card.Page{}, fmt.Errorf("list cards: %w", err)
	}
	if !q.WithPhoto {
		for i := range page.Cards {
			page.Cards[i].Photo = ""
		}
	}
	return page, nil
}

// Delete removes the cards with the given ids, softly unless force is set,
// and returns the ids that existed.
func (s *Service) Delete(ctx context.Context, ids []uuid.UUID, force bool) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, &card.Error{Kind: card.KindAtLeastOneIDRequired}
	}

	deleted, err := s.repo.DeleteMany(ctx, ids, force)
	if err != nil {
		return nil, fmt.Errorf("delete cards: %w", err)
	}
	s.cacheDelete(ctx, ids...)

	if len(deleted) == 0 {
		return nil, &card.Error{Kind: card.KindBusinessCardNotFound}
	}

	logging.FromContext(ctx).Info("cards deleted", "requested", len(ids), "deleted", len(deleted), "force", force)
	return deleted, nil
}
