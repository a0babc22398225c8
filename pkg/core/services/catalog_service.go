package services

import (
	"context"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
)

type CatalogService struct {
	store ports.Store
	locks *ScopeLocks
}

func NewCatalogService(store ports.Store, locks *ScopeLocks) *CatalogService {
	return &CatalogService{store: store, locks: locks}
}

func (s *CatalogService) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	card, err := s.store.GetCard(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, domain.Internal(err)
	}
	if card == nil {
		return nil, domain.NotFound("card with id '%s' not found", id)
	}
	return card, nil
}

func (s *CatalogService) ListCards(ctx context.Context, page, limit int, search string) ([]domain.Card, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	filters := map[string]interface{}{
		"search": strings.TrimSpace(search),
	}

	cards, err := s.store.ListCards(ctx, limit, offset, filters)
	if err != nil {
		return nil, 0, domain.Internal(err)
	}

	count, err := s.store.CountCards(ctx, filters)
	if err != nil {
		return nil, 0, domain.Internal(err)
	}

	return cards, count, nil
}

// ImportCards upserts catalog rows in one transaction. A single invalid card
// rejects the whole batch.
func (s *CatalogService) ImportCards(ctx context.Context, cards []domain.Card) (int, error) {
	now := time.Now().UTC()
	for i := range cards {
		if err := cards[i].Validate(); err != nil {
			return 0, err
		}
		if cards[i].CreatedAt.IsZero() {
			cards[i].CreatedAt = now
		}
	}

	err := s.store.WithinTx(ctx, func(tx ports.Repository) error {
		for i := range cards {
			if err := tx.UpsertCard(ctx, &cards[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, domain.Internal(err)
	}
	return len(cards), nil
}

// DeleteCard removes a card and everything that references it. It holds the
// scope lock of every user that owns or allocates the card.
func (s *CatalogService) DeleteCard(ctx context.Context, id string) (*domain.CascadeResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Validation("card id is required")
	}

	scope := func(q ports.Repository) ([]string, error) {
		users, err := q.CardHolders(ctx, id)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(users))
		for i, u := range users {
			keys[i] = scopeKey(u, id)
		}
		return keys, nil
	}

	var result *domain.CascadeResult
	err := withScopedTx(ctx, s.store, s.locks, scope, func(tx ports.Repository) error {
		card, err := tx.GetCard(ctx, id)
		if err != nil {
			return err
		}
		if card == nil {
			return domain.NotFound("card with id '%s' not found", id)
		}
		result, err = deleteCardCascade(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return result, nil
}
