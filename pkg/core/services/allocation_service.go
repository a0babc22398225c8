package services

import (
	"context"
	"strings"
	"time"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
)

// AllocationService commits owned copies to decks without allocating more
// than the user owns.
type AllocationService struct {
	store  ports.Store
	locks  *ScopeLocks
	policy domain.AllocationPolicy
}

func NewAllocationService(store ports.Store, locks *ScopeLocks, policy domain.AllocationPolicy) *AllocationService {
	if policy == "" {
		policy = domain.PerDeckPolicy
	}
	return &AllocationService{store: store, locks: locks, policy: policy}
}

// Allocate adds quantity copies of a card to a deck. Repeated calls add up.
//
// Under the per-deck policy only the target deck's new total is compared with
// the owned quantity, so the same copies can be committed to several decks.
// The global policy compares the total across all of the user's decks.
func (s *AllocationService) Allocate(ctx context.Context, userID, deckID int64, cardID string, quantity int) (*domain.Allocation, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, domain.Validation("card_id is required")
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	unlock := s.locks.LockPair(userID, cardID)
	defer unlock()

	var result *domain.Allocation
	err := s.store.WithinTx(ctx, func(tx ports.Repository) error {
		deck, err := tx.GetDeck(ctx, deckID)
		if err != nil {
			return err
		}
		if deck == nil || deck.UserID != userID {
			return domain.NotFound("deck not found")
		}

		owned, err := tx.OwnedQuantity(ctx, userID, cardID)
		if err != nil {
			return err
		}
		if owned == 0 {
			return domain.Conflict(domain.ReasonCardNotInCollection)
		}

		existing, err := tx.GetAllocation(ctx, deckID, cardID)
		if err != nil {
			return err
		}
		already := 0
		if existing != nil {
			already = existing.Quantity
		}
		newTotal := quantity + already

		if err := s.checkCap(ctx, tx, userID, cardID, owned, quantity, newTotal); err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing != nil {
			if err := tx.SetAllocationQuantity(ctx, existing.ID, newTotal); err != nil {
				return err
			}
			existing.Quantity = newTotal
			result = existing
		} else {
			result = &domain.Allocation{DeckID: deckID, CardID: cardID, Quantity: quantity, AddedAt: now}
			if err := tx.CreateAllocation(ctx, result); err != nil {
				return err
			}
		}

		deck.UpdatedAt = now
		return tx.UpdateDeck(ctx, deck)
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return result, nil
}

func (s *AllocationService) checkCap(ctx context.Context, tx ports.Repository, userID int64, cardID string, owned, adding, newTotal int) error {
	switch s.policy {
	case domain.GlobalPolicy:
		allocated, err := tx.AllocatedQuantity(ctx, userID, cardID)
		if err != nil {
			return err
		}
		if allocated+adding > owned {
			return domain.Conflict(domain.ReasonInsufficientQuantity)
		}
	default:
		if newTotal > owned {
			return domain.Conflict(domain.ReasonInsufficientQuantity)
		}
	}
	return nil
}

// ListAllocationsForCard returns the card's allocations across the user's decks.
func (s *AllocationService) ListAllocationsForCard(ctx context.Context, userID int64, cardID string) ([]domain.Allocation, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, domain.Validation("card_id is required")
	}
	allocs, err := s.store.ListUserAllocations(ctx, userID, cardID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return allocs, nil
}
