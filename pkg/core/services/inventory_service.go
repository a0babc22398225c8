package services

import (
	"context"
	"strings"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
)

type InventoryService struct {
	store ports.Store
	locks *ScopeLocks
}

func NewInventoryService(store ports.Store, locks *ScopeLocks) *InventoryService {
	return &InventoryService{store: store, locks: locks}
}

// AddEntry records newly owned copies. It never merges with existing entries.
func (s *InventoryService) AddEntry(ctx context.Context, userID int64, cardID string, quantity int, condition string) (*domain.CollectionEntry, error) {
	entry, err := domain.NewCollectionEntry(userID, cardID, quantity, condition)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx ports.Repository) error {
		card, err := tx.GetCard(ctx, entry.CardID)
		if err != nil {
			return err
		}
		if card == nil {
			return domain.NotFound("card with id '%s' not found", entry.CardID)
		}
		return tx.CreateEntry(ctx, entry)
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return entry, nil
}

// UpdateEntry changes quantity and condition of an owned entry. Lowering the
// quantity below what the user's decks already hold is a conflict.
func (s *InventoryService) UpdateEntry(ctx context.Context, userID, entryID int64, quantity int, condition string) (*domain.CollectionEntry, error) {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	cond, err := domain.ParseCondition(condition)
	if err != nil {
		return nil, err
	}

	entry, err := s.ownedEntry(ctx, s.store, userID, entryID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.LockPair(userID, entry.CardID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(tx ports.Repository) error {
		current, err := s.ownedEntry(ctx, tx, userID, entryID)
		if err != nil {
			return err
		}
		if quantity < current.Quantity {
			if err := checkSupply(ctx, tx, userID, current.CardID, current.Quantity-quantity); err != nil {
				return err
			}
		}
		current.Quantity = quantity
		current.Condition = cond
		entry = current
		return tx.UpdateEntry(ctx, current)
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return entry, nil
}

// RemoveEntry deletes an owned entry unless the copies it holds are needed to
// cover existing deck allocations.
func (s *InventoryService) RemoveEntry(ctx context.Context, userID, entryID int64) error {
	entry, err := s.ownedEntry(ctx, s.store, userID, entryID)
	if err != nil {
		return err
	}

	unlock := s.locks.LockPair(userID, entry.CardID)
	defer unlock()

	err = s.store.WithinTx(ctx, func(tx ports.Repository) error {
		current, err := s.ownedEntry(ctx, tx, userID, entryID)
		if err != nil {
			return err
		}
		if err := checkSupply(ctx, tx, userID, current.CardID, current.Quantity); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, entryID)
	})
	return domain.Internal(err)
}

func (s *InventoryService) ListEntries(ctx context.Context, userID int64) ([]domain.CollectionEntryView, error) {
	entries, err := s.store.ListEntries(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return entries, nil
}

func (s *InventoryService) OwnedQuantity(ctx context.Context, userID int64, cardID string) (int, error) {
	owned, err := s.store.OwnedQuantity(ctx, userID, strings.TrimSpace(cardID))
	if err != nil {
		return 0, domain.Internal(err)
	}
	return owned, nil
}

// ownedEntry hides entries of other users behind NotFound.
func (s *InventoryService) ownedEntry(ctx context.Context, q ports.Repository, userID, entryID int64) (*domain.CollectionEntry, error) {
	entry, err := q.GetEntry(ctx, entryID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if entry == nil || entry.UserID != userID {
		return nil, domain.NotFound("collection entry with id '%d' not found", entryID)
	}
	return entry, nil
}

// checkSupply fails when taking `removing` copies out of the user's holdings
// would leave fewer owned copies than are allocated across their decks.
func checkSupply(ctx context.Context, tx ports.Repository, userID int64, cardID string, removing int) error {
	owned, err := tx.OwnedQuantity(ctx, userID, cardID)
	if err != nil {
		return err
	}
	allocated, err := tx.AllocatedQuantity(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if allocated > owned-removing {
		return domain.Conflict(domain.ReasonWouldExceedAllocation)
	}
	return nil
}
