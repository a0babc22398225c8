package services

import (
	"context"
	"errors"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
)

var errScopeChanged = errors.New("lock scope changed")

const maxScopeAttempts = 3

// withScopedTx locks the keys reported by scope, then runs fn in one
// transaction. scope is evaluated again inside the transaction; when rows
// appeared outside the locked set in between, the attempt is retried.
func withScopedTx(ctx context.Context, store ports.Store, locks *ScopeLocks,
	scope func(q ports.Repository) ([]string, error), fn func(tx ports.Repository) error) error {
	for attempt := 0; attempt < maxScopeAttempts; attempt++ {
		keys, err := scope(store)
		if err != nil {
			return err
		}

		unlock := locks.Lock(keys...)
		err = store.WithinTx(ctx, func(tx ports.Repository) error {
			current, err := scope(tx)
			if err != nil {
				return err
			}
			if !covers(keys, current) {
				return errScopeChanged
			}
			return fn(tx)
		})
		unlock()

		if !errors.Is(err, errScopeChanged) {
			return err
		}
	}
	return domain.Conflict("concurrent modification, retry the request")
}

func covers(held, want []string) bool {
	set := make(map[string]struct{}, len(held))
	for _, k := range held {
		set[k] = struct{}{}
	}
	for _, k := range want {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

// deleteDeckCascade removes a deck's allocations and then the deck.
func deleteDeckCascade(ctx context.Context, tx ports.Repository, deckID int64) (int64, error) {
	removed, err := tx.DeleteAllocationsByDeck(ctx, deckID)
	if err != nil {
		return 0, err
	}
	if err := tx.DeleteDeck(ctx, deckID); err != nil {
		return 0, err
	}
	return removed, nil
}

// deleteCardCascade removes every allocation and collection entry that
// references the card, across all users, and then the card itself.
func deleteCardCascade(ctx context.Context, tx ports.Repository, cardID string) (*domain.CascadeResult, error) {
	var res domain.CascadeResult
	var err error

	if res.Allocations, err = tx.DeleteAllocationsByCard(ctx, cardID); err != nil {
		return nil, err
	}
	if res.Entries, err = tx.DeleteEntriesByCard(ctx, cardID); err != nil {
		return nil, err
	}
	if _, err = tx.DeleteCard(ctx, cardID); err != nil {
		return nil, err
	}
	return &res, nil
}

// deleteUserCascade removes allocations, decks and entries of a user, then
// the user.
func deleteUserCascade(ctx context.Context, tx ports.Repository, userID int64) (*domain.CascadeResult, error) {
	var res domain.CascadeResult
	var err error

	if res.Allocations, err = tx.DeleteAllocationsByUser(ctx, userID); err != nil {
		return nil, err
	}
	if res.Decks, err = tx.DeleteDecksByUser(ctx, userID); err != nil {
		return nil, err
	}
	if res.Entries, err = tx.DeleteEntriesByUser(ctx, userID); err != nil {
		return nil, err
	}
	if err = tx.DeleteUser(ctx, userID); err != nil {
		return nil, err
	}
	return &res, nil
}
