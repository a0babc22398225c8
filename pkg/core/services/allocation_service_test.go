package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

func TestAllocate_CapsAtOwnedQuantity(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.own(t, alice, "base-4", 1, 1)
	deckA := f.deck(t, alice, "Deck A")

	a, err := f.alloc.Allocate(ctx, alice, deckA, "base-4", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Quantity)

	_, err = f.alloc.Allocate(ctx, alice, deckA, "base-4", 1)
	requireKind(t, err, domain.KindConflict)
	assert.Equal(t, domain.ReasonInsufficientQuantity, domain.ReasonOf(err))

	allocs, err := f.alloc.ListAllocationsForCard(ctx, alice, "base-4")
	require.NoError(t, err)
	require.Len(t, allocs, 1)
	assert.Equal(t, 2, allocs[0].Quantity)
}

func TestAllocate_CardNotInCollection(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	alice := f.user(t, "alice")
	deckA := f.deck(t, alice, "Deck A")

	_, err := f.alloc.Allocate(context.Background(), alice, deckA, "base-4", 1)
	requireKind(t, err, domain.KindConflict)
	assert.Equal(t, domain.ReasonCardNotInCollection, domain.ReasonOf(err))
}

func TestAllocate_RepeatedCallsAddUp(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.own(t, alice, "base-2", 4)
	deckA := f.deck(t, alice, "Deck A")

	_, err := f.alloc.Allocate(ctx, alice, deckA, "base-2", 1)
	require.NoError(t, err)
	a, err := f.alloc.Allocate(ctx, alice, deckA, "base-2", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Quantity)

	decks, err := f.decks.ListDecks(ctx, alice)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, 3, decks[0].CardCount)
}

func TestAllocate_Validation(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	alice := f.user(t, "alice")
	f.own(t, alice, "base-4", 2)
	deckA := f.deck(t, alice, "Deck A")

	tests := []struct {
		name     string
		cardID   string
		quantity int
	}{
		{"zero quantity", "base-4", 0},
		{"negative quantity", "base-4", -2},
		{"blank card", "  ", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.alloc.Allocate(context.Background(), alice, deckA, tt.cardID, tt.quantity)
			requireKind(t, err, domain.KindValidation)
		})
	}
}

func TestAllocate_DeckOfAnotherUserIsNotFound(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	f.own(t, bob, "base-4", 2)
	aliceDeck := f.deck(t, alice, "Mine")

	_, err := f.alloc.Allocate(context.Background(), bob, aliceDeck, "base-4", 1)
	requireKind(t, err, domain.KindNotFound)

	_, err = f.alloc.Allocate(context.Background(), bob, 9999, "base-4", 1)
	requireKind(t, err, domain.KindNotFound)
}

func TestAllocate_PerDeckPolicyAllowsCrossDeckOvercommit(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.own(t, alice, "base-4", 2)
	deckA := f.deck(t, alice, "Deck A")
	deckB := f.deck(t, alice, "Deck B")

	_, err := f.alloc.Allocate(ctx, alice, deckA, "base-4", 2)
	require.NoError(t, err)
	_, err = f.alloc.Allocate(ctx, alice, deckB, "base-4", 2)
	require.NoError(t, err)
}

func TestAllocate_GlobalPolicyRejectsCrossDeckOvercommit(t *testing.T) {
	f := newFixture(t, domain.GlobalPolicy)
	ctx := context.Background()
	alice := f.user(t, "alice")
	f.own(t, alice, "base-4", 2)
	deckA := f.deck(t, alice, "Deck A")
	deckB := f.deck(t, alice, "Deck B")

	_, err := f.alloc.Allocate(ctx, alice, deckA, "base-4", 1)
	require.NoError(t, err)
	_, err = f.alloc.Allocate(ctx, alice, deckB, "base-4", 1)
	require.NoError(t, err)
	_, err = f.alloc.Allocate(ctx, alice, deckB, "base-4", 1)
	requireKind(t, err, domain.KindConflict)
}

func TestAllocate_ConcurrentCallsNeverExceedOwned(t *testing.T) {
	f := newFixture(t, domain.PerDeckPolicy)
	alice := f.user(t, "alice")
	f.own(t, alice, "base-4", 2, 1)
	deckA := f.deck(t, alice, "Deck A")

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.alloc.Allocate(context.Background(), alice, deckA, "base-4", 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, domain.KindConflict, domain.KindOf(err), "unexpected error: %v", err)
	}
	assert.Equal(t, 3, succeeded)

	detail, err := f.decks.GetDeck(context.Background(), alice, deckA)
	require.NoError(t, err)
	assert.Equal(t, 3, detail.CardCount)
}

func TestAllocate_ConcurrentGlobalAcrossDecks(t *testing.T) {
	f := newFixture(t, domain.GlobalPolicy)
	alice := f.user(t, "alice")
	f.own(t, alice, "base-2", 3)
	decks := []int64{f.deck(t, alice, "A"), f.deck(t, alice, "B"), f.deck(t, alice, "C")}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(deckID int64) {
			defer wg.Done()
			if _, err := f.alloc.Allocate(context.Background(), alice, deckID, "base-2", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(decks[i%len(decks)])
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	allocated, err := f.store.AllocatedQuantity(context.Background(), alice, "base-2")
	require.NoError(t, err)
	assert.Equal(t, 3, allocated)
}
