package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/go-card-collection/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
)

type fixture struct {
	store     ports.Store
	locks     *ScopeLocks
	catalog   *CatalogService
	inventory *InventoryService
	decks     *DeckService
	alloc     *AllocationService
	users     *UserService
}

func newFixture(t *testing.T, policy domain.AllocationPolicy) *fixture {
	t.Helper()

	dbURL := "file:" + filepath.Join(t.TempDir(), "cards.db")
	repo, err := sqlite.NewSQLiteRepository(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return newFixtureWithStore(t, repo, policy)
}

func newFixtureWithStore(t *testing.T, store ports.Store, policy domain.AllocationPolicy) *fixture {
	t.Helper()

	locks := NewScopeLocks()
	f := &fixture{
		store:     store,
		locks:     locks,
		catalog:   NewCatalogService(store, locks),
		inventory: NewInventoryService(store, locks),
		decks:     NewDeckService(store, locks),
		alloc:     NewAllocationService(store, locks, policy),
		users:     NewUserService(store, locks),
	}
	f.users.hashCost = 4 // bcrypt.MinCost keeps tests fast

	_, err := f.catalog.ImportCards(context.Background(), []domain.Card{
		{ID: "base-4", Name: "Charizard", SetName: "Base", CardType: "Pokemon", Rarity: "Rare Holo", HP: 120},
		{ID: "base-2", Name: "Blastoise", SetName: "Base", CardType: "Pokemon", Rarity: "Rare Holo", HP: 100},
		{ID: "base-58", Name: "Pikachu", SetName: "Base", CardType: "Pokemon", Rarity: "Common", HP: 40},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, name string) int64 {
	t.Helper()
	u := &domain.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		DateJoined:   time.Now().UTC(),
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u.ID
}

func (f *fixture) own(t *testing.T, userID int64, cardID string, quantities ...int) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(quantities))
	for _, q := range quantities {
		e, err := f.inventory.AddEntry(context.Background(), userID, cardID, q, "")
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	return ids
}

func (f *fixture) deck(t *testing.T, userID int64, name string) int64 {
	t.Helper()
	d, err := f.decks.CreateDeck(context.Background(), userID, name, "", false)
	require.NoError(t, err)
	return d.ID
}

func requireKind(t *testing.T, err error, kind domain.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "unexpected error: %v", err)
}
