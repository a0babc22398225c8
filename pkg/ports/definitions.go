package ports

import (
	"context"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

// Repository defines storage operations. Lookups return (nil, nil) when the
// row does not exist.
type Repository interface {
	// Catalog
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	ListCards(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Card, error)
	CountCards(ctx context.Context, filters map[string]interface{}) (int64, error)
	UpsertCard(ctx context.Context, card *domain.Card) error
	DeleteCard(ctx context.Context, id string) (int64, error)
	CardHolders(ctx context.Context, cardID string) ([]int64, error) // users with entries or allocations of the card
	DumpCards(ctx context.Context) ([]domain.Card, error)             // For migration

	// Inventory ledger
	CreateEntry(ctx context.Context, entry *domain.CollectionEntry) error
	GetEntry(ctx context.Context, id int64) (*domain.CollectionEntry, error)
	UpdateEntry(ctx context.Context, entry *domain.CollectionEntry) error
	DeleteEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context, userID int64) ([]domain.CollectionEntryView, error)
	OwnedQuantity(ctx context.Context, userID int64, cardID string) (int, error)
	UserCardIDs(ctx context.Context, userID int64) ([]string, error)
	DeleteEntriesByCard(ctx context.Context, cardID string) (int64, error)
	DeleteEntriesByUser(ctx context.Context, userID int64) (int64, error)

	// Decks
	CreateDeck(ctx context.Context, deck *domain.Deck) error
	GetDeck(ctx context.Context, id int64) (*domain.Deck, error)
	UpdateDeck(ctx context.Context, deck *domain.Deck) error
	DeleteDeck(ctx context.Context, id int64) error
	ListDecks(ctx context.Context, userID int64) ([]domain.DeckSummary, error)
	DeleteDecksByUser(ctx context.Context, userID int64) (int64, error)

	// Allocations
	GetAllocation(ctx context.Context, deckID int64, cardID string) (*domain.Allocation, error)
	CreateAllocation(ctx context.Context, allocation *domain.Allocation) error
	SetAllocationQuantity(ctx context.Context, id int64, quantity int) error
	ListDeckAllocations(ctx context.Context, deckID int64) ([]domain.AllocationView, error)
	ListUserAllocations(ctx context.Context, userID int64, cardID string) ([]domain.Allocation, error)
	AllocatedQuantity(ctx context.Context, userID int64, cardID string) (int, error) // summed across the user's decks
	DeleteAllocationsByDeck(ctx context.Context, deckID int64) (int64, error)
	DeleteAllocationsByCard(ctx context.Context, cardID string) (int64, error)
	DeleteAllocationsByUser(ctx context.Context, userID int64) (int64, error)

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchLogin(ctx context.Context, id int64) error
	DeleteUser(ctx context.Context, id int64) error
}

// Store is a Repository that can run a unit of work. Calls made directly on
// the Store run in autocommit mode; multi-step writes go through WithinTx.
type Store interface {
	Repository
	// WithinTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
	Close() error
}

// CatalogService defines card reference data operations
type CatalogService interface {
	GetCard(ctx context.Context, id string) (*domain.Card, error)
	ListCards(ctx context.Context, page, limit int, search string) ([]domain.Card, int64, error)
	ImportCards(ctx context.Context, cards []domain.Card) (int, error)
	DeleteCard(ctx context.Context, id string) (*domain.CascadeResult, error)
}

// InventoryService defines the per-user ledger of owned cards
type InventoryService interface {
	AddEntry(ctx context.Context, userID int64, cardID string, quantity int, condition string) (*domain.CollectionEntry, error)
	UpdateEntry(ctx context.Context, userID, entryID int64, quantity int, condition string) (*domain.CollectionEntry, error)
	RemoveEntry(ctx context.Context, userID, entryID int64) error
	ListEntries(ctx context.Context, userID int64) ([]domain.CollectionEntryView, error)
	OwnedQuantity(ctx context.Context, userID int64, cardID string) (int, error)
}

// DeckService defines deck metadata operations
type DeckService interface {
	CreateDeck(ctx context.Context, userID int64, name, description string, isPublic bool) (*domain.Deck, error)
	GetDeck(ctx context.Context, userID, deckID int64) (*domain.DeckDetail, error)
	UpdateDeck(ctx context.Context, userID, deckID int64, name, description string, isPublic bool) (*domain.Deck, error)
	DeleteDeck(ctx context.Context, userID, deckID int64) (int64, error)
	ListDecks(ctx context.Context, userID int64) ([]domain.DeckSummary, error)
	ExportDeck(ctx context.Context, userID, deckID int64) (string, error)
}

// AllocationService commits owned copies to decks
type AllocationService interface {
	Allocate(ctx context.Context, userID, deckID int64, cardID string, quantity int) (*domain.Allocation, error)
	ListAllocationsForCard(ctx context.Context, userID int64, cardID string) ([]domain.Allocation, error)
}

// UserService defines account operations
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, login, password string) (*domain.User, error)
	FindOrCreateByEmail(ctx context.Context, email string) (*domain.User, error)
	Profile(ctx context.Context, userID int64) (*domain.Profile, error)
	DeleteUser(ctx context.Context, userID int64) (*domain.CascadeResult, error)
}
