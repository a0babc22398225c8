package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const MaxDeckNameLength = 100

// Deck is a named group of allocations owned by one user.
type Deck struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck validates already sanitized metadata and builds an unsaved deck.
func NewDeck(userID int64, name, description string, isPublic bool) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validation("deck name is required")
	}
	if utf8.RuneCountInString(name) > MaxDeckNameLength {
		return nil, Validation("deck name must be at most %d characters", MaxDeckNameLength)
	}
	now := time.Now().UTC()
	return &Deck{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Allocation commits copies of a card to a deck. One row per (deck, card).
type Allocation struct {
	ID       int64     `json:"id"`
	DeckID   int64     `json:"deck_id"`
	CardID   string    `json:"card_id"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

// AllocationView is an allocation joined with card display fields.
type AllocationView struct {
	Allocation
	CardName string `json:"card_name"`
	CardType string `json:"card_type"`
}

// DeckSummary is a deck with its card count computed at read time.
type DeckSummary struct {
	Deck
	CardCount int `json:"card_count"`
}

// DeckDetail is a deck with its allocations.
type DeckDetail struct {
	DeckSummary
	Cards []AllocationView `json:"cards"`
}

// AllocationPolicy selects how Allocate checks ownership.
type AllocationPolicy string

const (
	// PerDeckPolicy compares a single deck's prospective total with the
	// owned quantity. Copies may be committed to several decks at once.
	PerDeckPolicy AllocationPolicy = "per-deck"
	// GlobalPolicy compares the sum across all of the user's decks.
	GlobalPolicy AllocationPolicy = "global"
)

func ParseAllocationPolicy(s string) (AllocationPolicy, error) {
	switch AllocationPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PerDeckPolicy:
		return PerDeckPolicy, nil
	case GlobalPolicy:
		return GlobalPolicy, nil
	}
	return "", Validation("unknown allocation policy %q", s)
}
