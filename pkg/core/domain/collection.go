package domain

import (
	"strings"
	"time"
)

// Condition is the grade of a physically owned card.
type Condition string

const (
	NearMint         Condition = "Near Mint"
	LightlyPlayed    Condition = "Lightly Played"
	ModeratelyPlayed Condition = "Moderately Played"
	HeavilyPlayed    Condition = "Heavily Played"
	Damaged          Condition = "Damaged"
)

var conditions = []Condition{NearMint, LightlyPlayed, ModeratelyPlayed, HeavilyPlayed, Damaged}

// ParseCondition accepts one of the fixed grades. An empty value means Near Mint.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NearMint, nil
	}
	for _, c := range conditions {
		if string(c) == s {
			return c, nil
		}
	}
	names := make([]string, len(conditions))
	for i, c := range conditions {
		names[i] = string(c)
	}
	return "", Validation("invalid card condition, must be one of: %s", strings.Join(names, ", "))
}

// ValidateQuantity rejects quantities below one.
func ValidateQuantity(q int) error {
	if q < 1 {
		return Validation("quantity must be at least 1")
	}
	return nil
}

// CollectionEntry records physically owned copies of one card at one grade.
// Several entries for the same (user, card) are allowed and add up.
type CollectionEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CardID    string    `json:"card_id"`
	Quantity  int       `json:"quantity"`
	Condition Condition `json:"condition"`
	DateAdded time.Time `json:"date_added"`
}

// NewCollectionEntry validates the input and builds an unsaved entry.
func NewCollectionEntry(userID int64, cardID string, quantity int, condition string) (*CollectionEntry, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, Validation("card id is required")
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	cond, err := ParseCondition(condition)
	if err != nil {
		return nil, err
	}
	return &CollectionEntry{
		UserID:    userID,
		CardID:    cardID,
		Quantity:  quantity,
		Condition: cond,
		DateAdded: time.Now().UTC(),
	}, nil
}

// CollectionEntryView is an entry joined with card display fields.
type CollectionEntryView struct {
	CollectionEntry
	CardName string `json:"card_name"`
	SetName  string `json:"set_name"`
	Rarity   string `json:"rarity"`
}
