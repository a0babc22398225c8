package services

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
)

type DeckService struct {
	store    ports.Store
	locks    *ScopeLocks
	sanitize *bluemonday.Policy
}

func NewDeckService(store ports.Store, locks *ScopeLocks) *DeckService {
	return &DeckService{
		store:    store,
		locks:    locks,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// clean strips markup. Entities escaped by the policy are decoded again since
// decks are served as JSON, not HTML.
func (s *DeckService) clean(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitize.Sanitize(in)))
}

func (s *DeckService) CreateDeck(ctx context.Context, userID int64, name, description string, isPublic bool) (*domain.Deck, error) {
	deck, err := domain.NewDeck(userID, s.clean(name), s.clean(description), isPublic)
	if err != nil {
		return nil, err
	}
	deck.Slug = slug.Make(deck.Name)

	if err := s.store.CreateDeck(ctx, deck); err != nil {
		return nil, domain.Internal(err)
	}
	return deck, nil
}

func (s *DeckService) GetDeck(ctx context.Context, userID, deckID int64) (*domain.DeckDetail, error) {
	deck, err := s.ownedDeck(ctx, s.store, userID, deckID)
	if err != nil {
		return nil, err
	}

	cards, err := s.store.ListDeckAllocations(ctx, deckID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	detail := &domain.DeckDetail{
		DeckSummary: domain.DeckSummary{Deck: *deck},
		Cards:       cards,
	}
	for _, c := range cards {
		detail.CardCount += c.Quantity
	}
	return detail, nil
}

func (s *DeckService) UpdateDeck(ctx context.Context, userID, deckID int64, name, description string, isPublic bool) (*domain.Deck, error) {
	next, err := domain.NewDeck(userID, s.clean(name), s.clean(description), isPublic)
	if err != nil {
		return nil, err
	}

	var deck *domain.Deck
	err = s.store.WithinTx(ctx, func(tx ports.Repository) error {
		current, err := s.ownedDeck(ctx, tx, userID, deckID)
		if err != nil {
			return err
		}
		current.Name = next.Name
		current.Slug = slug.Make(next.Name)
		current.Description = next.Description
		current.IsPublic = next.IsPublic
		current.UpdatedAt = time.Now().UTC()
		deck = current
		return tx.UpdateDeck(ctx, current)
	})
	if err != nil {
		return nil, domain.Internal(err)
	}
	return deck, nil
}

// DeleteDeck removes the deck and its allocations and reports how many
// allocation rows went with it.
func (s *DeckService) DeleteDeck(ctx context.Context, userID, deckID int64) (int64, error) {
	scope := func(q ports.Repository) ([]string, error) {
		allocs, err := q.ListDeckAllocations(ctx, deckID)
		if err != nil {
			return nil, err
		}
		keys := make([]string, len(allocs))
		for i, a := range allocs {
			keys[i] = scopeKey(userID, a.CardID)
		}
		return keys, nil
	}

	var removed int64
	err := withScopedTx(ctx, s.store, s.locks, scope, func(tx ports.Repository) error {
		if _, err := s.ownedDeck(ctx, tx, userID, deckID); err != nil {
			return err
		}
		var err error
		removed, err = deleteDeckCascade(ctx, tx, deckID)
		return err
	})
	if err != nil {
		return 0, domain.Internal(err)
	}
	return removed, nil
}

func (s *DeckService) ListDecks(ctx context.Context, userID int64) ([]domain.DeckSummary, error) {
	decks, err := s.store.ListDecks(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return decks, nil
}

// ExportDeck renders the deck as a plain list: a "# name" header followed by
// one "<count>x<card id>" line per card, ordered by card id.
func (s *DeckService) ExportDeck(ctx context.Context, userID, deckID int64) (string, error) {
	detail, err := s.GetDeck(ctx, userID, deckID)
	if err != nil {
		return "", err
	}

	lines := []string{"# " + detail.Name}
	for _, c := range detail.Cards {
		lines = append(lines, fmt.Sprintf("%dx%s", c.Quantity, c.CardID))
	}
	return strings.Join(lines, "\n"), nil
}

// ownedDeck hides decks of other users behind NotFound.
func (s *DeckService) ownedDeck(ctx context.Context, q ports.Repository, userID, deckID int64) (*domain.Deck, error) {
	deck, err := q.GetDeck(ctx, deckID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if deck == nil || deck.UserID != userID {
		return nil, domain.NotFound("deck not found")
	}
	return deck, nil
}
