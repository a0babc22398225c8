package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

// --- Deck Repository Implementation ---

func (r *queries) CreateDeck(ctx context.Context, deck *domain.Deck) error {
	query := `INSERT INTO decks (user_id, name, slug, description, is_public, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, query, deck.UserID, deck.Name, deck.Slug, deck.Description, deck.IsPublic, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create deck: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	deck.ID = id
	return nil
}

func (r *queries) GetDeck(ctx context.Context, id int64) (*domain.Deck, error) {
	query := `SELECT id, user_id, name, slug, description, is_public, created_at, updated_at FROM decks WHERE id = ?`

	var d domain.Deck
	err := r.q.QueryRowContext(ctx, query, id).Scan(&d.ID, &d.UserID, &d.Name, &d.Slug, &d.Description, &d.IsPublic, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deck %d: %w", id, err)
	}
	return &d, nil
}

func (r *queries) UpdateDeck(ctx context.Context, deck *domain.Deck) error {
	query := `UPDATE decks SET name = ?, slug = ?, description = ?, is_public = ?, updated_at = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query, deck.Name, deck.Slug, deck.Description, deck.IsPublic, deck.UpdatedAt, deck.ID)
	if err != nil {
		return fmt.Errorf("update deck %d: %w", deck.ID, err)
	}
	return nil
}

func (r *queries) DeleteDeck(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete deck %d: %w", id, err)
	}
	return nil
}

func (r *queries) ListDecks(ctx context.Context, userID int64) ([]domain.DeckSummary, error) {
	query := `SELECT d.id, d.user_id, d.name, d.slug, d.description, d.is_public, d.created_at, d.updated_at,
			  COALESCE(SUM(dc.quantity), 0)
			  FROM decks d
			  LEFT JOIN deck_cards dc ON dc.deck_id = d.id
			  WHERE d.user_id = ?
			  GROUP BY d.id
			  ORDER BY d.id ASC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.DeckSummary
	for rows.Next() {
		var s domain.DeckSummary
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &s.Slug, &s.Description, &s.IsPublic, &s.CreatedAt, &s.UpdatedAt, &s.CardCount); err != nil {
			return nil, err
		}
		decks = append(decks, s)
	}
	return decks, rows.Err()
}

func (r *queries) DeleteDecksByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM decks WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete decks of user %d: %w", userID, err)
	}
	return res.RowsAffected()
}

// --- Allocations ---

func (r *queries) GetAllocation(ctx context.Context, deckID int64, cardID string) (*domain.Allocation, error) {
	query := `SELECT id, deck_id, card_id, quantity, added_at FROM deck_cards WHERE deck_id = ? AND card_id = ?`

	var a domain.Allocation
	err := r.q.QueryRowContext(ctx, query, deckID, cardID).Scan(&a.ID, &a.DeckID, &a.CardID, &a.Quantity, &a.AddedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get allocation: %w", err)
	}
	return &a, nil
}

func (r *queries) CreateAllocation(ctx context.Context, allocation *domain.Allocation) error {
	query := `INSERT INTO deck_cards (deck_id, card_id, quantity, added_at) VALUES (?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, query, allocation.DeckID, allocation.CardID, allocation.Quantity, allocation.AddedAt)
	if err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	allocation.ID = id
	return nil
}

func (r *queries) SetAllocationQuantity(ctx context.Context, id int64, quantity int) error {
	_, err := r.q.ExecContext(ctx, `UPDATE deck_cards SET quantity = ? WHERE id = ?`, quantity, id)
	if err != nil {
		return fmt.Errorf("update allocation %d: %w", id, err)
	}
	return nil
}

func (r *queries) ListDeckAllocations(ctx context.Context, deckID int64) ([]domain.AllocationView, error) {
	query := `SELECT dc.id, dc.deck_id, dc.card_id, dc.quantity, dc.added_at, c.name, c.card_type
			  FROM deck_cards dc
			  JOIN cards c ON c.id = dc.card_id
			  WHERE dc.deck_id = ?
			  ORDER BY dc.card_id ASC`

	rows, err := r.q.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, fmt.Errorf("list deck allocations: %w", err)
	}
	defer rows.Close()

	var out []domain.AllocationView
	for rows.Next() {
		var v domain.AllocationView
		if err := rows.Scan(&v.ID, &v.DeckID, &v.CardID, &v.Quantity, &v.AddedAt, &v.CardName, &v.CardType); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *queries) ListUserAllocations(ctx context.Context, userID int64, cardID string) ([]domain.Allocation, error) {
	query := `SELECT dc.id, dc.deck_id, dc.card_id, dc.quantity, dc.added_at
			  FROM deck_cards dc
			  JOIN decks d ON d.id = dc.deck_id
			  WHERE d.user_id = ? AND dc.card_id = ?
			  ORDER BY dc.deck_id ASC`

	rows, err := r.q.QueryContext(ctx, query, userID, cardID)
	if err != nil {
		return nil, fmt.Errorf("list user allocations: %w", err)
	}
	defer rows.Close()

	var out []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		if err := rows.Scan(&a.ID, &a.DeckID, &a.CardID, &a.Quantity, &a.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *queries) AllocatedQuantity(ctx context.Context, userID int64, cardID string) (int, error) {
	query := `SELECT COALESCE(SUM(dc.quantity), 0)
			  FROM deck_cards dc
			  JOIN decks d ON d.id = dc.deck_id
			  WHERE d.user_id = ? AND dc.card_id = ?`

	var allocated int
	if err := r.q.QueryRowContext(ctx, query, userID, cardID).Scan(&allocated); err != nil {
		return 0, fmt.Errorf("allocated quantity: %w", err)
	}
	return allocated, nil
}

func (r *queries) DeleteAllocationsByDeck(ctx context.Context, deckID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, deckID)
	if err != nil {
		return 0, fmt.Errorf("delete allocations of deck %d: %w", deckID, err)
	}
	return res.RowsAffected()
}

func (r *queries) DeleteAllocationsByCard(ctx context.Context, cardID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM deck_cards WHERE card_id = ?`, cardID)
	if err != nil {
		return 0, fmt.Errorf("delete allocations of card %s: %w", cardID, err)
	}
	return res.RowsAffected()
}

func (r *queries) DeleteAllocationsByUser(ctx context.Context, userID int64) (int64, error) {
	query := `DELETE FROM deck_cards WHERE deck_id IN (SELECT id FROM decks WHERE user_id = ?)`
	res, err := r.q.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("delete allocations of user %d: %w", userID, err)
	}
	return res.RowsAffected()
}
