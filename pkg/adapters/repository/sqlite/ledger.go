package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
)

// --- Inventory ledger ---

func (r *queries) CreateEntry(ctx context.Context, entry *domain.CollectionEntry) error {
	query := `INSERT INTO collection_entries (user_id, card_id, quantity, card_condition, date_added)
			  VALUES (?, ?, ?, ?, ?)`

	res, err := r.q.ExecContext(ctx, query, entry.UserID, entry.CardID, entry.Quantity, string(entry.Condition), entry.DateAdded)
	if err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *queries) GetEntry(ctx context.Context, id int64) (*domain.CollectionEntry, error) {
	query := `SELECT id, user_id, card_id, quantity, card_condition, date_added FROM collection_entries WHERE id = ?`

	var e domain.CollectionEntry
	var cond string
	err := r.q.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.UserID, &e.CardID, &e.Quantity, &cond, &e.DateAdded)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	e.Condition = domain.Condition(cond)
	return &e, nil
}

func (r *queries) UpdateEntry(ctx context.Context, entry *domain.CollectionEntry) error {
	query := `UPDATE collection_entries SET quantity = ?, card_condition = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query, entry.Quantity, string(entry.Condition), entry.ID)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", entry.ID, err)
	}
	return nil
}

func (r *queries) DeleteEntry(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM collection_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

func (r *queries) ListEntries(ctx context.Context, userID int64) ([]domain.CollectionEntryView, error) {
	query := `SELECT e.id, e.user_id, e.card_id, e.quantity, e.card_condition, e.date_added, c.name, c.set_name, c.rarity
			  FROM collection_entries e
			  JOIN cards c ON c.id = e.card_id
			  WHERE e.user_id = ?
			  ORDER BY e.id ASC`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.CollectionEntryView
	for rows.Next() {
		var v domain.CollectionEntryView
		var cond string
		if err := rows.Scan(&v.ID, &v.UserID, &v.CardID, &v.Quantity, &cond, &v.DateAdded, &v.CardName, &v.SetName, &v.Rarity); err != nil {
			return nil, err
		}
		v.Condition = domain.Condition(cond)
		entries = append(entries, v)
	}
	return entries, rows.Err()
}

func (r *queries) OwnedQuantity(ctx context.Context, userID int64, cardID string) (int, error) {
	var owned int
	err := r.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM collection_entries WHERE user_id = ? AND card_id = ?`,
		userID, cardID).Scan(&owned)
	if err != nil {
		return 0, fmt.Errorf("owned quantity: %w", err)
	}
	return owned, nil
}

func (r *queries) UserCardIDs(ctx context.Context, userID int64) ([]string, error) {
	query := `SELECT card_id FROM collection_entries WHERE user_id = ?
			  UNION
			  SELECT dc.card_id FROM deck_cards dc JOIN decks d ON d.id = dc.deck_id WHERE d.user_id = ?
			  ORDER BY 1`
	rows, err := r.q.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("user cards: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *queries) DeleteEntriesByCard(ctx context.Context, cardID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM collection_entries WHERE card_id = ?`, cardID)
	if err != nil {
		return 0, fmt.Errorf("delete entries of card %s: %w", cardID, err)
	}
	return res.RowsAffected()
}

func (r *queries) DeleteEntriesByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM collection_entries WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete entries of user %d: %w", userID, err)
	}
	return res.RowsAffected()
}
