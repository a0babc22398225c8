package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"github.com/wadjakorntonsri/go-card-collection/pkg/core/domain"
	"github.com/wadjakorntonsri/go-card-collection/pkg/ports"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements ports.Repository on top of a connection or a transaction.
type queries struct {
	q querier
}

type SQLiteRepository struct {
	*queries
	db *sql.DB
}

func NewSQLiteRepository(dbURL string) (*SQLiteRepository, error) {
	driverName := "sqlite"
	if strings.Contains(dbURL, "libsql://") || strings.Contains(dbURL, "wss://") {
		driverName = "libsql"
	} else {
		dbURL = localDSN(dbURL)
	}

	db, err := sql.Open(driverName, dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{queries: &queries{q: db}, db: db}, nil
}

// localDSN adds the connection pragmas the ledger relies on: foreign keys as
// a cascade backstop, a busy timeout so writers wait for each other, and
// immediate transactions so a transaction holds the write lock from BEGIN.
func localDSN(dbURL string) string {
	params := []string{}
	if !strings.Contains(dbURL, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dbURL, "busy_timeout") {
		params = append(params, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dbURL, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dbURL
	}
	sep := "?"
	if strings.Contains(dbURL, "?") {
		sep = "&"
	}
	return dbURL + sep + strings.Join(params, "&")
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		date_joined DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_login DATETIME
	);

	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		set_name TEXT NOT NULL,
		card_type TEXT NOT NULL DEFAULT '',
		rarity TEXT NOT NULL DEFAULT '',
		energy_type TEXT NOT NULL DEFAULT '',
		hp INTEGER NOT NULL DEFAULT 0,
		attack_names JSON,
		description TEXT NOT NULL DEFAULT '',
		evolution_stage TEXT NOT NULL DEFAULT '',
		weakness TEXT NOT NULL DEFAULT '',
		resistance TEXT NOT NULL DEFAULT '',
		retreat_cost INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(name);

	CREATE TABLE IF NOT EXISTS collection_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		card_id TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		card_condition TEXT NOT NULL DEFAULT 'Near Mint',
		date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_collection_entries_user_card ON collection_entries(user_id, card_id);
	CREATE INDEX IF NOT EXISTS idx_collection_entries_card ON collection_entries(card_id);

	CREATE TABLE IF NOT EXISTS decks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		is_public INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_decks_user ON decks(user_id);

	CREATE TABLE IF NOT EXISTS deck_cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		deck_id INTEGER NOT NULL,
		card_id TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		added_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (deck_id, card_id),
		FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE,
		FOREIGN KEY(card_id) REFERENCES cards(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_deck_cards_card ON deck_cards(card_id);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// WithinTx runs fn inside a single transaction bound to ctx. A cancelled
// context rolls the transaction back.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(tx ports.Repository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// --- Catalog ---

const cardColumns = `id, name, set_name, card_type, rarity, energy_type, hp, attack_names,
	description, evolution_stage, weakness, resistance, retreat_cost, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*domain.Card, error) {
	var c domain.Card
	var attacksJSON []byte
	if err := s.Scan(&c.ID, &c.Name, &c.SetName, &c.CardType, &c.Rarity, &c.EnergyType, &c.HP, &attacksJSON,
		&c.Description, &c.EvolutionStage, &c.Weakness, &c.Resistance, &c.RetreatCost, &c.CreatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal(attacksJSON, &c.AttackNames)
	return &c, nil
}

func (r *queries) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = ?`

	card, err := scanCard(r.q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", id, err)
	}
	return card, nil
}

func cardFilters(filters map[string]interface{}) (string, []interface{}) {
	where := ""
	args := []interface{}{}
	if search, ok := filters["search"].(string); ok && search != "" {
		where += " AND (name LIKE ? OR set_name LIKE ? OR id LIKE ?)"
		args = append(args, "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}
	if set, ok := filters["set"].(string); ok && set != "" {
		where += " AND set_name = ?"
		args = append(args, set)
	}
	return where, args
}

func (r *queries) ListCards(ctx context.Context, limit, offset int, filters map[string]interface{}) ([]domain.Card, error) {
	where, args := cardFilters(filters)
	query := `SELECT ` + cardColumns + ` FROM cards WHERE 1 = 1` + where + ` ORDER BY set_name, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (r *queries) CountCards(ctx context.Context, filters map[string]interface{}) (int64, error) {
	where, args := cardFilters(filters)
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE 1 = 1`+where, args...).Scan(&count)
	return count, err
}

func (r *queries) UpsertCard(ctx context.Context, card *domain.Card) error {
	query := `INSERT INTO cards (id, name, set_name, card_type, rarity, energy_type, hp, attack_names,
			  description, evolution_stage, weakness, resistance, retreat_cost, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(id) DO UPDATE SET
			  name = excluded.name, set_name = excluded.set_name, card_type = excluded.card_type,
			  rarity = excluded.rarity, energy_type = excluded.energy_type, hp = excluded.hp,
			  attack_names = excluded.attack_names, description = excluded.description,
			  evolution_stage = excluded.evolution_stage, weakness = excluded.weakness,
			  resistance = excluded.resistance, retreat_cost = excluded.retreat_cost`

	attacksJSON, err := json.Marshal(card.AttackNames)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query, card.ID, card.Name, card.SetName, card.CardType, card.Rarity, card.EnergyType,
		card.HP, attacksJSON, card.Description, card.EvolutionStage, card.Weakness, card.Resistance, card.RetreatCost,
		card.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", card.ID, err)
	}
	return nil
}

func (r *queries) DeleteCard(ctx context.Context, id string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete card %s: %w", id, err)
	}
	return res.RowsAffected()
}

func (r *queries) CardHolders(ctx context.Context, cardID string) ([]int64, error) {
	query := `SELECT user_id FROM collection_entries WHERE card_id = ?
			  UNION
			  SELECT d.user_id FROM deck_cards dc JOIN decks d ON d.id = dc.deck_id WHERE dc.card_id = ?
			  ORDER BY 1`
	rows, err := r.q.QueryContext(ctx, query, cardID, cardID)
	if err != nil {
		return nil, fmt.Errorf("card holders %s: %w", cardID, err)
	}
	defer rows.Close()

	var users []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (r *queries) DumpCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

// Ensure interface compliance
var _ ports.Store = (*SQLiteRepository)(nil)
