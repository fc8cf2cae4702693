// Package store provides SQLite persistence for disclosures and subscribers.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"idx-disclosure-bot/internal/models"
)

// SQLiteStore persists disclosures and the subscriber registry.
//
// The UNIQUE constraint on disclosures.id is the dedup mechanism: a second
// insert of the same id is the designed "already known" signal, not an error.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Disclosures table: one row per deduplicated announcement
	CREATE TABLE IF NOT EXISTS disclosures (
		id TEXT PRIMARY KEY,
		stock_code TEXT NOT NULL,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		event_time DATETIME,
		category TEXT,
		attachment_link TEXT,
		fetched_at DATETIME NOT NULL,
		notified INTEGER DEFAULT 0
	);

	-- Subscribers table: one row per chat, never hard-deleted
	CREATE TABLE IF NOT EXISTS subscribers (
		chat_id INTEGER PRIMARY KEY,
		display_name TEXT,
		subscribed_at DATETIME NOT NULL,
		active INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_disclosures_stock ON disclosures(stock_code);
	CREATE INDEX IF NOT EXISTS idx_disclosures_fetched ON disclosures(fetched_at);
	CREATE INDEX IF NOT EXISTS idx_subscribers_active ON subscribers(active);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertIfNew stores a disclosure, returning true iff this id was not seen
// before. A uniqueness conflict maps to (false, nil).
func (s *SQLiteStore) InsertIfNew(ctx context.Context, d *models.Disclosure) (bool, error) {
	var eventTime any
	if !d.EventTime.IsZero() {
		eventTime = d.EventTime
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disclosures (id, stock_code, title, date, event_time, category, attachment_link, fetched_at, notified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, d.ID, d.StockCode, d.Title, d.Date, eventTime, string(d.Category), d.AttachmentLink, d.FetchedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert disclosure: %w", err)
	}
	return true, nil
}

// MarkNotified flags a disclosure as having had its fanout initiated.
// Idempotent; advisory only.
func (s *SQLiteStore) MarkNotified(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE disclosures SET notified = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notified: %w", err)
	}
	return nil
}

// CountDisclosures returns the total number of stored disclosures.
func (s *SQLiteStore) CountDisclosures(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM disclosures`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count disclosures: %w", err)
	}
	return count, nil
}

// LatestDisclosures returns up to limit disclosures, most recent first.
// Rows with an unparseable upstream date sort by fetch time.
func (s *SQLiteStore) LatestDisclosures(ctx context.Context, limit int) ([]models.Disclosure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stock_code, title, date, event_time, category, attachment_link, fetched_at, notified
		FROM disclosures
		ORDER BY event_time DESC, fetched_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query disclosures: %w", err)
	}
	defer rows.Close()

	var disclosures []models.Disclosure
	for rows.Next() {
		var d models.Disclosure
		var eventTime sql.NullTime
		var category string
		var notified int
		if err := rows.Scan(&d.ID, &d.StockCode, &d.Title, &d.Date, &eventTime, &category, &d.AttachmentLink, &d.FetchedAt, &notified); err != nil {
			return nil, fmt.Errorf("failed to scan disclosure: %w", err)
		}
		if eventTime.Valid {
			d.EventTime = eventTime.Time
		}
		d.Category = models.Category(category)
		d.Notified = notified == 1
		disclosures = append(disclosures, d)
	}

	return disclosures, rows.Err()
}

// ActivateSubscriber upserts a subscriber: unconditionally active with a
// fresh subscription timestamp, regardless of prior state.
func (s *SQLiteStore) ActivateSubscriber(ctx context.Context, chatID int64, displayName string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO subscribers (chat_id, display_name, subscribed_at, active)
		VALUES (?, ?, ?, 1)
	`, chatID, displayName, time.Now())
	if err != nil {
		return fmt.Errorf("failed to activate subscriber: %w", err)
	}
	return nil
}

// DeactivateSubscriber marks a subscriber inactive. Deactivating an unknown
// or already-inactive chat is a no-op success.
func (s *SQLiteStore) DeactivateSubscriber(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE subscribers SET active = 0 WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	return nil
}

// ListActiveSubscribers returns the chat ids of all active subscribers.
func (s *SQLiteStore) ListActiveSubscribers(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id FROM subscribers WHERE active = 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	var chatIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		chatIDs = append(chatIDs, id)
	}

	return chatIDs, rows.Err()
}

// CountActiveSubscribers returns the number of active subscribers.
func (s *SQLiteStore) CountActiveSubscribers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers WHERE active = 1`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

// IsSubscribed reports whether the chat is an active subscriber.
func (s *SQLiteStore) IsSubscribed(ctx context.Context, chatID int64) (bool, error) {
	var active int
	err := s.db.QueryRowContext(ctx, `SELECT active FROM subscribers WHERE chat_id = ?`, chatID).Scan(&active)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query subscriber: %w", err)
	}
	return active == 1, nil
}
