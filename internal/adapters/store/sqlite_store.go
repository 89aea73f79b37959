package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/antispam-admin/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the store ports. Timestamps are
// stored as UTC RFC3339 strings so range predicates compare correctly.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) a SQLite store at the given path
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db, logger: logger}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS senders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			phone_number TEXT NOT NULL UNIQUE,
			spam_count INTEGER NOT NULL DEFAULT 0,
			is_blocked BOOLEAN NOT NULL DEFAULT 0,
			last_seen TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER REFERENCES senders(id),
			receiver_number TEXT NOT NULL,
			body TEXT NOT NULL,
			category TEXT,
			received_at TIMESTAMP NOT NULL,
			is_spam BOOLEAN NOT NULL DEFAULT 0,
			confidence REAL,
			blocked BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			caller_id INTEGER REFERENCES senders(id),
			callee_number TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			category TEXT,
			is_spam BOOLEAN NOT NULL DEFAULT 0,
			confidence REAL,
			blocked BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_received_at ON messages(received_at)`,
		`CREATE INDEX IF NOT EXISTS idx_calls_started_at ON calls(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Messages returns the store's core.MessageStore view.
func (s *SQLiteStore) Messages() core.MessageStore { return sqliteMessages{s} }

// Calls returns the store's core.CallStore view.
func (s *SQLiteStore) Calls() core.CallStore { return sqliteCalls{s} }

// Senders returns the store's core.SenderStore view.
func (s *SQLiteStore) Senders() core.SenderStore { return s }

type sqliteMessages struct{ store *SQLiteStore }

func (m sqliteMessages) ListByRange(ctx context.Context, start, end *time.Time) ([]core.Message, error) {
	query := `SELECT m.id, m.sender_id, s.phone_number, s.is_blocked,
		m.receiver_number, m.body, m.category, m.received_at, m.is_spam,
		m.confidence, m.blocked
		FROM messages m LEFT JOIN senders s ON s.id = m.sender_id
		WHERE 1=1`
	clause, args := timeClause("m.received_at", start, end, nil)
	query += clause + " ORDER BY m.received_at DESC"

	rows, err := m.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]core.Message, 0)
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

type sqliteCalls struct{ store *SQLiteStore }

func (c sqliteCalls) ListByRange(ctx context.Context, start, end *time.Time) ([]core.Call, error) {
	query := `SELECT c.id, c.caller_id, s.phone_number, s.is_blocked,
		c.callee_number, c.started_at, c.duration_seconds, c.category,
		c.is_spam, c.confidence, c.blocked
		FROM calls c LEFT JOIN senders s ON s.id = c.caller_id
		WHERE 1=1`
	clause, args := timeClause("c.started_at", start, end, nil)
	query += clause + " ORDER BY c.started_at DESC"

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	calls := make([]core.Call, 0)
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// List returns all senders ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]core.Sender, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_number, spam_count, is_blocked, last_seen FROM senders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query senders: %w", err)
	}
	defer rows.Close()

	senders := make([]core.Sender, 0)
	for rows.Next() {
		sender, err := scanSender(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sender row: %w", err)
		}
		senders = append(senders, sender)
	}
	return senders, rows.Err()
}

// GetByID returns the sender with the given id.
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (*core.Sender, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, phone_number, spam_count, is_blocked, last_seen FROM senders WHERE id = ?`, id)
	sender, err := scanSender(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrSenderNotFound
		}
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}
	return &sender, nil
}

// SetBlocked updates the blocked flag and returns the updated sender.
func (s *SQLiteStore) SetBlocked(ctx context.Context, id int64, blocked bool) (*core.Sender, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE senders SET is_blocked = ? WHERE id = ?`, blocked, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update sender: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return nil, core.ErrSenderNotFound
	}
	return s.GetByID(ctx, id)
}

// Seed drops existing rows and loads the demo dataset.
func (s *SQLiteStore) Seed(ctx context.Context, data *DemoData) error {
	for _, table := range []string{"messages", "calls", "senders"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	ids := make([]int64, len(data.Senders))
	for i, sender := range data.Senders {
		var lastSeen interface{}
		if sender.LastSeen != nil {
			lastSeen = sender.LastSeen.UTC().Format(time.RFC3339)
		}
		result, err := s.db.ExecContext(ctx,
			`INSERT INTO senders (phone_number, spam_count, is_blocked, last_seen) VALUES (?, ?, ?, ?)`,
			sender.PhoneNumber, sender.SpamCount, sender.IsBlocked, lastSeen)
		if err != nil {
			return fmt.Errorf("failed to seed sender: %w", err)
		}
		ids[i], err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read sender id: %w", err)
		}
	}

	for _, seed := range data.Messages {
		var senderID interface{}
		if seed.SenderIndex >= 0 {
			senderID = ids[seed.SenderIndex]
		}
		message := seed.Message
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO messages (sender_id, receiver_number, body, category, received_at, is_spam, confidence, blocked)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			senderID, message.ReceiverNumber, message.Body, nullableString(message.Category),
			message.ReceivedAt.UTC().Format(time.RFC3339), message.IsSpam,
			nullableFloat(message.Confidence), message.Blocked)
		if err != nil {
			return fmt.Errorf("failed to seed message: %w", err)
		}
	}

	for _, seed := range data.Calls {
		var callerID interface{}
		if seed.CallerIndex >= 0 {
			callerID = ids[seed.CallerIndex]
		}
		call := seed.Call
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO calls (caller_id, callee_number, started_at, duration_seconds, category, is_spam, confidence, blocked)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			callerID, call.CalleeNumber, call.StartedAt.UTC().Format(time.RFC3339),
			call.DurationSeconds, nullableString(call.Category), call.IsSpam,
			nullableFloat(call.Confidence), call.Blocked)
		if err != nil {
			return fmt.Errorf("failed to seed call: %w", err)
		}
	}

	s.logger.Info("Seeded SQLite store",
		zap.Int("senders", len(data.Senders)),
		zap.Int("messages", len(data.Messages)),
		zap.Int("calls", len(data.Calls)))
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
