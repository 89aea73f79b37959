package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/antispam-admin/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the store ports. The DSN must
// include parseTime=true so DATETIME columns scan into time.Time.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore connects to MySQL and ensures the schema exists
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	store := &MySQLStore{db: db, logger: logger}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *MySQLStore) createTables() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS senders (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			phone_number VARCHAR(32) NOT NULL UNIQUE,
			spam_count INT NOT NULL DEFAULT 0,
			is_blocked BOOLEAN NOT NULL DEFAULT FALSE,
			last_seen DATETIME NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			sender_id BIGINT NULL,
			receiver_number VARCHAR(32) NOT NULL,
			body TEXT NOT NULL,
			category VARCHAR(64) NULL,
			received_at DATETIME NOT NULL,
			is_spam BOOLEAN NOT NULL DEFAULT FALSE,
			confidence DOUBLE NULL,
			blocked BOOLEAN NOT NULL DEFAULT FALSE,
			INDEX idx_messages_received_at (received_at)
		)`,
		`CREATE TABLE IF NOT EXISTS calls (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			caller_id BIGINT NULL,
			callee_number VARCHAR(32) NOT NULL,
			started_at DATETIME NOT NULL,
			duration_seconds INT NOT NULL DEFAULT 0,
			category VARCHAR(64) NULL,
			is_spam BOOLEAN NOT NULL DEFAULT FALSE,
			confidence DOUBLE NULL,
			blocked BOOLEAN NOT NULL DEFAULT FALSE,
			INDEX idx_calls_started_at (started_at)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Messages returns the store's core.MessageStore view.
func (s *MySQLStore) Messages() core.MessageStore { return mysqlMessages{s} }

// Calls returns the store's core.CallStore view.
func (s *MySQLStore) Calls() core.CallStore { return mysqlCalls{s} }

// Senders returns the store's core.SenderStore view.
func (s *MySQLStore) Senders() core.SenderStore { return s }

func mysqlTimeClause(column string, start, end *time.Time, args []interface{}) (string, []interface{}) {
	clause := ""
	if start != nil {
		clause += " AND " + column + " >= ?"
		args = append(args, start.UTC())
	}
	if end != nil {
		clause += " AND " + column + " <= ?"
		args = append(args, end.UTC())
	}
	return clause, args
}

type mysqlMessages struct{ store *MySQLStore }

func (m mysqlMessages) ListByRange(ctx context.Context, start, end *time.Time) ([]core.Message, error) {
	query := `SELECT m.id, m.sender_id, s.phone_number, s.is_blocked,
		m.receiver_number, m.body, m.category, m.received_at, m.is_spam,
		m.confidence, m.blocked
		FROM messages m LEFT JOIN senders s ON s.id = m.sender_id
		WHERE 1=1`
	clause, args := mysqlTimeClause("m.received_at", start, end, nil)
	query += clause + " ORDER BY m.received_at DESC"

	rows, err := m.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]core.Message, 0)
	for rows.Next() {
		var (
			message    core.Message
			senderID   sql.NullInt64
			senderNum  sql.NullString
			senderBlk  sql.NullBool
			category   sql.NullString
			confidence sql.NullFloat64
		)
		err := rows.Scan(&message.ID, &senderID, &senderNum, &senderBlk,
			&message.ReceiverNumber, &message.Body, &category, &message.ReceivedAt,
			&message.IsSpam, &confidence, &message.Blocked)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		if senderID.Valid {
			message.SenderID = &senderID.Int64
		}
		if senderNum.Valid {
			message.SenderNumber = &senderNum.String
		}
		message.SenderBlocked = senderBlk.Valid && senderBlk.Bool
		if category.Valid && category.String != "" {
			message.Category = &category.String
		}
		if confidence.Valid {
			message.Confidence = &confidence.Float64
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

type mysqlCalls struct{ store *MySQLStore }

func (c mysqlCalls) ListByRange(ctx context.Context, start, end *time.Time) ([]core.Call, error) {
	query := `SELECT c.id, c.caller_id, s.phone_number, s.is_blocked,
		c.callee_number, c.started_at, c.duration_seconds, c.category,
		c.is_spam, c.confidence, c.blocked
		FROM calls c LEFT JOIN senders s ON s.id = c.caller_id
		WHERE 1=1`
	clause, args := mysqlTimeClause("c.started_at", start, end, nil)
	query += clause + " ORDER BY c.started_at DESC"

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	calls := make([]core.Call, 0)
	for rows.Next() {
		var (
			call       core.Call
			callerID   sql.NullInt64
			callerNum  sql.NullString
			callerBlk  sql.NullBool
			category   sql.NullString
			confidence sql.NullFloat64
		)
		err := rows.Scan(&call.ID, &callerID, &callerNum, &callerBlk,
			&call.CalleeNumber, &call.StartedAt, &call.DurationSeconds, &category,
			&call.IsSpam, &confidence, &call.Blocked)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		if callerID.Valid {
			call.CallerID = &callerID.Int64
		}
		if callerNum.Valid {
			call.CallerNumber = &callerNum.String
		}
		call.CallerBlocked = callerBlk.Valid && callerBlk.Bool
		if category.Valid && category.String != "" {
			call.Category = &category.String
		}
		if confidence.Valid {
			call.Confidence = &confidence.Float64
		}
		calls = append(calls, call)
	}
	return calls, rows.Err()
}

// List returns all senders ordered by id.
func (s *MySQLStore) List(ctx context.Context) ([]core.Sender, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, phone_number, spam_count, is_blocked, last_seen FROM senders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query senders: %w", err)
	}
	defer rows.Close()

	senders := make([]core.Sender, 0)
	for rows.Next() {
		var (
			sender   core.Sender
			lastSeen sql.NullTime
		)
		if err := rows.Scan(&sender.ID, &sender.PhoneNumber, &sender.SpamCount,
			&sender.IsBlocked, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan sender row: %w", err)
		}
		if lastSeen.Valid {
			sender.LastSeen = &lastSeen.Time
		}
		senders = append(senders, sender)
	}
	return senders, rows.Err()
}

// GetByID returns the sender with the given id.
func (s *MySQLStore) GetByID(ctx context.Context, id int64) (*core.Sender, error) {
	var (
		sender   core.Sender
		lastSeen sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, phone_number, spam_count, is_blocked, last_seen FROM senders WHERE id = ?`, id).
		Scan(&sender.ID, &sender.PhoneNumber, &sender.SpamCount, &sender.IsBlocked, &lastSeen)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrSenderNotFound
		}
		return nil, fmt.Errorf("failed to load sender: %w", err)
	}
	if lastSeen.Valid {
		sender.LastSeen = &lastSeen.Time
	}
	return &sender, nil
}

// SetBlocked updates the blocked flag and returns the updated sender.
func (s *MySQLStore) SetBlocked(ctx context.Context, id int64, blocked bool) (*core.Sender, error) {
	// MySQL reports zero affected rows for no-op updates, so existence is
	// checked by the follow-up read rather than RowsAffected.
	if _, err := s.db.ExecContext(ctx,
		`UPDATE senders SET is_blocked = ? WHERE id = ?`, blocked, id); err != nil {
		return nil, fmt.Errorf("failed to update sender: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Seed drops existing rows and loads the demo dataset.
func (s *MySQLStore) Seed(ctx context.Context, data *DemoData) error {
	for _, table := range []string{"messages", "calls", "senders"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	ids := make([]int64, len(data.Senders))
	for i, sender := range data.Senders {
		var lastSeen interface{}
		if sender.LastSeen != nil {
			lastSeen = sender.LastSeen.UTC()
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
			message.ReceivedAt.UTC(), message.IsSpam, nullableFloat(message.Confidence), message.Blocked)
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
			callerID, call.CalleeNumber, call.StartedAt.UTC(), call.DurationSeconds,
			nullableString(call.Category), call.IsSpam, nullableFloat(call.Confidence), call.Blocked)
		if err != nil {
			return fmt.Errorf("failed to seed call: %w", err)
		}
	}

	s.logger.Info("Seeded MySQL store",
		zap.Int("senders", len(data.Senders)),
		zap.Int("messages", len(data.Messages)),
		zap.Int("calls", len(data.Calls)))
	return nil
}

// Close closes the database connection.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
