// Package store provides the persistence adapters behind the core store
// ports: an in-memory store for tests and demos, and SQLite and MySQL
// stores for real deployments. All of them resolve originator numbers
// eagerly so the analytics engine works from a single fetch.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mikey/antispam-admin/internal/core"
)

// Store bundles the three entity stores behind one handle so the factory
// can hand a single object to the DI container.
type Store interface {
	Messages() core.MessageStore
	Calls() core.CallStore
	Senders() core.SenderStore

	// Seed replaces the store contents with the demo dataset.
	Seed(ctx context.Context, data *DemoData) error

	// Close releases underlying resources.
	Close() error
}

// timeClause appends inclusive bound conditions for the given timestamp
// column. Bounds are formatted as UTC RFC3339 so string comparison in
// SQLite matches chronological order.
func timeClause(column string, start, end *time.Time, args []interface{}) (string, []interface{}) {
	clause := ""
	if start != nil {
		clause += " AND " + column + " >= ?"
		args = append(args, start.UTC().Format(time.RFC3339))
	}
	if end != nil {
		clause += " AND " + column + " <= ?"
		args = append(args, end.UTC().Format(time.RFC3339))
	}
	return clause, args
}

func scanMessage(rows *sql.Rows) (core.Message, error) {
	var (
		message    core.Message
		senderID   sql.NullInt64
		senderNum  sql.NullString
		senderBlk  sql.NullBool
		category   sql.NullString
		receivedAt string
		confidence sql.NullFloat64
	)
	err := rows.Scan(&message.ID, &senderID, &senderNum, &senderBlk,
		&message.ReceiverNumber, &message.Body, &category, &receivedAt,
		&message.IsSpam, &confidence, &message.Blocked)
	if err != nil {
		return message, err
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
	message.ReceivedAt, err = time.Parse(time.RFC3339, receivedAt)
	return message, err
}

func scanCall(rows *sql.Rows) (core.Call, error) {
	var (
		call       core.Call
		callerID   sql.NullInt64
		callerNum  sql.NullString
		callerBlk  sql.NullBool
		category   sql.NullString
		startedAt  string
		confidence sql.NullFloat64
	)
	err := rows.Scan(&call.ID, &callerID, &callerNum, &callerBlk,
		&call.CalleeNumber, &startedAt, &call.DurationSeconds, &category,
		&call.IsSpam, &confidence, &call.Blocked)
	if err != nil {
		return call, err
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
	call.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	return call, err
}

func scanSender(scanner interface{ Scan(...interface{}) error }) (core.Sender, error) {
	var (
		sender   core.Sender
		lastSeen sql.NullString
	)
	err := scanner.Scan(&sender.ID, &sender.PhoneNumber, &sender.SpamCount,
		&sender.IsBlocked, &lastSeen)
	if err != nil {
		return sender, err
	}
	if lastSeen.Valid && lastSeen.String != "" {
		parsed, perr := time.Parse(time.RFC3339, lastSeen.String)
		if perr != nil {
			return sender, perr
		}
		sender.LastSeen = &parsed
	}
	return sender, nil
}
