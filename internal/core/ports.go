package core

import (
	"context"
	"errors"
	"time"
)

// ErrSenderNotFound is returned when a sender id does not resolve.
var ErrSenderNotFound = errors.New("sender not found")

// ErrClassifierUnavailable is returned when the LLM provider cannot produce
// a usable classification (missing credentials, upstream error, unparseable
// response). Callers surface it as a service-unavailable condition.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// MessageStore provides read access to stored SMS messages.
type MessageStore interface {
	// ListByRange returns messages with received_at inside the inclusive
	// [start, end] window (either bound may be nil), ordered most recent
	// first, with the sender number and blocked flag already resolved.
	ListByRange(ctx context.Context, start, end *time.Time) ([]Message, error)
}

// CallStore provides read access to stored voice calls.
type CallStore interface {
	// ListByRange returns calls with started_at inside the inclusive
	// [start, end] window (either bound may be nil), ordered most recent
	// first, with the caller number and blocked flag already resolved.
	ListByRange(ctx context.Context, start, end *time.Time) ([]Call, error)
}

// SenderStore provides access to sender records.
type SenderStore interface {
	// List returns all known senders.
	List(ctx context.Context) ([]Sender, error)

	// GetByID returns the sender with the given id, or ErrSenderNotFound.
	GetByID(ctx context.Context, id int64) (*Sender, error)

	// SetBlocked updates the blocked flag and returns the updated sender,
	// or ErrSenderNotFound when the id does not resolve.
	SetBlocked(ctx context.Context, id int64, blocked bool) (*Sender, error)
}

// Classifier defines the interface for LLM-backed text classification.
type Classifier interface {
	// ClassifyText classifies a single text and returns the normalized result.
	ClassifyText(ctx context.Context, text string) (*Classification, error)
}
