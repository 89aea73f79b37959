package core

import (
	"time"
)

// Sender is a phone-number-identified originator of messages and calls.
type Sender struct {
	ID          int64      `json:"id"`
	PhoneNumber string     `json:"phone_number"`
	SpamCount   int        `json:"spam_count"`
	IsBlocked   bool       `json:"is_blocked"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
}

// Message is one SMS event. SenderNumber and SenderBlocked are resolved
// eagerly by the store so the analytics engine never needs a second lookup.
type Message struct {
	ID             int64     `json:"id"`
	SenderID       *int64    `json:"sender_id"`
	SenderNumber   *string   `json:"sender_number"`
	ReceiverNumber string    `json:"receiver_number"`
	Body           string    `json:"body"`
	Category       *string   `json:"category"`
	ReceivedAt     time.Time `json:"received_at"`
	IsSpam         bool      `json:"is_spam"`
	Confidence     *float64  `json:"confidence"`
	Blocked        bool      `json:"blocked"`
	SenderBlocked  bool      `json:"sender_is_blocked"`
}

// Call is one voice-call event, shaped in parallel with Message.
type Call struct {
	ID              int64     `json:"id"`
	CallerID        *int64    `json:"caller_id"`
	CallerNumber    *string   `json:"caller_number"`
	CalleeNumber    string    `json:"callee_number"`
	StartedAt       time.Time `json:"started_at"`
	DurationSeconds int       `json:"duration_seconds"`
	Category        *string   `json:"category"`
	IsSpam          bool      `json:"is_spam"`
	Confidence      *float64  `json:"confidence"`
	Blocked         bool      `json:"blocked"`
	CallerBlocked   bool      `json:"caller_is_blocked"`
}

// Classification is the normalized result of an LLM text classification.
type Classification struct {
	IsSpam       bool    `json:"is_spam"`
	Confidence   float64 `json:"confidence"`
	Category     string  `json:"category"`
	Rationale    string  `json:"rationale"`
	ModelUsed    string  `json:"-"`
	ProcessingID string  `json:"-"`
}

// MessageStats summarizes one filtered set of messages.
type MessageStats struct {
	TotalMessages   int     `json:"total_messages"`
	BlockedMessages int     `json:"blocked_messages"`
	UniqueSenders   int     `json:"unique_senders"`
	SpamPercentage  float64 `json:"spam_percentage"`
	TopSenderNumber *string `json:"top_sender_number"`
}

// CallStats summarizes one filtered set of calls.
type CallStats struct {
	TotalCalls      int     `json:"total_calls"`
	BlockedCalls    int     `json:"blocked_calls"`
	UniqueCallers   int     `json:"unique_callers"`
	SpamPercentage  float64 `json:"spam_percentage"`
	TopCallerNumber *string `json:"top_caller_number"`
}

// MessageCategorySummary is one bucket of the message category rollup.
type MessageCategorySummary struct {
	Category       string `json:"category"`
	TotalMessages  int    `json:"total_messages"`
	UniqueSenders  int    `json:"unique_senders"`
	Blocked        int    `json:"blocked"`
	SamplePreview  string `json:"sample_preview"`
	UniqueMessages int    `json:"unique_messages"`
}

// CallCategorySummary is one bucket of the call category rollup.
type CallCategorySummary struct {
	Category      string `json:"category"`
	TotalCalls    int    `json:"total_calls"`
	UniqueCallers int    `json:"unique_callers"`
	Blocked       int    `json:"blocked"`
	SamplePreview string `json:"sample_preview"`
}

// DailyStat is one calendar-day bucket of the detected/blocked time series.
// The date is the stored timestamp truncated to its calendar date and
// formatted as 2006-01-02; no timezone conversion is applied.
type DailyStat struct {
	Date     string `json:"date"`
	Detected int    `json:"detected"`
	Blocked  int    `json:"blocked"`
}

// SmsListResponse is the message listing together with derived analytics.
type SmsListResponse struct {
	Stats          MessageStats             `json:"stats"`
	Categories     []MessageCategorySummary `json:"categories"`
	RecentMessages []Message                `json:"recent_messages"`
}

// CallListResponse is the call listing together with derived analytics.
type CallListResponse struct {
	Stats       CallStats             `json:"stats"`
	Categories  []CallCategorySummary `json:"categories"`
	RecentCalls []Call                `json:"recent_calls"`
}

// DashboardSummary is the combined cross-entity report for the reporting UI.
type DashboardSummary struct {
	Timeframe                string       `json:"timeframe"`
	Sms                      MessageStats `json:"sms"`
	Calls                    CallStats    `json:"calls"`
	OverallBlockRate         float64      `json:"overall_block_rate"`
	AvgConfidence            float64      `json:"avg_confidence"`
	SmsUniqueSpamMessages    int          `json:"sms_unique_spam_messages"`
	SmsUniqueBlockedMessages int          `json:"sms_unique_blocked_messages"`
	SmsDaily                 []DailyStat  `json:"sms_daily"`
	CallsUniqueSpamCalls     int          `json:"calls_unique_spam_calls"`
	CallsUniqueBlockedCalls  int          `json:"calls_unique_blocked_calls"`
	CallsDaily               []DailyStat  `json:"calls_daily"`
}
