package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/antispam-admin/internal/core"
)

func newSQLiteTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sqliteFixtures() *DemoData {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	lottery := "lottery"
	confidence := 0.95
	return &DemoData{
		Senders: []core.Sender{
			{PhoneNumber: "+1555001001", SpamCount: 12, IsBlocked: true},
			{PhoneNumber: "+1555002002", SpamCount: 3},
		},
		Messages: []SeedMessage{
			{SenderIndex: 0, Message: core.Message{
				ReceiverNumber: "+1555999000",
				Body:           "You've won! Claim now.",
				Category:       &lottery,
				ReceivedAt:     day(1),
				IsSpam:         true,
				Confidence:     &confidence,
				Blocked:        true,
			}},
			{SenderIndex: 1, Message: core.Message{
				ReceiverNumber: "+1555999000",
				Body:           "lunch at noon?",
				ReceivedAt:     day(2),
			}},
			{SenderIndex: -1, Message: core.Message{
				ReceiverNumber: "+1555999000",
				Body:           "network notice",
				ReceivedAt:     day(3),
			}},
		},
		Calls: []SeedCall{
			{CallerIndex: 0, Call: core.Call{
				CalleeNumber:    "+1555666555",
				StartedAt:       day(2),
				DurationSeconds: 45,
				IsSpam:          true,
				Blocked:         true,
			}},
			{CallerIndex: -1, Call: core.Call{
				CalleeNumber: "+1555777666",
				StartedAt:    day(1),
			}},
		},
	}
}

func TestSQLiteStoreListMessagesByRange(t *testing.T) {
	s := newSQLiteTestStore(t)
	require.NoError(t, s.Seed(context.Background(), sqliteFixtures()))
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }

	messages, err := s.Messages().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Most recent first.
	assert.Equal(t, "network notice", messages[0].Body)
	assert.Equal(t, "lunch at noon?", messages[1].Body)
	assert.Equal(t, "You've won! Claim now.", messages[2].Body)

	// Sender fields resolved through the join; the orphan row has none.
	require.NotNil(t, messages[2].SenderNumber)
	assert.Equal(t, "+1555001001", *messages[2].SenderNumber)
	assert.True(t, messages[2].SenderBlocked)
	require.NotNil(t, messages[2].Category)
	assert.Equal(t, "lottery", *messages[2].Category)
	require.NotNil(t, messages[2].Confidence)
	assert.Equal(t, 0.95, *messages[2].Confidence)
	assert.Nil(t, messages[0].SenderID)
	assert.Nil(t, messages[0].SenderNumber)
	assert.Nil(t, messages[0].Category)

	// Bounds are inclusive at the exact stored timestamp.
	window, err := s.Messages().ListByRange(context.Background(), timePtr(day(2)), timePtr(day(2)))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "lunch at noon?", window[0].Body)

	fromDay2, err := s.Messages().ListByRange(context.Background(), timePtr(day(2)), nil)
	require.NoError(t, err)
	assert.Len(t, fromDay2, 2)
}

func TestSQLiteStoreListCallsByRange(t *testing.T) {
	s := newSQLiteTestStore(t)
	require.NoError(t, s.Seed(context.Background(), sqliteFixtures()))
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }

	calls, err := s.Calls().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "+1555666555", calls[0].CalleeNumber)
	require.NotNil(t, calls[0].CallerNumber)
	assert.Equal(t, "+1555001001", *calls[0].CallerNumber)
	assert.True(t, calls[0].CallerBlocked)
	assert.Equal(t, 45, calls[0].DurationSeconds)
	assert.Nil(t, calls[1].CallerID)

	window, err := s.Calls().ListByRange(context.Background(), nil, timePtr(day(1)))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "+1555777666", window[0].CalleeNumber)
}

func TestSQLiteStoreSenders(t *testing.T) {
	s := newSQLiteTestStore(t)
	require.NoError(t, s.Seed(context.Background(), sqliteFixtures()))

	senders, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, senders, 2)
	assert.Equal(t, "+1555001001", senders[0].PhoneNumber)
	assert.Equal(t, 12, senders[0].SpamCount)

	unblocked := senders[1]
	assert.False(t, unblocked.IsBlocked)

	updated, err := s.SetBlocked(context.Background(), unblocked.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsBlocked)

	fetched, err := s.GetByID(context.Background(), unblocked.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsBlocked)

	// Listings see the new flag through the join.
	messages, err := s.Messages().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	for _, message := range messages {
		if message.SenderID != nil && *message.SenderID == unblocked.ID {
			assert.True(t, message.SenderBlocked)
		}
	}
}

func TestSQLiteStoreSenderNotFound(t *testing.T) {
	s := newSQLiteTestStore(t)

	_, err := s.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, core.ErrSenderNotFound)

	_, err = s.SetBlocked(context.Background(), 99, true)
	assert.ErrorIs(t, err, core.ErrSenderNotFound)
}

func TestSQLiteStoreSeedReplaces(t *testing.T) {
	s := newSQLiteTestStore(t)
	data := DemoDataset()

	require.NoError(t, s.Seed(context.Background(), data))
	require.NoError(t, s.Seed(context.Background(), data))

	messages, err := s.Messages().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, messages, len(data.Messages))

	calls, err := s.Calls().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, calls, len(data.Calls))

	senders, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, senders, len(data.Senders))
}
