package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/antispam-admin/internal/core"
)

func timePtr(v time.Time) *time.Time { return &v }

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(zap.NewNop())
}

func TestMemoryStoreResolvesSenderFields(t *testing.T) {
	s := newTestStore(t)
	sender := s.AddSender(core.Sender{PhoneNumber: "+1555001001", IsBlocked: true})

	s.AddMessage(core.Message{
		SenderID:       &sender.ID,
		ReceiverNumber: "+1555999000",
		Body:           "claim your prize",
		ReceivedAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})

	messages, err := s.ListMessagesByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.NotNil(t, messages[0].SenderNumber)
	assert.Equal(t, "+1555001001", *messages[0].SenderNumber)
	assert.True(t, messages[0].SenderBlocked)
}

func TestMemoryStoreListMessagesByRange(t *testing.T) {
	s := newTestStore(t)
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	for d := 1; d <= 4; d++ {
		s.AddMessage(core.Message{Body: "m", ReceivedAt: day(d)})
	}

	messages, err := s.ListMessagesByRange(context.Background(), timePtr(day(2)), timePtr(day(3)))
	require.NoError(t, err)
	require.Len(t, messages, 2)

	// Most recent first, with the inclusive bounds kept.
	assert.Equal(t, day(3), messages[0].ReceivedAt)
	assert.Equal(t, day(2), messages[1].ReceivedAt)
}

func TestMemoryStoreListCallsByRange(t *testing.T) {
	s := newTestStore(t)
	day := func(d int) time.Time { return time.Date(2025, 3, d, 12, 0, 0, 0, time.UTC) }
	for d := 1; d <= 3; d++ {
		s.AddCall(core.Call{CalleeNumber: "+1555999000", StartedAt: day(d)})
	}

	calls, err := s.ListCallsByRange(context.Background(), timePtr(day(2)), nil)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.True(t, calls[0].StartedAt.After(calls[1].StartedAt))
}

func TestMemoryStoreSetBlocked(t *testing.T) {
	s := newTestStore(t)
	sender := s.AddSender(core.Sender{PhoneNumber: "+1555001001"})
	s.AddMessage(core.Message{
		SenderID:   &sender.ID,
		Body:       "hello",
		ReceivedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})

	updated, err := s.SetBlocked(context.Background(), sender.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsBlocked)

	// Listings resolve against current sender state, not insert-time state.
	messages, err := s.ListMessagesByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].SenderBlocked)
}

func TestMemoryStoreSetBlockedNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SetBlocked(context.Background(), 99, true)
	assert.ErrorIs(t, err, core.ErrSenderNotFound)

	_, err = s.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, core.ErrSenderNotFound)
}

func TestMemoryStoreListSendersInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	s.AddSender(core.Sender{PhoneNumber: "+1555001001"})
	s.AddSender(core.Sender{PhoneNumber: "+1555002002"})

	senders, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, senders, 2)
	assert.Equal(t, "+1555001001", senders[0].PhoneNumber)
	assert.Equal(t, "+1555002002", senders[1].PhoneNumber)
}

func TestMemoryStoreSeed(t *testing.T) {
	s := newTestStore(t)
	data := DemoDataset()

	require.NoError(t, s.Seed(context.Background(), data))

	senders, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, senders, len(data.Senders))

	messages, err := s.ListMessagesByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, messages, len(data.Messages))

	calls, err := s.ListCallsByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, calls, len(data.Calls))

	// Seeding twice replaces rather than appends.
	require.NoError(t, s.Seed(context.Background(), data))
	messages, err = s.ListMessagesByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, messages, len(data.Messages))
}

func TestMemoryStoreViews(t *testing.T) {
	s := newTestStore(t)
	s.AddMessage(core.Message{Body: "m", ReceivedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)})
	s.AddCall(core.Call{CalleeNumber: "+1555999000", StartedAt: time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)})

	messages, err := s.Messages().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	calls, err := s.Calls().ListByRange(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, calls, 1)

	_, err = s.Senders().List(context.Background())
	assert.NoError(t, err)
}
