package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikey/antispam-admin/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-process implementation of the store ports. It backs
// tests and demo runs; reads are isolated from the sender block mutation
// with a read-write lock.
type MemoryStore struct {
	mu       sync.RWMutex
	senders  map[int64]*core.Sender
	order    []int64
	messages []core.Message
	calls    []core.Call
	nextID   int64
	logger   *zap.Logger
}

// NewMemoryStore creates a new empty in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		senders: make(map[int64]*core.Sender),
		nextID:  1,
		logger:  logger,
	}
}

// AddSender inserts a sender and returns it with its assigned id.
func (s *MemoryStore) AddSender(sender core.Sender) core.Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	sender.ID = s.nextID
	s.nextID++
	s.senders[sender.ID] = &sender
	s.order = append(s.order, sender.ID)
	return sender
}

// AddMessage inserts a message, resolving its sender fields.
func (s *MemoryStore) AddMessage(message core.Message) core.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	message.ID = s.nextID
	s.nextID++
	s.resolveMessage(&message)
	s.messages = append(s.messages, message)
	return message
}

// AddCall inserts a call, resolving its caller fields.
func (s *MemoryStore) AddCall(call core.Call) core.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	call.ID = s.nextID
	s.nextID++
	s.resolveCall(&call)
	s.calls = append(s.calls, call)
	return call
}

func (s *MemoryStore) resolveMessage(message *core.Message) {
	if message.SenderID == nil {
		return
	}
	if sender, ok := s.senders[*message.SenderID]; ok {
		number := sender.PhoneNumber
		message.SenderNumber = &number
		message.SenderBlocked = sender.IsBlocked
	}
}

func (s *MemoryStore) resolveCall(call *core.Call) {
	if call.CallerID == nil {
		return
	}
	if sender, ok := s.senders[*call.CallerID]; ok {
		number := sender.PhoneNumber
		call.CallerNumber = &number
		call.CallerBlocked = sender.IsBlocked
	}
}

// ListByRange is split across two typed wrappers below because the message
// and call ports are distinct interfaces.

// ListMessagesByRange returns messages inside the inclusive window, most
// recent first, with sender fields re-resolved against current state.
func (s *MemoryStore) ListMessagesByRange(_ context.Context, start, end *time.Time) ([]core.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Message, 0, len(s.messages))
	for _, message := range s.messages {
		if start != nil && message.ReceivedAt.Before(*start) {
			continue
		}
		if end != nil && message.ReceivedAt.After(*end) {
			continue
		}
		s.resolveMessage(&message)
		out = append(out, message)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.After(out[j].ReceivedAt)
	})
	return out, nil
}

// ListCallsByRange returns calls inside the inclusive window, most recent
// first, with caller fields re-resolved against current state.
func (s *MemoryStore) ListCallsByRange(_ context.Context, start, end *time.Time) ([]core.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Call, 0, len(s.calls))
	for _, call := range s.calls {
		if start != nil && call.StartedAt.Before(*start) {
			continue
		}
		if end != nil && call.StartedAt.After(*end) {
			continue
		}
		s.resolveCall(&call)
		out = append(out, call)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

// List returns all senders in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]core.Sender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Sender, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.senders[id])
	}
	return out, nil
}

// GetByID returns the sender with the given id.
func (s *MemoryStore) GetByID(_ context.Context, id int64) (*core.Sender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sender, ok := s.senders[id]
	if !ok {
		return nil, core.ErrSenderNotFound
	}
	copied := *sender
	return &copied, nil
}

// SetBlocked updates the blocked flag on a sender.
func (s *MemoryStore) SetBlocked(_ context.Context, id int64, blocked bool) (*core.Sender, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.senders[id]
	if !ok {
		return nil, core.ErrSenderNotFound
	}
	sender.IsBlocked = blocked
	copied := *sender
	return &copied, nil
}

// Seed replaces the store contents with the demo dataset.
func (s *MemoryStore) Seed(_ context.Context, data *DemoData) error {
	s.mu.Lock()
	s.senders = make(map[int64]*core.Sender)
	s.order = nil
	s.messages = nil
	s.calls = nil
	s.nextID = 1
	s.mu.Unlock()

	ids := make([]int64, len(data.Senders))
	for i, sender := range data.Senders {
		ids[i] = s.AddSender(sender).ID
	}
	for _, message := range data.Messages {
		if message.SenderIndex >= 0 {
			id := ids[message.SenderIndex]
			message.Message.SenderID = &id
		}
		s.AddMessage(message.Message)
	}
	for _, call := range data.Calls {
		if call.CallerIndex >= 0 {
			id := ids[call.CallerIndex]
			call.Call.CallerID = &id
		}
		s.AddCall(call.Call)
	}

	s.logger.Info("Seeded in-memory store",
		zap.Int("senders", len(data.Senders)),
		zap.Int("messages", len(data.Messages)),
		zap.Int("calls", len(data.Calls)))
	return nil
}

// memoryMessages and memoryCalls give the one MemoryStore value the two
// distinct ListByRange method sets the core ports expect.

// Messages returns the store's core.MessageStore view.
func (s *MemoryStore) Messages() core.MessageStore { return memoryMessages{s} }

// Calls returns the store's core.CallStore view.
func (s *MemoryStore) Calls() core.CallStore { return memoryCalls{s} }

// Senders returns the store's core.SenderStore view.
func (s *MemoryStore) Senders() core.SenderStore { return s }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

type memoryMessages struct{ store *MemoryStore }

func (m memoryMessages) ListByRange(ctx context.Context, start, end *time.Time) ([]core.Message, error) {
	return m.store.ListMessagesByRange(ctx, start, end)
}

type memoryCalls struct{ store *MemoryStore }

func (c memoryCalls) ListByRange(ctx context.Context, start, end *time.Time) ([]core.Call, error) {
	return c.store.ListCallsByRange(ctx, start, end)
}
