package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Published is a message recorded by Memory.
type Published struct {
	Destination string
	Message     OutgoingMessage
	At          time.Time
}

// Memory records published messages in process.
type Memory struct {
	mu     sync.Mutex
	msgs   []Published
	closed bool
}

// NewMemory returns an empty in-memory publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records msg.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := checkPublish(ctx, destination); err != nil {
		return PublishResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return PublishResult{}, ErrClosed
	}

	now := time.Now()
	m.msgs = append(m.msgs, Published{Destination: destination, Message: msg, At: now})

	return PublishResult{
		MessageID: strconv.Itoa(len(m.msgs)),
		Topic:     destination,
		Timestamp: now,
	}, nil
}

// Messages returns a snapshot of everything published so far.
func (m *Memory) Messages() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Published(nil), m.msgs...)
}

// Close marks the publisher closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
