package worker

import (
	"context"
	"sync"
	"time"
)

// MockLiveStore implements LiveStore for testing
type MockLiveStore struct {
	mu       sync.Mutex
	Hashes   map[string]map[string]string
	Messages []Message
	Deleted  []string
	Applies  int
	Err      error
	// DelDelay slows down the first Del call.
	DelDelay time.Duration
	delayed  bool
}

func NewMockLiveStore() *MockLiveStore {
	return &MockLiveStore{Hashes: make(map[string]map[string]string)}
}

func (m *MockLiveStore) Apply(ctx context.Context, writes []FieldWrite, messages []Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Applies++
	for _, w := range writes {
		h, ok := m.Hashes[w.Key]
		if !ok {
			h = make(map[string]string)
			m.Hashes[w.Key] = h
		}
		if w.Value == nil {
			delete(h, w.Field)
			continue
		}
		h[w.Field] = string(w.Value)
	}
	m.Messages = append(m.Messages, messages...)
	return nil
}

func (m *MockLiveStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	wait := m.DelDelay > 0 && !m.delayed
	m.delayed = true
	m.mu.Unlock()
	if wait {
		time.Sleep(m.DelDelay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.Hashes, k)
		m.Deleted = append(m.Deleted, k)
	}
	return nil
}

func (m *MockLiveStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// Field returns a stored hash field.
func (m *MockLiveStore) Field(key, field string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Hashes[key][field]
	return v, ok
}

// Published returns the messages sent to a channel.
func (m *MockLiveStore) Published(channel string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.Messages {
		if msg.Channel == channel {
			out = append(out, string(msg.Payload))
		}
	}
	return out
}

func (m *MockLiveStore) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}
