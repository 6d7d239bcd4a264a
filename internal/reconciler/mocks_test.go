package reconciler

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/models"
)

// MockTransport records outbound requests.
type MockTransport struct {
	mu      sync.Mutex
	sent    []models.Request
	forced  int
	SendErr error
	events  chan feed.Event
}

func NewMockTransport() *MockTransport {
	return &MockTransport{events: make(chan feed.Event, 64)}
}

func (m *MockTransport) Send(req models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.sent = append(m.sent, req)
	return nil
}

func (m *MockTransport) ForceReconnect() {
	m.mu.Lock()
	m.forced++
	m.mu.Unlock()
}

func (m *MockTransport) Events() <-chan feed.Event { return m.events }

func (m *MockTransport) Sent() []models.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Request(nil), m.sent...)
}

// Count returns how many requests of the given type were sent.
func (m *MockTransport) Count(method models.EventType) int {
	n := 0
	for _, req := range m.Sent() {
		if req.Method == method {
			n++
		}
	}
	return n
}

func (m *MockTransport) Forced() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forced
}

func (m *MockTransport) Clear() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}

// MockPublisher records every notification without suppressing repeats.
type MockPublisher struct {
	Updates       []models.ParamUpdate
	Announcements []models.Announcement
	Resets        int
}

func (m *MockPublisher) Publish(u models.ParamUpdate)   { m.Updates = append(m.Updates, u) }
func (m *MockPublisher) Announce(a models.Announcement) { m.Announcements = append(m.Announcements, a) }
func (m *MockPublisher) Reset()                         { m.Resets++ }

// Values returns every value published for one parameter, oldest first.
func (m *MockPublisher) Values(scope models.Scope, scopeID, name string) []any {
	var out []any
	for _, u := range m.Updates {
		if u.Scope == scope && u.ScopeID == scopeID && u.Name == name {
			out = append(out, u.Value)
		}
	}
	return out
}

// Last returns the latest value of one parameter.
func (m *MockPublisher) Last(scope models.Scope, scopeID, name string) (any, bool) {
	vals := m.Values(scope, scopeID, name)
	if len(vals) == 0 {
		return nil, false
	}
	return vals[len(vals)-1], true
}

func (m *MockPublisher) Clear() {
	m.Updates = nil
	m.Announcements = nil
}

func newTestReconciler(t *testing.T, mutate func(*Config)) (*Reconciler, *MockTransport, *MockPublisher) {
	t.Helper()
	tr := NewMockTransport()
	pub := &MockPublisher{}
	cfg := Config{
		Transport:        tr,
		Publisher:        pub,
		Logger:           zap.NewNop(),
		BannerDebounce:   10 * time.Millisecond,
		BootstrapTimeout: time.Minute,
		TeamSlots:        4,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg), tr, pub
}

// apply decodes a wire payload and applies it on the calling goroutine.
func apply(t *testing.T, r *Reconciler, typ models.EventType, payload string) {
	t.Helper()
	ev, err := models.DecodeEvent(typ, "", []byte(payload))
	if err != nil {
		t.Fatalf("DecodeEvent(%s) error = %v", typ, err)
	}
	r.handle(ev)
}

// drainInbox handles inbox messages until none arrives within quiet.
func drainInbox(t *testing.T, r *Reconciler, quiet time.Duration) {
	t.Helper()
	for {
		select {
		case msg := <-r.inbox:
			r.handleMessage(msg)
		case <-time.After(quiet):
			return
		}
	}
}
