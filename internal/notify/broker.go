// Package notify fans parameter updates and announcements out to presentation
// consumers, suppressing repeats of an unchanged value.
package notify

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/models"
)

var (
	updatesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overlay_param_updates_total",
		Help: "Parameter updates delivered to subscribers by scope",
	}, []string{"scope"})

	updatesSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_param_updates_suppressed_total",
		Help: "Parameter updates dropped because the value did not change",
	})

	announcementsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overlay_announcements_total",
		Help: "Announcements pushed to subscribers by kind",
	}, []string{"kind"})
)

// Subscriber receives updates. Handlers run on the publishing goroutine and
// must not block.
type Subscriber interface {
	OnUpdate(u models.ParamUpdate)
	OnAnnouncement(a models.Announcement)
	OnReset()
}

type subscription struct {
	sub    Subscriber
	scopes map[models.Scope]bool
}

func (s subscription) wants(scope models.Scope) bool {
	return len(s.scopes) == 0 || s.scopes[scope]
}

// Broker is the outward notification surface. It is not safe for concurrent
// use; the reconciler goroutine is its only caller.
type Broker struct {
	logger *zap.SugaredLogger
	last   map[string]any
	subs   []subscription
}

// NewBroker creates an empty broker.
func NewBroker(logger *zap.Logger) *Broker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broker{
		logger: logger.Sugar(),
		last:   make(map[string]any),
	}
}

// Subscribe registers s for the given scopes, or every scope when none are given.
// Announcements and resets go to every subscriber.
func (b *Broker) Subscribe(s Subscriber, scopes ...models.Scope) {
	sub := subscription{sub: s}
	if len(scopes) > 0 {
		sub.scopes = make(map[models.Scope]bool, len(scopes))
		for _, sc := range scopes {
			sub.scopes[sc] = true
		}
	}
	b.subs = append(b.subs, sub)
}

// Publish delivers u unless the same key already carries an equal value.
func (b *Broker) Publish(u models.ParamUpdate) {
	key := u.Key()
	if prev, ok := b.last[key]; ok && reflect.DeepEqual(prev, u.Value) {
		updatesSuppressed.Inc()
		return
	}
	b.last[key] = u.Value
	updatesPublished.WithLabelValues(string(u.Scope)).Inc()
	for _, s := range b.subs {
		if s.wants(u.Scope) {
			s.sub.OnUpdate(u)
		}
	}
}

// Announce pushes a ready announcement.
func (b *Broker) Announce(a models.Announcement) {
	announcementsPublished.WithLabelValues(string(a.Kind)).Inc()
	b.logger.Debugw("Announcement ready", "kind", a.Kind, "seq", a.Seq)
	for _, s := range b.subs {
		s.sub.OnAnnouncement(a)
	}
}

// Reset forgets every known value and tells subscribers to clear their state.
func (b *Broker) Reset() {
	b.last = make(map[string]any)
	for _, s := range b.subs {
		s.sub.OnReset()
	}
}

// Value returns the last delivered value of a parameter.
func (b *Broker) Value(scope models.Scope, scopeID, name string) (any, bool) {
	v, ok := b.last[models.ParamUpdate{Scope: scope, ScopeID: scopeID, Name: name}.Key()]
	return v, ok
}

// Recorder is a Subscriber that keeps everything it receives. It is handy for
// debugging and tests.
type Recorder struct {
	Updates       []models.ParamUpdate
	Announcements []models.Announcement
	Resets        int
}

func (r *Recorder) OnUpdate(u models.ParamUpdate)        { r.Updates = append(r.Updates, u) }
func (r *Recorder) OnAnnouncement(a models.Announcement) { r.Announcements = append(r.Announcements, a) }
func (r *Recorder) OnReset()                             { r.Resets++ }

// Find returns the updates for one parameter, oldest first.
func (r *Recorder) Find(scope models.Scope, scopeID, name string) []models.ParamUpdate {
	var out []models.ParamUpdate
	for _, u := range r.Updates {
		if u.Scope == scope && u.ScopeID == scopeID && u.Name == name {
			out = append(out, u)
		}
	}
	return out
}

// Clear forgets everything recorded so far.
func (r *Recorder) Clear() {
	r.Updates = nil
	r.Announcements = nil
	r.Resets = 0
}
