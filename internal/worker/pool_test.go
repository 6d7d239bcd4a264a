package worker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/models"
)

func newTestPool(store *MockLiveStore, flush time.Duration) *Pool {
	return NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     100,
		BatchSize:     50,
		FlushInterval: flush,
		Prefix:        "test",
		Store:         store,
		Logger:        zap.NewNop(),
	})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEnqueueFull(t *testing.T) {
	pool := NewPool(PoolConfig{
		WorkerCount: 1,
		QueueSize:   1,
		Store:       NewMockLiveStore(),
		Logger:      zap.NewNop(),
	})

	// Fill the queue
	first := models.ParamUpdate{Scope: models.ScopeGlobal, Name: "game-state", Value: "Playing"}
	if !pool.Enqueue(Job{Update: &first}) {
		t.Fatal("Failed to enqueue first update")
	}

	// The second one must be shed without blocking
	second := models.ParamUpdate{Scope: models.ScopeGlobal, Name: "map-name", Value: "Olympus"}

	start := time.Now()
	enqueued := pool.Enqueue(Job{Update: &second})
	duration := time.Since(start)

	if enqueued {
		t.Error("Enqueue should have returned false when queue is full")
	}
	if duration > 10*time.Millisecond {
		t.Errorf("Enqueue took too long (%v), expected immediate return", duration)
	}
	if got := pool.QueueDepth(); got != 1 {
		t.Errorf("QueueDepth() = %d, want 1", got)
	}
}

func TestPool_WritesHashesAndPublishes(t *testing.T) {
	store := NewMockLiveStore()
	pool := newTestPool(store, 10*time.Millisecond)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeTeam, ScopeID: "1", Name: "team-total-points", Value: 15})
	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: "rank-order", Value: []int{1, 0}})
	pool.OnAnnouncement(models.Announcement{
		ID:      "a1",
		Kind:    models.AnnounceSquadEliminated,
		Seq:     1,
		Payload: models.SquadEliminated{Placement: 5, TeamID: 2, TeamName: "Charlie"},
	})

	waitFor(t, "hash writes", func() bool {
		_, a := store.Field("test:team:1", "team-total-points")
		_, b := store.Field("test:global", "rank-order")
		return a && b
	})
	waitFor(t, "announcement", func() bool {
		return len(store.Published("test:announcements")) == 1
	})

	tests := []struct {
		key, field, want string
	}{
		{"test:team:1", "team-total-points", "15"},
		{"test:global", "rank-order", "[1,0]"},
	}
	for _, tt := range tests {
		if got, _ := store.Field(tt.key, tt.field); got != tt.want {
			t.Errorf("HGET %s %s = %q, want %q", tt.key, tt.field, got, tt.want)
		}
	}

	params := strings.Join(store.Published("test:params"), "")
	if !strings.Contains(params, `"name":"team-total-points"`) || !strings.Contains(params, `"scope_id":"1"`) {
		t.Errorf("params channel = %s, want the team-total-points update", params)
	}
	if ann := store.Published("test:announcements")[0]; !strings.Contains(ann, `"team_name":"Charlie"`) {
		t.Errorf("announcement = %s, want team_name Charlie", ann)
	}
}

func TestPool_NilValueRemovesField(t *testing.T) {
	store := NewMockLiveStore()
	pool := newTestPool(store, 10*time.Millisecond)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopePlayer, ScopeID: "p1", Name: "player-single-name", Value: "Ann"})
	waitFor(t, "field write", func() bool {
		_, ok := store.Field("test:player:p1", "player-single-name")
		return ok
	})

	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopePlayer, ScopeID: "p1", Name: "player-single-name", Value: nil})
	waitFor(t, "field removal", func() bool {
		_, ok := store.Field("test:player:p1", "player-single-name")
		return !ok
	})
}

func TestPool_ResetClearsWrittenKeys(t *testing.T) {
	store := NewMockLiveStore()
	pool := newTestPool(store, 10*time.Millisecond)
	pool.Start(context.Background())
	defer pool.Stop()

	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeTeam, ScopeID: "0", Name: "team-name", Value: "Alpha"})
	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: "tournament-id", Value: "t1"})
	waitFor(t, "writes before reset", func() bool {
		_, a := store.Field("test:team:0", "team-name")
		_, b := store.Field("test:global", "tournament-id")
		return a && b
	})

	pool.OnReset()
	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: "tournament-id", Value: "t2"})

	waitFor(t, "keys deleted", func() bool { return len(store.DeletedKeys()) == 2 })
	waitFor(t, "write after reset", func() bool {
		v, _ := store.Field("test:global", "tournament-id")
		return v == `"t2"`
	})
	if _, ok := store.Field("test:team:0", "team-name"); ok {
		t.Error("team-name survived the reset")
	}
}

func TestPool_StopFlushesPending(t *testing.T) {
	store := NewMockLiveStore()
	pool := newTestPool(store, time.Hour)
	pool.Start(context.Background())

	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: "game-count", Value: 3})
	pool.Stop()

	if got, _ := store.Field("test:global", "game-count"); got != "3" {
		t.Errorf("game-count = %q, want %q after Stop", got, "3")
	}
}

func TestPool_StoreErrorDoesNotStopWorkers(t *testing.T) {
	store := NewMockLiveStore()
	store.Err = errors.New("connection refused")
	pool := newTestPool(store, 5*time.Millisecond)
	pool.Start(context.Background())

	pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: "game-count", Value: 1})
	time.Sleep(30 * time.Millisecond)
	if err := pool.Ping(context.Background()); err == nil {
		t.Error("Ping() error = nil, want store error")
	}
	pool.Stop()

	if store.Applies != 0 {
		t.Errorf("Applies = %d, want 0", store.Applies)
	}
}

func TestPool_PartitionIsStable(t *testing.T) {
	pool := NewPool(PoolConfig{WorkerCount: 8, Store: NewMockLiveStore(), Logger: zap.NewNop()})

	jobs := []Job{
		{Update: &models.ParamUpdate{Scope: models.ScopeTeam, ScopeID: "3", Name: "team-kills"}},
		{Update: &models.ParamUpdate{Scope: models.ScopePlayer, ScopeID: "abc", Name: "player-state"}},
		{Announcement: &models.Announcement{Kind: models.AnnounceTeamRespawned}},
	}
	for _, job := range jobs {
		first := pool.partition(job)
		if first < 0 || first >= 8 {
			t.Errorf("partition(%s) = %d, out of range", jobKey(job), first)
		}
		for i := 0; i < 10; i++ {
			if got := pool.partition(job); got != first {
				t.Errorf("partition(%s) = %d, want %d", jobKey(job), got, first)
			}
		}
	}
}

func TestPool_ResetDoesNotDropLaterWrites(t *testing.T) {
	store := NewMockLiveStore()
	store.DelDelay = 200 * time.Millisecond
	pool := newTestPool(store, 5*time.Millisecond)
	pool.Start(context.Background())
	defer pool.Stop()

	names := []string{"tournament-id", "tournament-name", "connection-status", "game-count"}
	for _, name := range names {
		pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: name, Value: "old"})
	}
	waitFor(t, "writes before reset", func() bool {
		for _, name := range names {
			if _, ok := store.Field("test:global", name); !ok {
				return false
			}
		}
		return true
	})

	pool.OnReset()
	for _, name := range names {
		pool.OnUpdate(models.ParamUpdate{Scope: models.ScopeGlobal, Name: name, Value: "new"})
	}

	waitFor(t, "reset delete", func() bool { return len(store.DeletedKeys()) == 1 })
	waitFor(t, "writes after reset", func() bool {
		for _, name := range names {
			if v, _ := store.Field("test:global", name); v != `"new"` {
				return false
			}
		}
		return true
	})

	// Give any late DEL a chance to run.
	time.Sleep(50 * time.Millisecond)
	for _, name := range names {
		if got, ok := store.Field("test:global", name); !ok || got != `"new"` {
			t.Errorf("%s = %q (present=%v), want %q", name, got, ok, `"new"`)
		}
	}
}

func TestPool_FieldsOfOneHashShareAWorker(t *testing.T) {
	pool := NewPool(PoolConfig{WorkerCount: 8, Store: NewMockLiveStore(), Logger: zap.NewNop()})

	tests := []struct {
		name  string
		scope models.Scope
		id    string
	}{
		{"global", models.ScopeGlobal, ""},
		{"team", models.ScopeTeam, "4"},
		{"player", models.ScopePlayer, "hash1"},
	}
	fields := []string{"tournament-id", "team-name", "player-state", "rank-order", "connection-status"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := -1
			for _, f := range fields {
				got := pool.partition(Job{Update: &models.ParamUpdate{Scope: tt.scope, ScopeID: tt.id, Name: f}})
				if want == -1 {
					want = got
				}
				if got != want {
					t.Errorf("partition(%s) = %d, want %d", f, got, want)
				}
			}
		})
	}
}
