package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/models"
	"github.com/openmohaa/overlay-engine/internal/reconciler"
)

// Mocks

type MockEngine struct {
	SubmitFunc   func(ctx context.Context, cmd models.Command) (string, error)
	CompleteFunc func(ctx context.Context, kind models.AnnouncementKind) error
	SnapshotFunc func(ctx context.Context) (models.Snapshot, error)
	Submitted    []models.Command
	Reconnects   int
}

func (m *MockEngine) Submit(ctx context.Context, cmd models.Command) (string, error) {
	m.Submitted = append(m.Submitted, cmd)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, cmd)
	}
	return "req-1", nil
}

func (m *MockEngine) Complete(ctx context.Context, kind models.AnnouncementKind) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, kind)
	}
	return nil
}

func (m *MockEngine) Snapshot(ctx context.Context) (models.Snapshot, error) {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx)
	}
	return models.Snapshot{Game: &models.Game{}}, nil
}

func (m *MockEngine) Reconnect() { m.Reconnects++ }

type MockPublisher struct {
	PingErr error
	Depth   int
}

func (m *MockPublisher) Ping(ctx context.Context) error { return m.PingErr }
func (m *MockPublisher) QueueDepth() int                { return m.Depth }

type MockFeed struct {
	Current feed.State
}

func (m *MockFeed) State() feed.State { return m.Current }

func newTestHandler(engine *MockEngine, pub *MockPublisher, fs *MockFeed) http.Handler {
	if pub == nil {
		pub = &MockPublisher{}
	}
	if fs == nil {
		fs = &MockFeed{Current: feed.Connected}
	}
	h := New(Config{
		Engine:    engine,
		Publisher: pub,
		Feed:      fs,
		Logger:    zap.NewNop(),
	})
	return h.Routes([]string{"http://localhost:3000"})
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Tests

func TestReady(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		state          feed.State
		expectedStatus int
	}{
		{"all healthy", nil, feed.Connected, http.StatusOK},
		{"redis down", errors.New("dial tcp: refused"), feed.Connected, http.StatusServiceUnavailable},
		{"feed reconnecting", nil, feed.Connecting, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestHandler(&MockEngine{}, &MockPublisher{PingErr: tt.pingErr, Depth: 7}, &MockFeed{Current: tt.state})
			w := do(router, "GET", "/ready", "")
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			var body struct {
				QueueDepth int    `json:"queueDepth"`
				FeedState  string `json:"feedState"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.QueueDepth != 7 || body.FeedState != tt.state.String() {
				t.Errorf("got %+v, want queueDepth 7 feedState %s", body, tt.state)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	w := do(newTestHandler(&MockEngine{}, nil, nil), "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestGetState(t *testing.T) {
	engine := &MockEngine{
		SnapshotFunc: func(ctx context.Context) (models.Snapshot, error) {
			return models.Snapshot{
				TournamentName: "Cup",
				Game:           &models.Game{State: models.StatePlaying},
				Visibility:     models.Visibility{Live: true, Camera: true},
			}, nil
		},
	}
	router := newTestHandler(engine, nil, nil)

	w := do(router, "GET", "/api/v1/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var snap models.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TournamentName != "Cup" || snap.Game.State != models.StatePlaying {
		t.Errorf("got %+v", snap)
	}

	w = do(router, "GET", "/api/v1/visibility", "")
	if !strings.Contains(w.Body.String(), `"view-camera":true`) {
		t.Errorf("visibility body = %s, want view-camera true", w.Body.String())
	}
}

func TestGetState_Stopped(t *testing.T) {
	engine := &MockEngine{
		SnapshotFunc: func(ctx context.Context) (models.Snapshot, error) {
			return models.Snapshot{}, reconciler.ErrStopped
		},
	}
	w := do(newTestHandler(engine, nil, nil), "GET", "/api/v1/state", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

func TestCompleteAnnouncement(t *testing.T) {
	var got models.AnnouncementKind
	engine := &MockEngine{
		CompleteFunc: func(ctx context.Context, kind models.AnnouncementKind) error {
			got = kind
			if kind != models.AnnounceSquadEliminated && kind != models.AnnounceTeamRespawned {
				return fmt.Errorf("%w: %q", reconciler.ErrUnknownQueue, kind)
			}
			return nil
		},
	}
	router := newTestHandler(engine, nil, nil)

	tests := []struct {
		kind           string
		expectedStatus int
	}{
		{"squad-eliminated", http.StatusNoContent},
		{"team-respawned", http.StatusNoContent},
		{"confetti", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			w := do(router, "POST", "/api/v1/announcements/"+tt.kind+"/complete", "")
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if string(got) != tt.kind {
				t.Errorf("completed %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestAdminCommands_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		submitErr      error
		expectedStatus int
		expectedCmd    models.Command
	}{
		{
			name:           "Rename",
			method:         "PUT",
			path:           "/api/v1/tournament/name",
			body:           `{"name": "Finals"}`,
			expectedStatus: http.StatusAccepted,
			expectedCmd:    models.RenameTournamentCommand{Name: "Finals"},
		},
		{
			name:           "Rename Missing Name",
			method:         "PUT",
			path:           "/api/v1/tournament/name",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid JSON",
			method:         "PUT",
			path:           "/api/v1/tournament/name",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Team Params",
			method:         "PUT",
			path:           "/api/v1/teams/3/params",
			body:           `{"name": "Override"}`,
			expectedStatus: http.StatusAccepted,
			expectedCmd:    models.SetTeamParamsCommand{TeamID: 3, Params: models.TeamParams{Name: "Override"}},
		},
		{
			name:           "Team Out Of Range",
			method:         "PUT",
			path:           "/api/v1/teams/64/params",
			body:           `{"name": "Override"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Team Not A Number",
			method:         "PUT",
			path:           "/api/v1/teams/abc/params",
			body:           `{"name": "Override"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Player Params",
			method:         "PUT",
			path:           "/api/v1/players/p1/params",
			body:           `{"name": "Ann"}`,
			expectedStatus: http.StatusAccepted,
			expectedCmd:    models.SetPlayerParamsCommand{Hash: "p1", Params: models.PlayerParams{Name: "Ann"}},
		},
		{
			name:           "Result Bad Game Id",
			method:         "PUT",
			path:           "/api/v1/tournament/results/-1",
			body:           `{"teams": {}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Feed Down",
			method:         "PUT",
			path:           "/api/v1/tournament/name",
			body:           `{"name": "Finals"}`,
			submitErr:      fmt.Errorf("send renametournamentname: %w", feed.ErrNotConnected),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "Broadcast",
			method:         "POST",
			path:           "/api/v1/broadcast",
			body:           `{"type": "testgamecount", "count": 4}`,
			expectedStatus: http.StatusAccepted,
			expectedCmd:    models.BroadcastCommand{Data: models.TestCommand{Type: models.TestGameCount, Count: 4}},
		},
		{
			name:           "Broadcast Unknown Type",
			method:         "POST",
			path:           "/api/v1/broadcast",
			body:           `{"type": "testeverything"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &MockEngine{
				SubmitFunc: func(ctx context.Context, cmd models.Command) (string, error) {
					if tt.submitErr != nil {
						return "", tt.submitErr
					}
					return "req-42", nil
				},
			}
			w := do(newTestHandler(engine, nil, nil), tt.method, tt.path, tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCmd == nil {
				return
			}
			if len(engine.Submitted) != 1 || !reflect.DeepEqual(engine.Submitted[0], tt.expectedCmd) {
				t.Errorf("submitted %+v, want %+v", engine.Submitted, tt.expectedCmd)
			}
			if tt.expectedStatus == http.StatusAccepted && !strings.Contains(w.Body.String(), `"request_id":"req-42"`) {
				t.Errorf("body = %s, want request id", w.Body.String())
			}
		})
	}
}

func TestSetTournamentParams(t *testing.T) {
	engine := &MockEngine{}
	w := do(newTestHandler(engine, nil, nil), "PUT", "/api/v1/tournament/params",
		`{"calcmethod": {"matchpoints": 50}, "forcehide": {"leaderboard": true}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, w.Code)
	}
	cmd, ok := engine.Submitted[0].(models.SetTournamentParamsCommand)
	if !ok {
		t.Fatalf("submitted %T, want SetTournamentParamsCommand", engine.Submitted[0])
	}
	if cmd.Params.CalcMethod.MatchPoints != 50 || !cmd.Params.ForceHide["leaderboard"] {
		t.Errorf("got %+v", cmd.Params)
	}
}

func TestBodyTooLarge(t *testing.T) {
	h := New(Config{
		Engine:      &MockEngine{},
		Publisher:   &MockPublisher{},
		Feed:        &MockFeed{},
		Logger:      zap.NewNop(),
		MaxBodySize: 16,
	})
	w := do(h.Routes(nil), "PUT", "/api/v1/tournament/name", `{"name": "`+strings.Repeat("x", 64)+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status %d, got %d", http.StatusRequestEntityTooLarge, w.Code)
	}
}

func TestReconnect(t *testing.T) {
	engine := &MockEngine{}
	w := do(newTestHandler(engine, nil, nil), "POST", "/api/v1/connection/reconnect", "")
	if w.Code != http.StatusAccepted {
		t.Errorf("expected status %d, got %d", http.StatusAccepted, w.Code)
	}
	if engine.Reconnects != 1 {
		t.Errorf("Reconnects = %d, want 1", engine.Reconnects)
	}
}

func TestSwaggerDoc_CoversEveryRoute(t *testing.T) {
	router := newTestHandler(&MockEngine{}, nil, nil)

	w := do(router, http.MethodGet, "/swagger/doc.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var doc struct {
		Info  map[string]interface{}                       `json:"info"`
		Paths map[string]map[string]map[string]interface{} `json:"paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Failed to decode doc: %v", err)
	}
	if doc.Info["title"] != "Overlay Engine API" {
		t.Errorf("title = %v, want %q", doc.Info["title"], "Overlay Engine API")
	}

	routes, ok := router.(chi.Routes)
	if !ok {
		t.Fatal("router does not expose chi routes")
	}
	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route == "/metrics" || route == "/swagger/doc.json" {
			return nil
		}
		if _, ok := doc.Paths[route][strings.ToLower(method)]; !ok {
			t.Errorf("%s %s is not documented", method, route)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
}
