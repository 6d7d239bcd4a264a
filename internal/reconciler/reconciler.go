// Package reconciler owns the canonical tournament state. It applies feed
// events, recomputes standings and visibility, and pushes only what changed
// to the presentation layer.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/announce"
	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/models"
)

const (
	// DefaultBootstrapTimeout bounds how long the initial re-sync may take.
	DefaultBootstrapTimeout = 10 * time.Second
	// DefaultTeamSlots is the number of team slots whose params are fetched.
	DefaultTeamSlots = 30

	inboxSize = 256
	maxTeams  = 64
)

var (
	// ErrStopped is returned once Run has exited.
	ErrStopped = errors.New("reconciler: stopped")
	// ErrUnknownQueue is returned for a completion on a queue that does not exist.
	ErrUnknownQueue = errors.New("reconciler: unknown announcement queue")
	// ErrInvalidCommand wraps command validation failures.
	ErrInvalidCommand = errors.New("reconciler: invalid command")
)

// Prometheus metrics
var (
	eventsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overlay_events_handled_total",
		Help: "Feed events applied to the canonical state by type",
	}, []string{"type"})

	recalculations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_recalculations_total",
		Help: "Standings recomputations",
	})

	recalcErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_recalc_errors_total",
		Help: "Recomputations rejected because of invalid domain input",
	})

	recalcDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "overlay_recalc_duration_seconds",
		Help:    "Time spent recomputing standings and diffing them",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})

	queueLength = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "overlay_announcement_queue_length",
		Help: "Items waiting in each announcement queue, including the displayed one",
	}, []string{"kind"})

	bootstraps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overlay_bootstraps_total",
		Help: "Completed re-syncs by how they finished",
	}, []string{"outcome"})
)

// Publisher receives outward notifications. Calls happen on the Run goroutine.
type Publisher interface {
	Publish(u models.ParamUpdate)
	Announce(a models.Announcement)
	Reset()
}

// Transport is the connection to the remote tournament service.
type Transport interface {
	Send(req models.Request) error
	ForceReconnect()
	Events() <-chan feed.Event
}

// Config configures the reconciler
type Config struct {
	Transport        Transport
	Publisher        Publisher
	Logger           *zap.Logger
	BannerDebounce   time.Duration
	BootstrapTimeout time.Duration
	// ObserverHash pins camera follow to one observer. When empty, only
	// switches flagged as our own are followed.
	ObserverHash string
	TeamSlots    int
	Overlays     []Overlay
}

// inbox messages
type (
	commandMsg struct {
		cmd   models.Command
		reply chan commandReply
	}
	commandReply struct {
		id  string
		err error
	}
	completeMsg struct {
		kind  models.AnnouncementKind
		reply chan error
	}
	snapshotMsg struct {
		reply chan models.Snapshot
	}
	bannerSettled struct {
		gen uint64
	}
	bootstrapTimeout struct {
		gen uint64
	}
)

// Reconciler is the single owner of the canonical state. Everything except
// the exported request methods runs on the Run goroutine.
type Reconciler struct {
	transport Transport
	pub       Publisher
	logger    *zap.SugaredLogger

	inbox chan any
	done  chan struct{}

	bootstrapTimeout time.Duration
	observerHash     string
	teamSlots        int
	overlays         []Overlay

	// tournament scope
	tournamentID   string
	tournamentName string
	params         models.TournamentParams
	teamParams     map[int]models.TeamParams
	playerParams   map[string]models.PlayerParams
	results        []models.Result

	// live scope
	game        *models.Game
	resultsOnly bool
	teamResults models.TeamResults
	camera      models.Camera

	// recognition and view
	banner           *announce.Debouncer[bool]
	bannerRecognized bool
	mapRecognized    bool
	winnerDetermined bool
	visibility       models.Visibility

	// announcement queues
	squads   *announce.Queue[models.SquadEliminated]
	respawns *announce.Queue[models.TeamRespawned]

	// connection and re-sync
	connection    string
	bootstrapping bool
	pending       map[models.EventType]string
	bootstrapGen  uint64
	bootstrapStop func() bool

	// result view player indices, hash to team id
	singleIndex map[string]int
	totalIndex  map[string]int
	// team ids with rows in each view
	singleTeams map[int]bool
	totalTeams  map[int]bool

	now func() time.Time
}

// New creates a reconciler
func New(cfg Config) *Reconciler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BootstrapTimeout <= 0 {
		cfg.BootstrapTimeout = DefaultBootstrapTimeout
	}
	if cfg.TeamSlots <= 0 {
		cfg.TeamSlots = DefaultTeamSlots
	}

	r := &Reconciler{
		transport:        cfg.Transport,
		pub:              cfg.Publisher,
		logger:           cfg.Logger.Sugar(),
		inbox:            make(chan any, inboxSize),
		done:             make(chan struct{}),
		bootstrapTimeout: cfg.BootstrapTimeout,
		observerHash:     cfg.ObserverHash,
		teamSlots:        cfg.TeamSlots,
		overlays:         cfg.Overlays,
		teamParams:       make(map[int]models.TeamParams),
		playerParams:     make(map[string]models.PlayerParams),
		game:             &models.Game{},
		resultsOnly:      true,
		camera:           models.Camera{TeamID: -1},
		bannerRecognized: true,
		squads:           &announce.Queue[models.SquadEliminated]{},
		respawns:         &announce.Queue[models.TeamRespawned]{},
		connection:       "close",
		pending:          make(map[models.EventType]string),
		singleIndex:      make(map[string]int),
		totalIndex:       make(map[string]int),
		singleTeams:      make(map[int]bool),
		totalTeams:       make(map[int]bool),
		now:              time.Now,
	}
	r.banner = announce.NewDebouncer[bool](cfg.BannerDebounce, func(gen uint64) {
		r.post(context.Background(), bannerSettled{gen: gen})
	})
	return r
}

// Run applies feed events and inbox messages one at a time until ctx is done.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.Infow("Reconciler started", "overlays", len(r.overlays), "team_slots", r.teamSlots)
	defer r.shutdown()

	r.emitVisibility()
	r.emitForceHide()

	events := r.transport.Events()
	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("Reconciler stopping")
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.handleFeed(ev)
		case msg := <-r.inbox:
			r.handleMessage(msg)
		}
	}
}

func (r *Reconciler) shutdown() {
	close(r.done)
	r.banner.Stop()
	if r.bootstrapStop != nil {
		r.bootstrapStop()
	}
	r.resetQueues()
}

// post hands a message to the Run goroutine.
func (r *Reconciler) post(ctx context.Context, msg any) error {
	select {
	case r.inbox <- msg:
		return nil
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reconciler) handleMessage(msg any) {
	switch m := msg.(type) {
	case commandMsg:
		id, err := r.sendCommand(m.cmd)
		m.reply <- commandReply{id: id, err: err}
	case completeMsg:
		m.reply <- r.complete(m.kind)
	case snapshotMsg:
		m.reply <- r.snapshot()
	case bannerSettled:
		if v, ok := r.banner.Settle(m.gen); ok {
			r.logger.Debugw("Team banner recognition settled", "state", v)
			r.bannerRecognized = v
			r.emitVisibility()
		}
	case bootstrapTimeout:
		if m.gen == r.bootstrapGen && r.bootstrapping {
			r.logger.Warnw("Bootstrap timed out", "pending", len(r.pending))
			r.finishBootstrap("timeout")
		}
	default:
		r.logger.Warnw("Dropping unknown inbox message", "type", fmt.Sprintf("%T", msg))
	}
}

// Submit validates an admin command and forwards it to the remote service.
// It returns the request id the response will carry.
func (r *Reconciler) Submit(ctx context.Context, cmd models.Command) (string, error) {
	if cmd == nil {
		return "", fmt.Errorf("%w: nil command", ErrInvalidCommand)
	}
	if err := models.ValidateStruct(cmd); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	reply := make(chan commandReply, 1)
	if err := r.post(ctx, commandMsg{cmd: cmd, reply: reply}); err != nil {
		return "", err
	}
	select {
	case res := <-reply:
		return res.id, res.err
	case <-r.done:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Complete reports that the presentation layer finished showing the current
// item of the named queue.
func (r *Reconciler) Complete(ctx context.Context, kind models.AnnouncementKind) error {
	reply := make(chan error, 1)
	if err := r.post(ctx, completeMsg{kind: kind, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a deep copy of the canonical state.
func (r *Reconciler) Snapshot(ctx context.Context) (models.Snapshot, error) {
	reply := make(chan models.Snapshot, 1)
	if err := r.post(ctx, snapshotMsg{reply: reply}); err != nil {
		return models.Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-r.done:
		return models.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return models.Snapshot{}, ctx.Err()
	}
}

// Reconnect drops the feed connection and dials again without waiting for
// the backoff.
func (r *Reconciler) Reconnect() {
	r.logger.Infow("Reconnect requested")
	r.transport.ForceReconnect()
}

// request sends an outbound call and returns its id.
func (r *Reconciler) request(method models.EventType, args any) (string, error) {
	id := uuid.NewString()
	if err := r.transport.Send(models.Request{ID: id, Method: method, Args: args}); err != nil {
		r.logger.Warnw("Request not sent", "type", method, "error", err)
		return "", err
	}
	return id, nil
}

func (r *Reconciler) sendCommand(cmd models.Command) (string, error) {
	id, err := r.request(cmd.Method(), cmd)
	if err != nil {
		return "", fmt.Errorf("send %s: %w", cmd.Method(), err)
	}
	r.logger.Infow("Admin command forwarded", "type", cmd.Method(), "request_id", id)
	return id, nil
}

func (r *Reconciler) snapshot() models.Snapshot {
	return models.Snapshot{
		TournamentID:     r.tournamentID,
		TournamentName:   r.tournamentName,
		Connection:       r.connection,
		Bootstrapping:    r.bootstrapping,
		ResultsOnly:      r.resultsOnly,
		Game:             r.game.Clone(),
		ResultsCount:     len(r.results),
		TeamResults:      r.teamResults.Clone(),
		Params:           r.params.Clone(),
		Camera:           r.camera,
		BannerRecognized: r.bannerRecognized,
		MapRecognized:    r.mapRecognized,
		WinnerDetermined: r.winnerDetermined,
		Visibility:       r.visibility,
		QueueLengths: map[string]int{
			string(models.AnnounceSquadEliminated): r.squads.Len(),
			string(models.AnnounceTeamRespawned):   r.respawns.Len(),
		},
	}
}
