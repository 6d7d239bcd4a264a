package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/feed"
	"github.com/openmohaa/overlay-engine/internal/models"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// Engine is the reconciler surface driven over HTTP.
type Engine interface {
	Submit(ctx context.Context, cmd models.Command) (string, error)
	Complete(ctx context.Context, kind models.AnnouncementKind) error
	Snapshot(ctx context.Context) (models.Snapshot, error)
	Reconnect()
}

// LivePublisher defines the interface for the Redis notification worker pool
type LivePublisher interface {
	Ping(ctx context.Context) error
	QueueDepth() int
}

// FeedStatus reports the live feed connection.
type FeedStatus interface {
	State() feed.State
}

type Config struct {
	Engine      Engine
	Publisher   LivePublisher
	Feed        FeedStatus
	Logger      *zap.Logger
	MaxBodySize int64
}

type Handler struct {
	engine      Engine
	publisher   LivePublisher
	feed        FeedStatus
	logger      *zap.SugaredLogger
	maxBodySize int64
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = MaxBodySize
	}
	return &Handler{
		engine:      cfg.Engine,
		publisher:   cfg.Publisher,
		feed:        cfg.Feed,
		logger:      cfg.Logger.Sugar(),
		maxBodySize: cfg.MaxBodySize,
	}
}
