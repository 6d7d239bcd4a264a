// Package feed is the live feed client: a websocket connection to the remote
// tournament service with automatic reconnection.
package feed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4 << 20

	sendBufferSize  = 256
	eventBufferSize = 1024
)

var (
	// ErrNotConnected is returned by Send while no connection is up.
	ErrNotConnected = errors.New("feed: not connected")
	// ErrSendBufferFull is returned when outbound requests back up.
	ErrSendBufferFull = errors.New("feed: send buffer full")
)

// Prometheus metrics
var (
	feedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "overlay_feed_connected",
		Help: "1 while the live feed connection is up",
	})

	feedDials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overlay_feed_dials_total",
		Help: "Connection attempts to the live feed by outcome",
	}, []string{"outcome"})

	feedMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overlay_feed_messages_total",
		Help: "Inbound feed frames by decode outcome",
	}, []string{"outcome"})
)

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return "disconnected"
}

// EventKind classifies what the client reports to its consumer.
type EventKind int

const (
	EventOpen EventKind = iota
	EventClose
	EventError
	EventMessage
)

// Event is a connection notification or a decoded inbound message.
type Event struct {
	Kind    EventKind
	Message models.Event
	Err     error
}

// Conn is the subset of *websocket.Conn the client uses.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	SetReadLimit(limit int64)
	Close() error
}

// Dialer opens connections.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// WebsocketDialer dials with gorilla/websocket.
type WebsocketDialer struct {
	Dialer *websocket.Dialer
	Header http.Header
}

func (d WebsocketDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, url, d.Header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config configures the feed client
type Config struct {
	URL    string
	Dialer Dialer
	Logger *zap.Logger
}

// Client keeps one connection to the feed alive. Run is the only goroutine
// that dials, so at most one attempt is ever in flight.
type Client struct {
	url    string
	dialer Dialer
	logger *zap.SugaredLogger

	events chan Event
	send   chan []byte
	force  chan struct{}
	after  func(time.Duration) <-chan time.Time

	mu       sync.RWMutex
	state    State
	failures int
}

// New creates a feed client
func New(cfg Config) *Client {
	if cfg.Dialer == nil {
		cfg.Dialer = WebsocketDialer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		url:    cfg.URL,
		dialer: cfg.Dialer,
		logger: cfg.Logger.Sugar(),
		events: make(chan Event, eventBufferSize),
		send:   make(chan []byte, sendBufferSize),
		force:  make(chan struct{}, 1),
		after:  time.After,
	}
}

// Events delivers connection notifications and decoded messages in order.
func (c *Client) Events() <-chan Event {
	return c.events
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Failures returns the consecutive failure count driving the backoff.
func (c *Client) Failures() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failures
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	if s == Connected {
		feedConnected.Set(1)
	} else {
		feedConnected.Set(0)
	}
}

// Send queues a request for the write pump.
func (c *Client) Send(req models.Request) error {
	if c.State() != Connected {
		return ErrNotConnected
	}
	b, err := Encode(req)
	if err != nil {
		return err
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// ForceReconnect drops the live connection (or the pending backoff wait) and
// dials again immediately. Signals received while a dial is in flight are
// absorbed by that dial.
func (c *Client) ForceReconnect() {
	select {
	case c.force <- struct{}{}:
	default:
	}
}

// Run connects and keeps reconnecting until ctx is cancelled.
func (c *Client) Run(ctx context.Context) error {
	c.logger.Infow("Feed client started", "url", c.url)
	defer c.setState(Disconnected)

	for {
		c.setState(Connecting)
		conn, err := c.dialer.Dial(ctx, c.url)
		c.drainForce()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			feedDials.WithLabelValues("error").Inc()
			c.logger.Warnw("Feed connect failed", "url", c.url, "failures", c.Failures(), "error", err)
			c.setState(Disconnected)
			c.emit(ctx, Event{Kind: EventError, Err: err})
			if !c.wait(ctx) {
				return nil
			}
			continue
		}

		feedDials.WithLabelValues("ok").Inc()
		c.mu.Lock()
		c.failures = 0
		c.mu.Unlock()
		c.drainSend()
		c.setState(Connected)
		c.logger.Infow("Feed connected", "url", c.url)
		c.emit(ctx, Event{Kind: EventOpen})

		forced, err := c.serve(ctx, conn)
		c.setState(Disconnected)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warnw("Feed disconnected", "forced", forced, "error", err)
		c.emit(ctx, Event{Kind: EventClose, Err: err})
		if forced {
			continue
		}
		if !c.wait(ctx) {
			return nil
		}
	}
}

// wait sleeps for the backoff delay. A force signal cuts the wait short.
// Returns false when ctx is done.
func (c *Client) wait(ctx context.Context) bool {
	c.mu.Lock()
	delay := Backoff(c.failures)
	c.failures++
	c.mu.Unlock()

	c.logger.Infow("Feed reconnect scheduled", "delay", delay)
	select {
	case <-c.after(delay):
		return true
	case <-c.force:
		return true
	case <-ctx.Done():
		return false
	}
}

// serve pumps one connection until it fails, is forced closed, or ctx ends.
func (c *Client) serve(ctx context.Context, conn Conn) (forced bool, err error) {
	readErr := make(chan error, 1)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		readErr <- c.readPump(ctx, conn)
	}()

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		<-readDone
	}()

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			return false, ctx.Err()

		case <-c.force:
			c.logger.Infow("Feed reconnect forced")
			return true, nil

		case err := <-readErr:
			return false, err

		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return false, err
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return false, err
			}
		}
	}
}

func (c *Client) readPump(ctx context.Context, conn Conn) error {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		env, err := DecodeEnvelope(data)
		if err != nil {
			feedMessages.WithLabelValues("malformed").Inc()
			c.logger.Warnw("Dropping malformed feed frame", "error", err)
			continue
		}
		ev, err := DecodeEvent(env)
		if err != nil {
			feedMessages.WithLabelValues("invalid").Inc()
			c.logger.Warnw("Dropping invalid feed event", "type", env.Type, "error", err)
			continue
		}
		feedMessages.WithLabelValues("ok").Inc()
		c.emit(ctx, Event{Kind: EventMessage, Message: ev})
	}
}

func (c *Client) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

func (c *Client) drainForce() {
	select {
	case <-c.force:
	default:
	}
}

// drainSend discards requests queued for a previous connection.
func (c *Client) drainSend() {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
