// Package worker implements the buffered worker pool that ships overlay
// notifications to Redis. It decouples the reconciler loop from Redis I/O:
// - Backpressure handling via load shedding
// - Pipelined batch writes per worker
// - Per-hash ordering through hash-key partitioning
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/openmohaa/overlay-engine/internal/models"
)

const (
	// DefaultPrefix namespaces every key and channel.
	DefaultPrefix = "overlay"

	channelParams        = "params"
	channelAnnouncements = "announcements"

	flushTimeout = 5 * time.Second
)

// Prometheus metrics
var (
	jobsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_publisher_enqueued_total",
		Help: "Total number of notifications queued for Redis",
	})

	jobsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_publisher_published_total",
		Help: "Total number of notifications written to Redis",
	})

	jobsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_publisher_failed_total",
		Help: "Total number of notifications that failed to reach Redis",
	})

	jobsLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overlay_publisher_load_shed_total",
		Help: "Total number of notifications dropped due to load shedding",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "overlay_publisher_queue_depth",
		Help: "Current depth of all publisher queues",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "overlay_publisher_batch_duration_seconds",
		Help:    "Duration of pipelined batch writes to Redis",
		Buckets: prometheus.DefBuckets,
	})
)

// Job represents a unit of work for the worker pool. Exactly one of Update,
// Announcement or Reset is set.
type Job struct {
	Update       *models.ParamUpdate
	Announcement *models.Announcement
	Reset        bool
	Timestamp    time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	Prefix        string
	Store         LiveStore
	Logger        *zap.Logger
}

// Pool manages a pool of workers, each owning one partition of the keys.
type Pool struct {
	config PoolConfig
	queues []chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.SugaredLogger
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 50 * time.Millisecond
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	perWorker := cfg.QueueSize / cfg.WorkerCount
	if perWorker < 1 {
		perWorker = 1
	}
	queues := make([]chan Job, cfg.WorkerCount)
	for i := range queues {
		queues[i] = make(chan Job, perWorker)
	}

	return &Pool{
		config: cfg,
		queues: queues,
		logger: cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := range p.queues {
		p.wg.Add(1)
		go p.worker(i, p.queues[i])
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
		"prefix", p.config.Prefix,
	)
}

// Stop gracefully shuts down the worker pool, flushing what is queued.
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")
	p.cancel()
	for _, q := range p.queues {
		close(q)
	}
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

// OnUpdate queues a parameter update.
func (p *Pool) OnUpdate(u models.ParamUpdate) {
	p.Enqueue(Job{Update: &u, Timestamp: time.Now()})
}

// OnAnnouncement queues an announcement.
func (p *Pool) OnAnnouncement(a models.Announcement) {
	p.Enqueue(Job{Announcement: &a, Timestamp: time.Now()})
}

// OnReset asks every worker to flush and drop the keys it wrote. The reset
// is never shed, so it waits for room in each queue.
func (p *Pool) OnReset() {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue reset (pool stopped)", "error", r)
		}
	}()
	for i, q := range p.queues {
		select {
		case q <- Job{Reset: true, Timestamp: time.Now()}:
		case <-p.ctx.Done():
			p.logger.Warnw("Worker pool context canceled, reset not queued", "worker", i)
			return
		}
	}
}

// Enqueue adds a job to its partition's queue. Returns false, without
// blocking, if that queue is full (load shedding).
func (p *Pool) Enqueue(job Job) bool {
	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue notification (pool stopped)", "error", r)
		}
	}()

	q := p.queues[p.partition(job)]
	select {
	case q <- job:
		jobsEnqueued.Inc()
		return true
	default:
		jobsLoadShed.Inc()
		p.logger.Warnw("Publisher queue full, dropping notification", "key", jobKey(job))
		return false
	}
}

// QueueDepth returns the number of queued jobs across all workers.
func (p *Pool) QueueDepth() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

// Ping checks that the store is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	return p.config.Store.Ping(ctx)
}

func jobKey(job Job) string {
	switch {
	case job.Update != nil:
		return job.Update.Key()
	case job.Announcement != nil:
		return string(job.Announcement.Kind)
	}
	return ""
}

// routeKey is the Redis hash a job writes to. Every field of one hash goes
// through the same worker, so a reset DEL of that hash is ordered against
// all of its writes.
func (p *Pool) routeKey(job Job) string {
	if job.Update != nil {
		return p.hashKey(job.Update.Scope, job.Update.ScopeID)
	}
	return jobKey(job)
}

// partition maps a job to the worker that owns its hash.
func (p *Pool) partition(job Job) int {
	return int(xxhash.Sum64String(p.routeKey(job)) % uint64(len(p.queues)))
}

// worker drains one queue in batches
func (p *Pool) worker(id int, jobs <-chan Job) {
	defer p.wg.Done()

	p.logger.Debugw("Worker started", "worker", id)

	written := make(map[string]struct{})
	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch, written); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			jobsFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			jobsPublished.Add(float64(len(batch)))
		}
		batchDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				flush()
				return
			}
			if job.Reset {
				flush()
				p.clear(id, written)
				written = make(map[string]struct{})
				continue
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch writes a batch as one pipeline: the hash fields, one params
// message for the whole batch, then each announcement.
func (p *Pool) processBatch(batch []Job, written map[string]struct{}) error {
	var (
		writes   []FieldWrite
		messages []Message
		updates  []models.ParamUpdate
		shown    []Message
	)

	for _, job := range batch {
		switch {
		case job.Update != nil:
			u := *job.Update
			key := p.hashKey(u.Scope, u.ScopeID)
			var value []byte
			if u.Value != nil {
				data, err := json.Marshal(u.Value)
				if err != nil {
					p.logger.Warnw("Dropping unencodable parameter", "key", u.Key(), "error", err)
					continue
				}
				value = data
			}
			writes = append(writes, FieldWrite{Key: key, Field: u.Name, Value: value})
			written[key] = struct{}{}
			updates = append(updates, u)

		case job.Announcement != nil:
			data, err := json.Marshal(job.Announcement)
			if err != nil {
				p.logger.Warnw("Dropping unencodable announcement", "kind", job.Announcement.Kind, "error", err)
				continue
			}
			shown = append(shown, Message{Channel: p.channel(channelAnnouncements), Payload: data})
		}
	}

	if len(updates) > 0 {
		data, err := json.Marshal(updates)
		if err != nil {
			return err
		}
		messages = append(messages, Message{Channel: p.channel(channelParams), Payload: data})
	}
	messages = append(messages, shown...)

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	return p.config.Store.Apply(ctx, writes, messages)
}

// clear deletes every key the worker wrote since the last reset.
func (p *Pool) clear(id int, written map[string]struct{}) {
	if len(written) == 0 {
		return
	}
	keys := make([]string, 0, len(written))
	for k := range written {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.config.Store.Del(ctx, keys...); err != nil {
		p.logger.Errorw("Failed to clear keys on reset", "worker", id, "keys", len(keys), "error", err)
		return
	}
	p.logger.Infow("Cleared keys on reset", "worker", id, "keys", len(keys))
}

// hashKey is <prefix>:<scope>[:<id>].
func (p *Pool) hashKey(scope models.Scope, id string) string {
	key := p.config.Prefix + ":" + string(scope)
	if id != "" {
		key += ":" + id
	}
	return key
}

func (p *Pool) channel(name string) string {
	return p.config.Prefix + ":" + name
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(p.QueueDepth()))
		case <-p.ctx.Done():
			return
		}
	}
}
