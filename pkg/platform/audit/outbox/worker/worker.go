package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"veriledger/internal/platform/kafka/producer"
	"veriledger/pkg/platform/circuit"
	"veriledger/pkg/platform/audit/outbox"
	"veriledger/pkg/platform/audit/outbox/metrics"
)

//go:generate mockgen -source=worker.go -destination=mocks/mocks.go -package=mocks Publisher

// DefaultTopic carries the audit stream consumed by the off-chain indexer.
const DefaultTopic = "kyc.audit"

// Publisher delivers one message to the stream. *producer.Producer satisfies it.
type Publisher interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Worker polls the outbox and publishes pending entries.
type Worker struct {
	store        outbox.Store
	publisher    Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
	breaker      *circuit.Breaker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Worker.
type Option func(*Worker)

// WithBreaker tracks publish health. While the breaker is open a poll stops
// at the first failed entry instead of retrying the whole batch.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) {
		w.breaker = b
	}
}

// WithTopic sets the Kafka topic for publishing.
func WithTopic(topic string) Option {
	return func(w *Worker) {
		w.topic = topic
	}
}

// WithBatchSize sets the maximum number of entries to fetch per poll.
func WithBatchSize(size int) Option {
	return func(w *Worker) {
		w.batchSize = size
	}
}

// WithPollInterval sets the interval between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(w *Worker) {
		w.pollInterval = interval
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// New creates a new outbox worker.
func New(store outbox.Store, publisher Publisher, opts ...Option) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		store:        store,
		publisher:    publisher,
		topic:        DefaultTopic,
		batchSize:    100,
		pollInterval: 200 * time.Millisecond,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins the polling loop in a background goroutine.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.drain()
			return
		case <-ticker.C:
			w.Poll(w.ctx)
		}
	}
}

// Poll publishes one batch and returns how many entries were published.
func (w *Worker) Poll(ctx context.Context) int {
	start := time.Now()

	entries, err := w.store.FetchUnprocessed(ctx, w.batchSize)
	if err != nil {
		w.logError(ctx, "failed to fetch outbox entries", "error", err)
		if w.metrics != nil {
			w.metrics.IncPublishFailures()
		}
		return 0
	}
	if len(entries) == 0 {
		return 0
	}
	if w.metrics != nil {
		w.metrics.ObserveBatchSize(len(entries))
	}

	published := 0
	for _, entry := range entries {
		if w.publishAndMark(ctx, entry) {
			published++
			continue
		}
		if w.breaker != nil && w.breaker.IsOpen() {
			break
		}
	}

	if w.metrics != nil {
		w.metrics.ObservePollDuration(time.Since(start).Seconds())
	}
	return published
}

func (w *Worker) publishAndMark(ctx context.Context, entry *outbox.Entry) bool {
	start := time.Now()
	msg := &producer.Message{
		Topic: w.topic,
		Key:   []byte(entry.ID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			"aggregate_type": entry.AggregateType,
			"aggregate_id":   entry.AggregateID,
			"event_type":     entry.EventType,
		},
	}
	if err := w.publisher.Produce(ctx, msg); err != nil {
		w.logError(ctx, "failed to publish outbox entry",
			"id", entry.ID,
			"event_type", entry.EventType,
			"error", err,
		)
		if w.metrics != nil {
			w.metrics.IncPublishFailures()
		}
		if w.breaker != nil && w.breaker.RecordFailure() == circuit.Opened && w.logger != nil {
			w.logger.WarnContext(ctx, "audit stream circuit opened", "breaker", w.breaker.Name())
		}
		// retried on the next poll
		return false
	}
	if w.breaker != nil && w.breaker.RecordSuccess() == circuit.Closed && w.logger != nil {
		w.logger.InfoContext(ctx, "audit stream circuit closed", "breaker", w.breaker.Name())
	}
	if w.metrics != nil {
		w.metrics.ObservePublishDuration(time.Since(start).Seconds())
	}

	if err := w.store.MarkProcessed(ctx, entry.ID, time.Now()); err != nil {
		// published but not marked: the indexer deduplicates by key
		w.logError(ctx, "failed to mark entry as processed", "id", entry.ID, "error", err)
		return false
	}
	if w.metrics != nil {
		w.metrics.IncPublished()
	}
	return true
}

// drain publishes what is left during shutdown.
func (w *Worker) drain() {
	if w.logger != nil {
		w.logger.Info("draining outbox worker")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for ctx.Err() == nil {
		if w.Poll(ctx) == 0 {
			return
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateMetrics updates the pending depth metric.
func (w *Worker) UpdateMetrics(ctx context.Context) error {
	if w.metrics == nil {
		return nil
	}
	count, err := w.store.CountPending(ctx)
	if err != nil {
		return err
	}
	w.metrics.SetPendingDepth(count)
	return nil
}

func (w *Worker) logError(ctx context.Context, msg string, args ...any) {
	if w.logger != nil {
		w.logger.ErrorContext(ctx, msg, args...)
	}
}
