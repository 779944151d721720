// Package security publishes security audit events asynchronously. Emit never
// blocks a check-in; a background loop drains the buffer to a Sink in batches.
package security

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "checkin/pkg/platform/audit"
	"checkin/pkg/requestcontext"
)

// Sink delivers a batch of events to durable storage or a broker.
type Sink interface {
	Publish(ctx context.Context, events []audit.SecurityEvent) error
}

const (
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
	finalFlushTimeout    = 5 * time.Second
)

// Publisher buffers events in a RingBuffer and flushes them to a Sink.
type Publisher struct {
	buffer        *RingBuffer
	sink          Sink
	logger        *slog.Logger
	batchSize     int
	flushInterval time.Duration
	wake          chan struct{}
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithBatchSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithBufferCapacity(capacity int) Option {
	return func(p *Publisher) {
		p.buffer = NewRingBuffer(capacity)
	}
}

// NewPublisher constructs a publisher that delivers to sink.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		buffer:        NewRingBuffer(0),
		sink:          sink,
		logger:        slog.Default(),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		wake:          make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and buffers an event. It never blocks on the sink.
func (p *Publisher) Emit(ctx context.Context, event audit.SecurityEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if p.buffer.Enqueue(event) >= p.batchSize {
		select {
		case p.wake <- struct{}{}:
		default:
		}
	}
}

// Run flushes on every interval tick or when a full batch is waiting, until
// ctx is done. Remaining events get one last flush on a fresh deadline.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
			p.Flush(flushCtx)
			cancel()
			return nil
		case <-ticker.C:
			p.Flush(ctx)
		case <-p.wake:
			p.Flush(ctx)
		}
	}
}

// Flush drains the buffer in batches. A batch the sink rejects is logged and
// dropped; audit delivery must not stall check-ins.
func (p *Publisher) Flush(ctx context.Context) int {
	delivered := 0
	for {
		batch := p.buffer.DequeueBatch(p.batchSize)
		if len(batch) == 0 {
			return delivered
		}
		if err := p.sink.Publish(ctx, batch); err != nil {
			p.logger.ErrorContext(ctx, "security audit batch dropped",
				"error", err,
				"events", len(batch),
			)
			return delivered
		}
		delivered += len(batch)
	}
}

// Pending returns the number of buffered events.
func (p *Publisher) Pending() int {
	return p.buffer.Len()
}

// Dropped returns the number of events overwritten while the buffer was full.
func (p *Publisher) Dropped() int64 {
	return p.buffer.Dropped()
}
