package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"agriqcert/pkg/requestcontext"
)

// Publisher records audit events. Emission is best-effort: failures are
// logged and never returned to the caller's primary operation.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
	now    func() time.Time

	// mu guards closed against sends racing Close.
	mu     sync.RWMutex
	closed bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer persists events from a background goroutine. Events are
// dropped with a warning when the buffer is full.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		p.persist(context.Background(), event)
	}
}

// Close drains pending async events. Events emitted afterwards are dropped
// with a warning, and repeated calls are no-ops.
func (p *Publisher) Close() {
	if !p.async || p.events == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	p.wg.Wait()
}

// Emit stamps the event with a timestamp and the request ID from ctx, then stores it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil || p.store == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	if !p.async {
		p.persist(context.WithoutCancel(ctx), event)
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.drop("audit publisher closed, event dropped", event)
		return
	}
	select {
	case p.events <- event:
	default:
		p.drop("audit buffer full, event dropped", event)
	}
}

func (p *Publisher) drop(msg string, event Event) {
	if p.logger != nil {
		p.logger.Warn(msg,
			"action", event.Action,
			"entity_id", event.EntityID,
		)
	}
}

func (p *Publisher) persist(ctx context.Context, event Event) {
	if err := p.store.Append(ctx, event); err != nil && p.logger != nil {
		p.logger.Warn("failed to persist audit event",
			"error", err,
			"action", event.Action,
			"entity_id", event.EntityID,
		)
	}
}
