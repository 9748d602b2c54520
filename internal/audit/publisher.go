package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Publisher emits audit events to a sink, synchronously by default or through
// a bounded buffer when configured. A full buffer drops the event rather than
// blocking the request path; audit is best-effort observability, not a ledger.
type Publisher struct {
	sink   Sink
	logger *slog.Logger

	ch   chan Event
	wg   sync.WaitGroup
	once sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.ch = make(chan Event, size)
		}
	}
}

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher constructs a publisher over the given sink.
func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.ch != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event, enriching it with request-scoped context.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if p == nil || p.sink == nil {
		return nil
	}
	event = event.enrich(ctx)

	if p.ch == nil {
		return p.write(ctx, event)
	}

	select {
	case p.ch <- event:
		return nil
	default:
		p.logger.Warn("audit buffer full, dropping event", "action", event.Action)
		return nil
	}
}

// Close stops the async worker after draining buffered events.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.once.Do(func() {
		if p.ch != nil {
			close(p.ch)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.ch {
		_ = p.write(context.Background(), event)
	}
}

func (p *Publisher) write(ctx context.Context, event Event) error {
	if err := p.sink.Write(ctx, event); err != nil {
		p.logger.Error("audit event delivery failed",
			"action", event.Action,
			"error", err,
		)
		return err
	}
	return nil
}
