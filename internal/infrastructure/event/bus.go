package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/retail/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrBusStopped is returned by Publish after Stop has been called
var ErrBusStopped = errors.New("event bus stopped")

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithAsyncDispatch delivers events on a pool of workers instead of the
// publishing goroutine. When the queue is full the event is delivered inline.
func WithAsyncDispatch(workers, queueSize int) BusOption {
	return func(b *InMemoryEventBus) {
		if workers > 0 {
			b.workers = workers
			b.queueSize = max(queueSize, 1)
		}
	}
}

type envelope struct {
	ctx   context.Context
	event shared.DomainEvent
}

// InMemoryEventBus delivers committed domain events to in-process handlers.
// Handler failures are logged and never reach the publisher: a sale or stock
// change that has committed stays committed.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	wildcard []shared.EventHandler

	lifecycle sync.RWMutex
	logger    *zap.Logger
	workers   int
	queueSize int
	queue     chan envelope
	stopped   atomic.Bool
	started   atomic.Bool
	wg        sync.WaitGroup
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		handlers: make(map[string][]shared.EventHandler),
		logger:   logger.Named("event_bus"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to every handler subscribed to their type
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	// handlers outlive the request that published the event
	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		if event == nil {
			continue
		}
		queued, err := b.enqueue(detached, event)
		if err != nil {
			return err
		}
		if !queued {
			b.deliver(detached, event)
		}
	}
	return nil
}

// enqueue hands the event to the workers; false means deliver inline
func (b *InMemoryEventBus) enqueue(ctx context.Context, event shared.DomainEvent) (bool, error) {
	b.lifecycle.RLock()
	defer b.lifecycle.RUnlock()

	if b.stopped.Load() {
		return false, ErrBusStopped
	}
	if b.queue == nil {
		return false, nil
	}
	select {
	case b.queue <- envelope{ctx: ctx, event: event}:
		return true, nil
	default:
		b.logger.Warn("event queue full, dispatching inline",
			zap.String("event_type", event.EventType()))
		return false, nil
	}
}

// Subscribe registers a handler. Without explicit types the handler's own
// EventTypes are used; an empty list subscribes to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	if len(eventTypes) == 0 {
		b.wildcard = append(b.wildcard, handler)
	}
	for _, eventType := range eventTypes {
		b.handlers[eventType] = append(b.handlers[eventType], handler)
	}
	b.mu.Unlock()

	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler from every event type
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.wildcard = removeHandler(b.wildcard, handler)
	for eventType, handlers := range b.handlers {
		if remaining := removeHandler(handlers, handler); len(remaining) > 0 {
			b.handlers[eventType] = remaining
		} else {
			delete(b.handlers, eventType)
		}
	}
}

// HandlerCount returns the number of handlers that would receive eventType
func (b *InMemoryEventBus) HandlerCount(eventType string) int {
	return len(b.handlersFor(eventType))
}

// Start launches the dispatch workers when async dispatch is configured
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.lifecycle.Lock()
	defer b.lifecycle.Unlock()
	if b.stopped.Load() {
		return ErrBusStopped
	}
	if !b.started.CompareAndSwap(false, true) {
		return nil
	}
	if b.workers > 0 {
		b.queue = make(chan envelope, b.queueSize)
		for i := 0; i < b.workers; i++ {
			b.wg.Add(1)
			go b.work()
		}
	}
	b.logger.Info("event bus started", zap.Int("workers", b.workers))
	return nil
}

// Stop rejects further events and waits for queued ones to be delivered, or
// for ctx to expire
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.lifecycle.Lock()
	if !b.stopped.CompareAndSwap(false, true) {
		b.lifecycle.Unlock()
		return nil
	}
	if b.queue != nil {
		close(b.queue)
	}
	b.lifecycle.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus stop: %w", ctx.Err())
	}
}

func (b *InMemoryEventBus) work() {
	defer b.wg.Done()
	for env := range b.queue {
		b.deliver(env.ctx, env.event)
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.handlersFor(event.EventType()) {
		if err := b.dispatchToHandler(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.String("handler", fmt.Sprintf("%T", handler)),
				zap.Error(err),
			)
		}
	}
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	typed := b.handlers[eventType]
	result := make([]shared.EventHandler, 0, len(typed)+len(b.wildcard))
	result = append(result, typed...)
	return append(result, b.wildcard...)
}

// dispatchToHandler turns a handler panic into an error
func (b *InMemoryEventBus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

func removeHandler(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	result := make([]shared.EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != target {
			result = append(result, h)
		}
	}
	return result
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
