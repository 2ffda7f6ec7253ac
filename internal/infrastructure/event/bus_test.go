package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Product", uuid.New())}
}

type recordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	ctxErrs    []error
	err        error
	panicWith  any
	block      chan struct{}
}

func newRecordingHandler(eventTypes ...string) *recordingHandler {
	return &recordingHandler{eventTypes: eventTypes}
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.block != nil {
		<-h.block
	}
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	h.ctxErrs = append(h.ctxErrs, ctx.Err())
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	sales := newRecordingHandler("SaleCompleted")
	alerts := newRecordingHandler("LowStockAlertTriggered", "LowStockAlertResolved")
	all := newRecordingHandler()

	bus.Subscribe(sales)
	bus.Subscribe(alerts)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("SaleCompleted"),
		newTestEvent("LowStockAlertTriggered"),
		newTestEvent("StockChanged"),
		nil,
	))

	assert.Equal(t, 1, sales.count())
	assert.Equal(t, 1, alerts.count())
	assert.Equal(t, 3, all.count())
	assert.Equal(t, 2, bus.HandlerCount("SaleCompleted"))
}

func TestEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newRecordingHandler("SaleCompleted")
	bus.Subscribe(h, "StockChanged")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCompleted"), newTestEvent("StockChanged")))
	assert.Equal(t, 1, h.count())
	assert.Equal(t, "StockChanged", h.handled[0].EventType())
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newRecordingHandler("SaleCompleted", "StockChanged")
	other := newRecordingHandler("SaleCompleted")
	bus.Subscribe(h)
	bus.Subscribe(other)

	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCompleted"), newTestEvent("StockChanged")))
	assert.Zero(t, h.count())
	assert.Equal(t, 1, other.count())
	assert.Zero(t, bus.HandlerCount("StockChanged"))
}

func TestEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newRecordingHandler("SaleCompleted")
	failing.err = errors.New("printer offline")
	panicking := newRecordingHandler("SaleCompleted")
	panicking.panicWith = "boom"
	healthy := newRecordingHandler("SaleCompleted")

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("SaleCompleted"))
	require.NoError(t, err, "committed work never fails because of a handler")
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestEventBus_HandlersSeeDetachedContext(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := newRecordingHandler()
	bus.Subscribe(h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bus.Publish(ctx, newTestEvent("SaleCompleted")))

	require.Equal(t, 1, h.count())
	assert.NoError(t, h.ctxErrs[0])
}

func TestEventBus_AsyncDispatchDrainsOnStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil, WithAsyncDispatch(2, 16))
	h := newRecordingHandler("StockChanged")
	bus.Subscribe(h)
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Start(context.Background()), "start is idempotent")

	for i := 0; i < 10; i++ {
		require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 10, h.count())

	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("StockChanged")), ErrBusStopped)
	assert.NoError(t, bus.Stop(ctx), "stop is idempotent")
	assert.ErrorIs(t, bus.Start(ctx), ErrBusStopped)
}

func TestEventBus_FullQueueDeliversInline(t *testing.T) {
	bus := NewInMemoryEventBus(nil, WithAsyncDispatch(1, 1))
	h := newRecordingHandler("StockChanged")
	h.block = make(chan struct{})
	bus.Subscribe(h)
	require.NoError(t, bus.Start(context.Background()))

	// first event occupies the worker, second fills the queue
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged")))
	require.Eventually(t, func() bool { return len(bus.queue) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("StockChanged")))

	inline := make(chan struct{})
	go func() {
		_ = bus.Publish(context.Background(), newTestEvent("StockChanged"))
		close(inline)
	}()

	close(h.block)
	select {
	case <-inline:
	case <-time.After(5 * time.Second):
		t.Fatal("inline publish did not return")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.Equal(t, 3, h.count())
}

func TestEventBus_StopHonoursContext(t *testing.T) {
	bus := NewInMemoryEventBus(nil, WithAsyncDispatch(1, 4))
	h := newRecordingHandler()
	h.block = make(chan struct{})
	defer close(h.block)
	bus.Subscribe(h)
	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("SaleCompleted")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bus.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
