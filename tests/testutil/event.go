package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
)

// RecordingHandler is a shared.EventHandler that keeps every event it sees
type RecordingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewRecordingHandler subscribes to the given event types; none means all
func NewRecordingHandler(eventTypes ...string) *RecordingHandler {
	return &RecordingHandler{eventTypes: eventTypes}
}

// EventTypes returns the subscribed event types
func (h *RecordingHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error
func (h *RecordingHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events
func (h *RecordingHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// HandledOfType returns the recorded events with the given type
func (h *RecordingHandler) HandledOfType(eventType string) []shared.DomainEvent {
	var out []shared.DomainEvent
	for _, e := range h.Handled() {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events were recorded
func (h *RecordingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// FailWith makes subsequent Handle calls return err
func (h *RecordingHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset drops the recorded events and the configured error
func (h *RecordingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
}

// TestEvent is a minimal domain event for bus and handler tests
type TestEvent struct {
	shared.BaseDomainEvent
	Payload string
}

// NewTestEvent creates an event of the given type on a fresh aggregate
func NewTestEvent(eventType string) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Payload:         "payload",
	}
}

// WithID overrides the event ID, for redelivery scenarios
func (e *TestEvent) WithID(id uuid.UUID) *TestEvent {
	e.ID = id
	return e
}

// WaitForCount waits until the handler has recorded at least n events
func WaitForCount(t *testing.T, h *RecordingHandler, n int, timeout time.Duration) bool {
	t.Helper()
	return waitUntil(func() bool { return h.Count() >= n }, timeout, 10*time.Millisecond)
}
