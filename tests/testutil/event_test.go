package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingHandler(t *testing.T) {
	h := NewRecordingHandler("SaleCompleted", "LowStockAlertTriggered")
	assert.Equal(t, []string{"SaleCompleted", "LowStockAlertTriggered"}, h.EventTypes())

	sale := NewTestEvent("SaleCompleted")
	alert := NewTestEvent("LowStockAlertTriggered")
	require.NoError(t, h.Handle(context.Background(), sale))
	require.NoError(t, h.Handle(context.Background(), alert))

	assert.Equal(t, 2, h.Count())
	assert.Len(t, h.HandledOfType("SaleCompleted"), 1)
	assert.Same(t, sale, h.Handled()[0])

	h.FailWith(assert.AnError)
	assert.ErrorIs(t, h.Handle(context.Background(), sale), assert.AnError)

	h.Reset()
	assert.Zero(t, h.Count())
	assert.NoError(t, h.Handle(context.Background(), sale))
}

func TestNewTestEvent(t *testing.T) {
	e := NewTestEvent("StockRestocked")

	assert.NotEqual(t, uuid.Nil, e.EventID())
	assert.NotEqual(t, uuid.Nil, e.AggregateID())
	assert.Equal(t, "StockRestocked", e.EventType())
	assert.Equal(t, "TestAggregate", e.AggregateType())
	assert.WithinDuration(t, time.Now(), e.OccurredAt(), time.Second)

	id := uuid.New()
	assert.Equal(t, id, NewTestEvent("StockRestocked").WithID(id).EventID())
}

func TestWaitForCount(t *testing.T) {
	h := NewRecordingHandler()
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = h.Handle(context.Background(), NewTestEvent("SaleCompleted"))
	}()

	assert.True(t, WaitForCount(t, h, 1, time.Second))
	assert.False(t, WaitForCount(t, h, 2, 50*time.Millisecond))
}
