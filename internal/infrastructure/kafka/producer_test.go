package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_MovimientosConClaveDeItem(t *testing.T) {
	mw, rw := &fakeWriter{}, &fakeWriter{}
	p := NewPublisher(mw, rw, "mov", "reorder", nil)
	ref := "t-1"

	err := p.PublishMovements(context.Background(), []*entity.StockMovement{
		{ID: "m-1", InventoryItemID: "i-1", Type: entity.MovementTransferOut, QuantityChange: -3, QuantityBefore: 5, QuantityAfter: 2, Reference: &ref, PerformedBy: "u", PerformedAt: time.Now()},
		{ID: "m-2", InventoryItemID: "i-2", Type: entity.MovementTransferIn, QuantityChange: 3, QuantityAfter: 3, Reference: &ref, PerformedBy: "u", PerformedAt: time.Now()},
	})
	require.NoError(t, err)
	require.Len(t, mw.msgs, 2)
	assert.Equal(t, "i-1", string(mw.msgs[0].Key))

	var ev MovementEvent
	require.NoError(t, json.Unmarshal(mw.msgs[0].Value, &ev))
	assert.Equal(t, EventMovementRecorded, ev.EventType)
	assert.Equal(t, "TRANSFER_OUT", ev.Type)
	assert.Equal(t, "t-1", *ev.Reference)
	assert.Empty(t, rw.msgs)
}

func TestPublisher_SenalDeReorden(t *testing.T) {
	mw, rw := &fakeWriter{}, &fakeWriter{}
	p := NewPublisher(mw, rw, "mov", "reorder", nil)

	err := p.PublishReorderSignal(context.Background(), inventory.ReorderSignal{InventoryItemID: "i-1", IsLowStock: true, SuggestedReorderQty: 7})
	require.NoError(t, err)
	require.Len(t, rw.msgs, 1)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rw.msgs[0].Value, &body))
	assert.Equal(t, EventReorderSignal, body["event_type"])
	assert.Equal(t, "i-1", body["inventory_item_id"])
	assert.EqualValues(t, 7, body["suggested_reorder_qty"])
}

func TestPublisher_ErrorDeEscritura(t *testing.T) {
	mw := &fakeWriter{err: errors.New("broker caído")}
	p := NewPublisher(mw, &fakeWriter{}, "mov", "reorder", nil)
	err := p.PublishMovements(context.Background(), []*entity.StockMovement{{ID: "m-1", InventoryItemID: "i-1"}})
	assert.Error(t, err)

	assert.NoError(t, p.PublishMovements(context.Background(), nil))
}

func TestPublisher_Close(t *testing.T) {
	mw, rw := &fakeWriter{}, &fakeWriter{}
	require.NoError(t, NewPublisher(mw, rw, "a", "b", nil).Close())
	assert.True(t, mw.closed)
	assert.True(t, rw.closed)
}
