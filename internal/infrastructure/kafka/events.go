package kafka

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Tipos de evento publicados.
const (
	EventMovementRecorded = "stock.movement_recorded"
	EventReorderSignal    = "stock.reorder_signal"
)

// MovementEvent fila del ledger ya confirmada. Clave del mensaje: inventory_item_id,
// así los movimientos de un ítem quedan en una partición y en orden.
type MovementEvent struct {
	EventType       string           `json:"event_type"`
	MovementID      string           `json:"movement_id"`
	InventoryItemID string           `json:"inventory_item_id"`
	Type            string           `json:"type"`
	QuantityChange  int64            `json:"quantity_change"`
	QuantityBefore  int64            `json:"quantity_before"`
	QuantityAfter   int64            `json:"quantity_after"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	Reference       *string          `json:"reference,omitempty"`
	PerformedBy     string           `json:"performed_by"`
	PerformedAt     time.Time        `json:"performed_at"`
	Reason          string           `json:"reason"`
}

func newMovementEvent(m *entity.StockMovement) MovementEvent {
	return MovementEvent{
		EventType:       EventMovementRecorded,
		MovementID:      m.ID,
		InventoryItemID: m.InventoryItemID,
		Type:            string(m.Type),
		QuantityChange:  m.QuantityChange,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		UnitCost:        m.UnitCost,
		Reference:       m.Reference,
		PerformedBy:     m.PerformedBy,
		PerformedAt:     m.PerformedAt,
		Reason:          m.Reason,
	}
}

// FeedMessage lote de correcciones absolutas enviado por un proveedor.
type FeedMessage struct {
	FeedID      string      `json:"feed_id"`
	Reason      string      `json:"reason"`
	PerformedBy string      `json:"performed_by"`
	Entries     []FeedEntry `json:"entries"`
}

// FeedEntry una corrección: cantidad y/o costo objetivo para (sku, bodega).
type FeedEntry struct {
	SKU            string           `json:"sku"`
	WarehouseCode  string           `json:"warehouse_code"`
	QuantityOnHand *int64           `json:"quantity_on_hand,omitempty"`
	AverageCost    *decimal.Decimal `json:"average_cost,omitempty"`
}
