package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: o se persiste todo lo que fn escribió o nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.InventoryItemRepository,
		movements repository.StockMovementRepository,
		transfers repository.StockTransferRepository,
	) error) error
}

// EventPublisher publica hechos ya confirmados en el ledger (movimientos y señales de reorden).
type EventPublisher interface {
	PublishMovements(ctx context.Context, movements []*entity.StockMovement) error
	PublishReorderSignal(ctx context.Context, signal ReorderSignal) error
}

// SignalGate deja pasar una señal por clave una vez por ventana de tiempo.
type SignalGate interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ReorderSignal evento emitido cuando un ítem queda bajo el mínimo o agotado.
type ReorderSignal struct {
	InventoryItemID     string    `json:"inventory_item_id"`
	ProductID           string    `json:"product_id"`
	ProductVariantID    *string   `json:"product_variant_id,omitempty"`
	WarehouseID         string    `json:"warehouse_id"`
	QuantityAvailable   int64     `json:"quantity_available"`
	IsLowStock          bool      `json:"is_low_stock"`
	IsOutOfStock        bool      `json:"is_out_of_stock"`
	SuggestedReorderQty int64     `json:"suggested_reorder_qty"`
	LeadTimeDays        *int      `json:"lead_time_days,omitempty"`
	EvaluatedAt         time.Time `json:"evaluated_at"`
}
