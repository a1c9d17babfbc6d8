package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento de stock.
type MovementType string

// Tipos de movimiento.
const (
	MovementReceipt     MovementType = "RECEIPT"      // entrada de compra
	MovementSale        MovementType = "SALE"         // salida por venta
	MovementAdjustment  MovementType = "ADJUSTMENT"   // ajuste (signo libre)
	MovementTransferOut MovementType = "TRANSFER_OUT" // salida por traslado
	MovementTransferIn  MovementType = "TRANSFER_IN"  // entrada por traslado
	MovementReturn      MovementType = "RETURN"       // devolución de cliente
	MovementDamage      MovementType = "DAMAGE"       // merma o daño
	MovementRecount     MovementType = "RECOUNT"      // conteo cíclico (signo libre)
)

// StockMovement es un cambio de cantidad inmutable con su auditoría.
// QuantityAfter = QuantityBefore + QuantityChange, siempre >= 0.
type StockMovement struct {
	ID              string
	InventoryItemID string
	Type            MovementType
	QuantityChange  int64
	QuantityBefore  int64
	QuantityAfter   int64
	UnitCost        *decimal.Decimal
	Reference       *string // OC, pedido o id de traslado
	PerformedBy     string
	PerformedAt     time.Time
	Reason          string
	Notes           *string
}

// MovementMetadata datos de auditoría que acompañan a un movimiento.
type MovementMetadata struct {
	PerformedBy string
	Reason      string
	Reference   *string
	Notes       *string
	UnitCost    *decimal.Decimal
}
