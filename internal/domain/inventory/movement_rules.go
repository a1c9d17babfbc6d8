package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// signRule indica el signo exigido por tipo: +1 solo entradas, -1 solo salidas, 0 libre.
var signRule = map[entity.MovementType]int{
	entity.MovementReceipt:     1,
	entity.MovementReturn:      1,
	entity.MovementTransferIn:  1,
	entity.MovementSale:        -1,
	entity.MovementDamage:      -1,
	entity.MovementTransferOut: -1,
	entity.MovementAdjustment:  0,
	entity.MovementRecount:     0,
}

// ParseMovementType normaliza y valida el tipo recibido desde fuera.
func ParseMovementType(s string) (entity.MovementType, error) {
	t := entity.MovementType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := signRule[t]; !ok {
		return "", domain.ErrInvalidMovement
	}
	return t, nil
}

// ValidateMovement revisa la forma del movimiento antes de tocar el ledger.
func ValidateMovement(t entity.MovementType, delta int64, meta entity.MovementMetadata) error {
	rule, ok := signRule[t]
	if !ok || delta == 0 {
		return domain.ErrInvalidMovement
	}
	if strings.TrimSpace(meta.PerformedBy) == "" {
		return domain.ErrInvalidMovement
	}
	if rule > 0 && delta < 0 || rule < 0 && delta > 0 {
		return domain.ErrInvalidMovement
	}
	if meta.UnitCost != nil && meta.UnitCost.IsNegative() {
		return domain.ErrInvalidMovement
	}
	return nil
}

// ApplyMovement aplica el movimiento sobre el ítem ya bloqueado y devuelve la fila del ledger.
// Si falla, el ítem queda intacto. No toca reservado ni comprometido.
func ApplyMovement(item *entity.InventoryItem, t entity.MovementType, delta int64, meta entity.MovementMetadata, now time.Time) (*entity.StockMovement, error) {
	if err := ValidateMovement(t, delta, meta); err != nil {
		return nil, domain.NewStockError(err, item)
	}
	before := item.QuantityOnHand
	after := before + delta

	if !item.IsActive && !(t == entity.MovementAdjustment && after == 0) {
		return nil, domain.NewStockError(domain.ErrInactiveItem, item)
	}
	if after < 0 {
		return nil, domain.NewStockError(domain.ErrInsufficientStock, item)
	}
	// Una salida no puede dejar sin respaldo lo ya prometido a pedidos.
	if delta < 0 && after < item.QuantityReserved+item.QuantityCommitted {
		return nil, domain.NewStockError(domain.ErrInsufficientAvailableStock, item)
	}

	if meta.UnitCost != nil {
		switch t {
		case entity.MovementReceipt:
			item.AverageCost = CostCalculator(before, item.AverageCost, delta, *meta.UnitCost)
			item.LastPurchaseCost = *meta.UnitCost
		case entity.MovementTransferIn:
			// El traslado trae el costo promedio de origen; no es una compra.
			item.AverageCost = CostCalculator(before, item.AverageCost, delta, *meta.UnitCost)
		}
	}
	item.QuantityOnHand = after
	item.UpdatedAt = now

	reason := meta.Reason
	if reason == "" {
		reason = string(t)
	}
	var unitCost *decimal.Decimal
	if meta.UnitCost != nil {
		c := *meta.UnitCost
		unitCost = &c
	}
	return &entity.StockMovement{
		ID:              uuid.New().String(),
		InventoryItemID: item.ID,
		Type:            t,
		QuantityChange:  delta,
		QuantityBefore:  before,
		QuantityAfter:   after,
		UnitCost:        unitCost,
		Reference:       meta.Reference,
		PerformedBy:     meta.PerformedBy,
		PerformedAt:     now,
		Reason:          reason,
		Notes:           meta.Notes,
	}, nil
}
