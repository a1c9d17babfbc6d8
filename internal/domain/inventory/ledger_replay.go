package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// LedgerCheck resultado de reproducir los movimientos de un ítem desde cero.
type LedgerCheck struct {
	InventoryItemID string
	Movements       int
	ReplayedOnHand  int64
	CurrentOnHand   int64
	// BrokenAt es el índice del primer movimiento cuyo before no coincide con el after anterior, o -1.
	BrokenAt   int
	Consistent bool
}

// Replay recorre movs en orden de commit y verifica la cadena before/after.
func Replay(item *entity.InventoryItem, movs []*entity.StockMovement) LedgerCheck {
	check := LedgerCheck{
		InventoryItemID: item.ID,
		Movements:       len(movs),
		CurrentOnHand:   item.QuantityOnHand,
		BrokenAt:        -1,
	}
	var qty int64
	for i, m := range movs {
		if check.BrokenAt < 0 && (m.QuantityBefore != qty || m.QuantityAfter != m.QuantityBefore+m.QuantityChange || m.QuantityAfter < 0) {
			check.BrokenAt = i
		}
		qty += m.QuantityChange
	}
	check.ReplayedOnHand = qty
	check.Consistent = check.BrokenAt < 0 && qty == item.QuantityOnHand
	return check
}
