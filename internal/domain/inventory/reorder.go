package inventory

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// ReorderEvaluation resultado del evaluador de reorden.
type ReorderEvaluation struct {
	InventoryItemID     string
	QuantityAvailable   int64
	IsLowStock          bool
	IsOutOfStock        bool
	SuggestedReorderQty int64
}

// NeedsAttention indica si el ítem está bajo o agotado (listados de stock bajo).
func (e ReorderEvaluation) NeedsAttention() bool {
	return e.IsLowStock || e.IsOutOfStock
}

// WarrantsSignal indica si se emite señal de reorden: agotado, o bajo con algo que pedir.
// En available == minimumStock el ítem es bajo pero la sugerencia es 0 y no se señala.
func (e ReorderEvaluation) WarrantsSignal() bool {
	return e.IsOutOfStock || e.IsLowStock && e.SuggestedReorderQty > 0
}

// Evaluate calcula las banderas de stock bajo / agotado. Solo lectura.
// La sugerencia solo es positiva por debajo del mínimo; en el mínimo exacto es 0.
func Evaluate(item *entity.InventoryItem) ReorderEvaluation {
	available := item.QuantityAvailable()
	ev := ReorderEvaluation{
		InventoryItemID:   item.ID,
		QuantityAvailable: available,
		IsOutOfStock:      available <= 0,
	}
	if item.MinimumStock == nil {
		return ev
	}
	minStock := *item.MinimumStock
	ev.IsLowStock = available <= minStock
	if available < minStock {
		var reorderQty int64
		if item.ReorderQuantity != nil {
			reorderQty = *item.ReorderQuantity
		}
		ev.SuggestedReorderQty = max(reorderQty, minStock-available)
	}
	return ev
}
