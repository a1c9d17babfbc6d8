package inventory

import (
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Reglas de promesas sobre el ítem bloqueado. Ninguna genera movimiento.
// En todas: onHand >= reserved + committed >= 0 se mantiene o la operación se rechaza entera.

// Reserve aparta qty para un pedido sin confirmar.
func Reserve(item *entity.InventoryItem, qty int64) error {
	if qty <= 0 {
		return domain.NewStockError(domain.ErrInvalidInput, item)
	}
	if !item.IsActive {
		return domain.NewStockError(domain.ErrInactiveItem, item)
	}
	if item.QuantityReserved+qty > item.QuantityOnHand-item.QuantityCommitted {
		return domain.NewStockError(domain.ErrInsufficientAvailableStock, item)
	}
	item.QuantityReserved += qty
	return nil
}

// Release libera qty reservado.
func Release(item *entity.InventoryItem, qty int64) error {
	if qty <= 0 || qty > item.QuantityReserved {
		return domain.NewStockError(domain.ErrInvalidInput, item)
	}
	item.QuantityReserved -= qty
	return nil
}

// Commit pasa qty de reservado a comprometido.
func Commit(item *entity.InventoryItem, qty int64) error {
	if qty <= 0 || qty > item.QuantityReserved {
		return domain.NewStockError(domain.ErrInvalidInput, item)
	}
	if !item.IsActive {
		return domain.NewStockError(domain.ErrInactiveItem, item)
	}
	reserved := item.QuantityReserved - qty
	committed := item.QuantityCommitted + qty
	if committed > item.QuantityOnHand-reserved {
		return domain.NewStockError(domain.ErrInsufficientAvailableStock, item)
	}
	item.QuantityReserved = reserved
	item.QuantityCommitted = committed
	return nil
}

// Uncommit devuelve qty de comprometido a reservado.
func Uncommit(item *entity.InventoryItem, qty int64) error {
	if qty <= 0 || qty > item.QuantityCommitted {
		return domain.NewStockError(domain.ErrInvalidInput, item)
	}
	item.QuantityCommitted -= qty
	item.QuantityReserved += qty
	return nil
}

// ReleaseCommitted baja comprometido al despachar; el SALE lo registra quien llama.
func ReleaseCommitted(item *entity.InventoryItem, qty int64) error {
	if qty <= 0 || qty > item.QuantityCommitted {
		return domain.NewStockError(domain.ErrInvalidInput, item)
	}
	item.QuantityCommitted -= qty
	return nil
}
