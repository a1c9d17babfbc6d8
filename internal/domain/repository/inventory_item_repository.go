package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// InventoryItemRepository define el puerto para las filas de ítems de inventario.
// Las mutaciones se hacen siempre dentro de una transacción (TxRunner) y sobre filas bloqueadas.
type InventoryItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetManyForUpdate bloquea varias filas en orden ascendente de ID para evitar deadlocks.
	GetManyForUpdate(ctx context.Context, ids []string) (map[string]*entity.InventoryItem, error)
	// CreateIfAbsent inserta el ítem si la tripleta no existe y devuelve el vigente.
	CreateIfAbsent(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error)
	// UpdateCounters persiste cantidades y costos de un ítem bloqueado.
	UpdateCounters(ctx context.Context, item *entity.InventoryItem) error
	// UpdateSettings persiste reorden, lote y estado activo.
	UpdateSettings(ctx context.Context, item *entity.InventoryItem) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error)
}
