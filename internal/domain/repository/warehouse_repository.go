package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// WarehouseRepository resuelve códigos de bodega (colaborador de bodegas).
type WarehouseRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Warehouse, error)
	Upsert(ctx context.Context, warehouse *entity.Warehouse) error
}
