package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRefRepository resuelve SKUs a producto/variante (colaborador de catálogo).
type ProductRefRepository interface {
	GetBySKU(ctx context.Context, sku string) (*entity.ProductRef, error)
	Upsert(ctx context.Context, ref *entity.ProductRef) error
}
