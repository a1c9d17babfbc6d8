package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// CatalogUseCase mantiene los mapeos SKU -> producto y código -> bodega que usa la sincronización masiva.
// Los códigos se guardan normalizados con NormalizeCode, igual que se buscan.
type CatalogUseCase struct {
	products   repository.ProductRefRepository
	warehouses repository.WarehouseRepository
	log        *logger.Logger
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(products repository.ProductRefRepository, warehouses repository.WarehouseRepository, log *logger.Logger) *CatalogUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogUseCase{products: products, warehouses: warehouses, log: log}
}

// RegisterProductRef crea o reemplaza el mapeo de un SKU.
func (uc *CatalogUseCase) RegisterProductRef(ctx context.Context, ref entity.ProductRef) (*entity.ProductRef, error) {
	ref.SKU = NormalizeCode(ref.SKU)
	if ref.SKU == "" || ref.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if ref.ProductVariantID != nil && *ref.ProductVariantID == "" {
		ref.ProductVariantID = nil
	}
	if err := uc.products.Upsert(ctx, &ref); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("sku", ref.SKU).Str("product_id", ref.ProductID).Msg("sku registrado")
	return &ref, nil
}

// RegisterWarehouse crea o reemplaza una bodega. El código debe ser único.
func (uc *CatalogUseCase) RegisterWarehouse(ctx context.Context, wh entity.Warehouse) (*entity.Warehouse, error) {
	wh.Code = NormalizeCode(wh.Code)
	if wh.ID == "" || wh.Code == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.warehouses.Upsert(ctx, &wh); err != nil {
		return nil, err
	}
	uc.log.Debug().Str("warehouse_id", wh.ID).Str("code", wh.Code).Msg("bodega registrada")
	return &wh, nil
}
