package inventory_test

import (
	"context"
	"testing"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_NormalizaYHabilitaBulkSync(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	catalog := app.NewCatalogUseCase(l.store.Products(), l.store.Warehouses(), nil)

	ref, err := catalog.RegisterProductRef(ctx, entity.ProductRef{SKU: " café-9 ", ProductID: "p-9", ProductVariantID: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "CAFÉ-9", ref.SKU)
	assert.Nil(t, ref.ProductVariantID)

	_, err = catalog.RegisterWarehouse(ctx, entity.Warehouse{ID: "w-9", Code: "med", Name: "Medellín"})
	require.NoError(t, err)

	report, err := l.bulk.ApplyBulkUpdate(ctx, []app.BulkSyncEntry{
		{SKU: "café-9", WarehouseCode: "MED", QuantityOnHand: ptr(int64(3))},
	}, "", "feed")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
}

func TestCatalog_Validaciones(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	catalog := app.NewCatalogUseCase(l.store.Products(), l.store.Warehouses(), nil)

	_, err := catalog.RegisterProductRef(ctx, entity.ProductRef{SKU: " ", ProductID: "p"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = catalog.RegisterWarehouse(ctx, entity.Warehouse{Code: "BOG"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = catalog.RegisterWarehouse(ctx, entity.Warehouse{ID: "w-1", Code: "BOG"})
	require.NoError(t, err)
	_, err = catalog.RegisterWarehouse(ctx, entity.Warehouse{ID: "w-2", Code: "bog"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}
