package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionItem_Idempotente(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	key := entity.ItemKey{ProductID: "p-1", ProductVariantID: ptr(""), WarehouseID: "w-1"}

	first, err := l.provision.ProvisionItem(ctx, key, entity.ItemSettings{MinimumStock: ptr(int64(3))})
	require.NoError(t, err)
	assert.Nil(t, first.ProductVariantID, "variante vacía = sin variante")
	assert.True(t, first.IsActive)

	second, err := l.provision.ProvisionItem(ctx, key, entity.ItemSettings{MinimumStock: ptr(int64(99))})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 3, *second.MinimumStock, "provisionar no pisa la configuración")

	_, err = l.provision.ProvisionItem(ctx, entity.ItemKey{ProductID: "p-1"}, entity.ItemSettings{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.provision.ProvisionItem(ctx, key, entity.ItemSettings{MinimumStock: ptr(int64(10)), MaximumStock: ptr(int64(5))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateSettings_NoTocaContadores(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 9)
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := l.provision.UpdateSettings(ctx, item.ID, entity.ItemSettings{
		MinimumStock: ptr(int64(2)), MaximumStock: ptr(int64(50)), LeadTimeDays: ptr(7),
		BatchNumber: ptr("L-01"), ExpirationDate: &exp,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 9, got.QuantityOnHand)
	assert.EqualValues(t, 50, *got.MaximumStock)
	assert.Equal(t, "L-01", *got.BatchNumber)

	// El máximo nuevo no puede quedar bajo el mínimo vigente.
	_, err = l.provision.UpdateSettings(ctx, item.ID, entity.ItemSettings{MaximumStock: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.provision.UpdateSettings(ctx, "no-existe", entity.ItemSettings{})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestListMovements_PaginaYTotal(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 1)
	for i := 0; i < 4; i++ {
		_, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 1, who())
		require.NoError(t, err)
	}

	page, total, err := l.query.ListMovements(ctx, item.ID, repository.SortAsc, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.EqualValues(t, 0, page[0].QuantityBefore)

	_, _, err = l.query.ListMovements(ctx, "no-existe", repository.SortAsc, 2, 0)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestVerifyLedger_ReplayCoincide(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 20)
	_, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -5, who())
	require.NoError(t, err)
	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementRecount, 2, who())
	require.NoError(t, err)

	check, err := l.query.VerifyLedger(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.EqualValues(t, 17, check.ReplayedOnHand)
	assert.Equal(t, -1, check.BrokenAt)
}

func TestListLowStock_YEvaluate(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	low, err := l.provision.ProvisionItem(ctx, entity.ItemKey{ProductID: "p-1", WarehouseID: "w-1"},
		entity.ItemSettings{MinimumStock: ptr(int64(10)), ReorderQuantity: ptr(int64(5))})
	require.NoError(t, err)
	_, err = l.recorder.RecordMovement(ctx, low.ID, entity.MovementReceipt, 4, who())
	require.NoError(t, err)
	ok := l.stocked(t, "p-2", "w-1", 100)
	_ = l.stocked(t, "p-3", "w-2", 0)
	out := l.stocked(t, "p-4", "w-1", 0)
	_, err = l.provision.SetActive(ctx, out.ID, false)
	require.NoError(t, err)

	list, err := l.query.ListLowStock(ctx, "w-1")
	require.NoError(t, err)
	require.Len(t, list, 1, "inactivos y otras bodegas fuera")
	assert.Equal(t, low.ID, list[0].Item.ID)
	assert.EqualValues(t, 6, list[0].Evaluation.SuggestedReorderQty)

	_, ev, err := l.query.Evaluate(ctx, ok.ID)
	require.NoError(t, err)
	assert.False(t, ev.NeedsAttention())
}
