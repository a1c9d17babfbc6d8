package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(id, product, warehouse string) *entity.InventoryItem {
	now := time.Now()
	return &entity.InventoryItem{ID: id, ProductID: product, WarehouseID: warehouse, IsActive: true, CreatedAt: now, UpdatedAt: now}
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, err := s.Items().CreateIfAbsent(ctx, newItem("i-1", "p-1", "w-1"))
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Run(ctx, func(items repository.InventoryItemRepository, movs repository.StockMovementRepository, _ repository.StockTransferRepository) error {
		it, _ := items.GetForUpdate(ctx, "i-1")
		it.QuantityOnHand = 10
		require.NoError(t, items.UpdateCounters(ctx, it))
		require.NoError(t, movs.Create(ctx, &entity.StockMovement{ID: "m-1", InventoryItemID: "i-1", QuantityChange: 10, QuantityAfter: 10}))

		// Dentro de la tx se ven los cambios propios.
		inTx, _ := items.GetByID(ctx, "i-1")
		assert.EqualValues(t, 10, inTx.QuantityOnHand)
		n, _ := movs.CountByItem(ctx, "i-1")
		assert.Equal(t, 1, n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Items().GetByID(ctx, "i-1")
	assert.EqualValues(t, 0, got.QuantityOnHand)
	n, _ := s.Movements().CountByItem(ctx, "i-1")
	assert.Equal(t, 0, n)
}

func TestRun_CommitPersiste(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	err := s.Run(ctx, func(items repository.InventoryItemRepository, movs repository.StockMovementRepository, _ repository.StockTransferRepository) error {
		it, err := items.CreateIfAbsent(ctx, newItem("i-1", "p-1", "w-1"))
		require.NoError(t, err)
		it.QuantityOnHand = 3
		return items.UpdateCounters(ctx, it)
	})
	require.NoError(t, err)

	got, _ := s.Items().GetByKey(ctx, entity.ItemKey{ProductID: "p-1", WarehouseID: "w-1"})
	require.NotNil(t, got)
	assert.EqualValues(t, 3, got.QuantityOnHand)
}

func TestCreateIfAbsent_DevuelveExistente(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	first, err := s.Items().CreateIfAbsent(ctx, newItem("i-1", "p-1", "w-1"))
	require.NoError(t, err)
	second, err := s.Items().CreateIfAbsent(ctx, newItem("i-2", "p-1", "w-1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	variant := "talla-m"
	other := newItem("i-3", "p-1", "w-1")
	other.ProductVariantID = &variant
	third, err := s.Items().CreateIfAbsent(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "i-3", third.ID)
}

func TestUpdateCounters_RechazaInvarianteRoto(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	it, _ := s.Items().CreateIfAbsent(ctx, newItem("i-1", "p-1", "w-1"))
	it.QuantityReserved = 1
	assert.Error(t, s.Items().UpdateCounters(ctx, it))
}

func TestListByItem_OrdenYPaginacion(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Movements().Create(ctx, &entity.StockMovement{
			ID: string(rune('a' + i)), InventoryItemID: "i-1", QuantityChange: 1, PerformedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	asc, _ := s.Movements().ListByItem(ctx, "i-1", repository.SortAsc, 2, 1)
	require.Len(t, asc, 2)
	assert.Equal(t, "b", asc[0].ID)

	desc, _ := s.Movements().ListByItem(ctx, "i-1", repository.SortDesc, 10, 0)
	require.Len(t, desc, 5)
	assert.Equal(t, "e", desc[0].ID)

	none, _ := s.Movements().ListByItem(ctx, "i-1", repository.SortDesc, 10, 50)
	assert.Empty(t, none)
}

func TestTransferRepo_UpdateLine(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Transfers().Create(ctx, &entity.StockTransfer{
		ID: "t-1", Status: entity.TransferPending,
		Items: []entity.TransferLine{{LineNo: 1, InventoryItemID: "i-1", Quantity: 2, Status: entity.TransferPending}},
	}))
	require.NoError(t, s.Transfers().UpdateLine(ctx, "t-1", entity.TransferLine{LineNo: 1, Status: entity.TransferCompleted, DestinationInventoryItem: "i-9"}))
	require.Error(t, s.Transfers().UpdateLine(ctx, "t-1", entity.TransferLine{LineNo: 7}))

	got, _ := s.Transfers().GetByID(ctx, "t-1")
	assert.Equal(t, entity.TransferCompleted, got.Items[0].Status)
	assert.Equal(t, "i-9", got.Items[0].DestinationInventoryItem)
	assert.EqualValues(t, 2, got.Items[0].Quantity)
}

func TestWarehouseRepo_CodigoUnico(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Warehouses().Upsert(ctx, &entity.Warehouse{ID: "w-1", Code: "BOG"}))
	assert.Error(t, s.Warehouses().Upsert(ctx, &entity.Warehouse{ID: "w-2", Code: "BOG"}))
	w, _ := s.Warehouses().GetByCode(ctx, "BOG")
	assert.Equal(t, "w-1", w.ID)
}
