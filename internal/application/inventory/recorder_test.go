package inventory_test

import (
	"context"
	"sync"
	"testing"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMovement_SalidaMayorAlStockNoEscribeNada(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 40)

	_, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -100, who())
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	snap := domain.ItemFromError(err)
	require.NotNil(t, snap)
	assert.EqualValues(t, 40, snap.QuantityOnHand)

	assert.EqualValues(t, 40, l.get(t, item.ID).QuantityOnHand)
	_, total, err := l.query.ListMovements(ctx, item.ID, repository.SortDesc, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total, "solo la recepción inicial")
}

func TestRecordMovement_CostoPromedioPonderado(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item, err := l.provision.ProvisionItem(ctx, entity.ItemKey{ProductID: "p-1", WarehouseID: "w-1"}, entity.ItemSettings{})
	require.NoError(t, err)

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 10, costMeta(10))
	require.NoError(t, err)
	res, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 10, costMeta(20))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(15).Equal(res.Item.AverageCost), res.Item.AverageCost.String())
	assert.True(t, decimal.NewFromInt(20).Equal(res.Item.LastPurchaseCost))
	assert.EqualValues(t, 10, res.Movement.QuantityBefore)
	assert.EqualValues(t, 20, res.Movement.QuantityAfter)
}

func TestRecordMovement_ValidaFormaAntesDeTocarElLedger(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 5)

	_, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, -1, who())
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementAdjustment, 0, who())
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementAdjustment, 1, entity.MovementMetadata{})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	_, err = l.recorder.RecordMovement(ctx, "no-existe", entity.MovementReceipt, 1, who())
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestRecordMovement_ConcurrenciaSinPerdidas(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 0)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 2, who())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 2*n, l.get(t, item.ID).QuantityOnHand)
	check, err := l.query.VerifyLedger(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, n, check.Movements)
}

func TestRecordMovement_VentasConcurrentesNoSobrevenden(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -1, who())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, rejected)
	assert.EqualValues(t, 0, l.get(t, item.ID).QuantityOnHand)
}

func TestRecordMovement_NoDejaSinRespaldoLoPrometido(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 10)
	_, err := l.reservation.Reserve(ctx, item.ID, 8)
	require.NoError(t, err)

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementDamage, -3, who())
	assert.ErrorIs(t, err, domain.ErrInsufficientAvailableStock)
	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementDamage, -2, who())
	assert.NoError(t, err)
}

func TestRecordMovement_ItemInactivo(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 3)
	_, err := l.provision.SetActive(ctx, item.ID, false)
	require.NoError(t, err)

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 1, who())
	assert.ErrorIs(t, err, domain.ErrInactiveItem)

	// Se permite el ajuste que deja el ítem en cero para cerrarlo.
	res, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementAdjustment, -3, who())
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Item.QuantityOnHand)
}

func TestRecordMovement_ReintentaConflictos(t *testing.T) {
	var runner *conflictRunner
	l := newLedgerWithRunner(t, func(inner app.TxRunner) app.TxRunner {
		runner = &conflictRunner{inner: inner}
		return runner
	})
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 1)

	runner.mu.Lock()
	runner.fails, runner.calls = 2, 0
	runner.mu.Unlock()
	res, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 1, who())
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Item.QuantityOnHand)
	assert.Equal(t, 3, runner.calls)

	runner.mu.Lock()
	runner.fails, runner.calls = 100, 0
	runner.mu.Unlock()
	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 1, who())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, fastRetry.MaxAttempts, runner.calls, "reintentos acotados")
	assert.EqualValues(t, 2, l.get(t, item.ID).QuantityOnHand)
}

func TestFulfill_BajaComprometidoYRegistraVenta(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 10)
	_, err := l.reservation.Reserve(ctx, item.ID, 6)
	require.NoError(t, err)
	_, err = l.reservation.Commit(ctx, item.ID, 6)
	require.NoError(t, err)

	res, err := l.recorder.Fulfill(ctx, item.ID, 4, who())
	require.NoError(t, err)
	assert.Equal(t, entity.MovementSale, res.Movement.Type)
	assert.EqualValues(t, -4, res.Movement.QuantityChange)
	assert.EqualValues(t, 6, res.Item.QuantityOnHand)
	assert.EqualValues(t, 2, res.Item.QuantityCommitted)
	assert.EqualValues(t, 4, res.Item.QuantityAvailable())

	_, err = l.recorder.Fulfill(ctx, item.ID, 3, who())
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no hay 3 comprometidos")
	got := l.get(t, item.ID)
	assert.EqualValues(t, 6, got.QuantityOnHand)
	assert.EqualValues(t, 2, got.QuantityCommitted)
}

func TestRecordMovement_PublicaYSenalaReorden(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item, err := l.provision.ProvisionItem(ctx,
		entity.ItemKey{ProductID: "p-1", WarehouseID: "w-1"},
		entity.ItemSettings{MinimumStock: ptr(int64(5)), ReorderQuantity: ptr(int64(20))})
	require.NoError(t, err)

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 10, who())
	require.NoError(t, err)
	assert.Empty(t, l.pub.Signals())

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -7, who())
	require.NoError(t, err)
	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -1, who())
	require.NoError(t, err)

	signals := l.pub.Signals()
	require.Len(t, signals, 1, "la segunda baja queda deduplicada por el gate")
	assert.True(t, signals[0].IsLowStock)
	assert.EqualValues(t, 20, signals[0].SuggestedReorderQty)
	assert.Len(t, l.pub.movements, 3)
}

func TestRecordMovement_EnElMinimoNoSenala(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item, err := l.provision.ProvisionItem(ctx,
		entity.ItemKey{ProductID: "p-1", WarehouseID: "w-1"},
		entity.ItemSettings{MinimumStock: ptr(int64(5))})
	require.NoError(t, err)

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, 10, who())
	require.NoError(t, err)
	res, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -5, who())
	require.NoError(t, err)

	_, ev, err := l.query.Evaluate(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, ev.IsLowStock)
	assert.Zero(t, ev.SuggestedReorderQty)
	assert.EqualValues(t, 5, res.Item.QuantityOnHand)
	assert.Empty(t, l.pub.Signals(), "sugerir 0 unidades no es una señal")

	_, err = l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -1, who())
	require.NoError(t, err)
	signals := l.pub.Signals()
	require.Len(t, signals, 1)
	assert.EqualValues(t, 1, signals[0].SuggestedReorderQty)
}
