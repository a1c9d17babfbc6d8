package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservas_EscenarioAExtremoAExtremo(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 50)

	got, err := l.reservation.Reserve(ctx, item.ID, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 20, got.QuantityReserved)
	assert.EqualValues(t, 30, got.QuantityAvailable())

	res, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementSale, -10, who())
	require.NoError(t, err)
	assert.EqualValues(t, 40, res.Item.QuantityOnHand)
	assert.EqualValues(t, 20, res.Item.QuantityAvailable())
	assert.EqualValues(t, 20, res.Item.QuantityReserved, "un SALE suelto no toca promesas")

	got, err = l.reservation.Commit(ctx, item.ID, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 20, got.QuantityCommitted)
	assert.EqualValues(t, 0, got.QuantityReserved)

	// Reservas y compromisos no escriben movimientos.
	check, err := l.query.VerifyLedger(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, check.Movements)
	assert.True(t, check.Consistent)
}

func TestReserve_ConcurrenteNuncaExcedeDisponible(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 12)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.reservation.Reserve(ctx, item.ID, 1)
		}()
	}
	wg.Wait()

	got := l.get(t, item.ID)
	assert.EqualValues(t, 12, got.QuantityReserved)
	assert.EqualValues(t, 0, got.QuantityAvailable())
}

func TestReserve_SinDisponibleDevuelveSnapshot(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 4)

	_, err := l.reservation.Reserve(ctx, item.ID, 5)
	require.ErrorIs(t, err, domain.ErrInsufficientAvailableStock)
	snap := domain.ItemFromError(err)
	require.NotNil(t, snap)
	assert.EqualValues(t, 4, snap.QuantityAvailable())
}

func TestReservas_ItemInactivo(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 10)
	_, err := l.reservation.Reserve(ctx, item.ID, 4)
	require.NoError(t, err)
	_, err = l.provision.SetActive(ctx, item.ID, false)
	require.NoError(t, err)

	_, err = l.reservation.Reserve(ctx, item.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInactiveItem)
	_, err = l.reservation.Commit(ctx, item.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInactiveItem)

	// Liberar sí se permite: deshace promesas.
	got, err := l.reservation.Release(ctx, item.ID, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.QuantityReserved)
}

func TestReservas_EntradasInvalidas(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 10)

	_, err := l.reservation.Reserve(ctx, item.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.reservation.Release(ctx, item.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.reservation.Uncommit(ctx, item.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = l.reservation.Reserve(ctx, "no-existe", 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestUncommit_DevuelveAReservado(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	item := l.stocked(t, "p-1", "w-1", 10)
	_, err := l.reservation.Reserve(ctx, item.ID, 5)
	require.NoError(t, err)
	_, err = l.reservation.Commit(ctx, item.ID, 5)
	require.NoError(t, err)

	got, err := l.reservation.Uncommit(ctx, item.ID, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.QuantityCommitted)
	assert.EqualValues(t, 2, got.QuantityReserved)
	assert.EqualValues(t, 5, got.QuantityAvailable())
}
