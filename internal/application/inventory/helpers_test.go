package inventory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	app "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ─── Dobles ─────────────────────────────────────────────────────────────────

type fakePublisher struct {
	mu        sync.Mutex
	movements []*entity.StockMovement
	signals   []app.ReorderSignal
}

func (p *fakePublisher) PublishMovements(_ context.Context, movs []*entity.StockMovement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.movements = append(p.movements, movs...)
	return nil
}

func (p *fakePublisher) PublishReorderSignal(_ context.Context, s app.ReorderSignal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signals = append(p.signals, s)
	return nil
}

func (p *fakePublisher) Signals() []app.ReorderSignal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]app.ReorderSignal(nil), p.signals...)
}

// onceGate deja pasar cada clave una sola vez.
type onceGate struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (g *onceGate) Allow(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seen == nil {
		g.seen = make(map[string]bool)
	}
	if g.seen[key] {
		return false, nil
	}
	g.seen[key] = true
	return true, nil
}

// conflictRunner falla con ErrConflict las primeras `fails` veces.
type conflictRunner struct {
	inner app.TxRunner
	mu    sync.Mutex
	fails int
	calls int
}

func (r *conflictRunner) Run(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
	transfers repository.StockTransferRepository,
) error) error {
	r.mu.Lock()
	r.calls++
	fail := r.calls <= r.fails
	r.mu.Unlock()
	if fail {
		return fmt.Errorf("%w: deadlock simulado", domain.ErrConflict)
	}
	return r.inner.Run(ctx, fn)
}

// ─── Armado ─────────────────────────────────────────────────────────────────

type ledger struct {
	store       *memory.Store
	pub         *fakePublisher
	recorder    *app.RecordMovementUseCase
	reservation *app.ReservationUseCase
	transfer    *app.TransferUseCase
	provision   *app.ProvisionUseCase
	bulk        *app.BulkSyncUseCase
	query       *app.QueryUseCase
}

var fastRetry = app.RetryPolicy{MaxAttempts: 5, BaseDelay: 0}

func newLedger(t *testing.T) *ledger {
	t.Helper()
	return newLedgerWithRunner(t, nil)
}

func newLedgerWithRunner(t *testing.T, wrap func(app.TxRunner) app.TxRunner) *ledger {
	t.Helper()
	store := memory.NewStore()
	var runner app.TxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	pub := &fakePublisher{}
	notifier := app.NewNotifier(pub, &onceGate{}, nil)
	return &ledger{
		store:       store,
		pub:         pub,
		recorder:    app.NewRecordMovementUseCase(runner, notifier, fastRetry, nil),
		reservation: app.NewReservationUseCase(runner, notifier, fastRetry, nil),
		transfer:    app.NewTransferUseCase(runner, store.Items(), store.Transfers(), notifier, fastRetry, nil),
		provision:   app.NewProvisionUseCase(runner, store.Items(), notifier, fastRetry, nil),
		bulk:        app.NewBulkSyncUseCase(runner, store.Items(), store.Products(), store.Warehouses(), notifier, fastRetry, 4, nil),
		query:       app.NewQueryUseCase(runner, store.Items(), store.Movements(), store.Transfers(), nil),
	}
}

func who() entity.MovementMetadata {
	return entity.MovementMetadata{PerformedBy: "u-test"}
}

func costMeta(cost int64) entity.MovementMetadata {
	c := decimal.NewFromInt(cost)
	return entity.MovementMetadata{PerformedBy: "u-test", UnitCost: &c}
}

// stocked provisiona un ítem y le da onHand vía RECEIPT.
func (l *ledger) stocked(t *testing.T, product, warehouse string, onHand int64) *entity.InventoryItem {
	t.Helper()
	ctx := context.Background()
	item, err := l.provision.ProvisionItem(ctx, entity.ItemKey{ProductID: product, WarehouseID: warehouse}, entity.ItemSettings{})
	require.NoError(t, err)
	if onHand > 0 {
		res, err := l.recorder.RecordMovement(ctx, item.ID, entity.MovementReceipt, onHand, who())
		require.NoError(t, err)
		item = res.Item
	}
	return item
}

func (l *ledger) get(t *testing.T, id string) *entity.InventoryItem {
	t.Helper()
	item, err := l.query.GetItem(context.Background(), id)
	require.NoError(t, err)
	return item
}

func ptr[T any](v T) *T { return &v }
