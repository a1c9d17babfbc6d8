package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// Estados por entrada del reporte de sincronización.
const (
	SyncApplied   = "APPLIED"
	SyncUnchanged = "UNCHANGED"
	SyncFailed    = "FAILED"
)

// BulkSyncEntry corrección absoluta enviada por un feed externo.
type BulkSyncEntry struct {
	SKU            string
	WarehouseCode  string
	QuantityOnHand *int64
	AverageCost    *decimal.Decimal
}

// BulkSyncEntryResult resultado de una entrada.
type BulkSyncEntryResult struct {
	Index           int    `json:"index"`
	SKU             string `json:"sku"`
	WarehouseCode   string `json:"warehouse_code"`
	InventoryItemID string `json:"inventory_item_id,omitempty"`
	Status          string `json:"status"`
	QuantityBefore  int64  `json:"quantity_before"`
	QuantityAfter   int64  `json:"quantity_after"`
	MovementID      string `json:"movement_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

// BulkSyncReport resumen de la sincronización.
type BulkSyncReport struct {
	Total     int                   `json:"total"`
	Applied   int                   `json:"applied"`
	Unchanged int                   `json:"unchanged"`
	Failed    int                   `json:"failed"`
	Entries   []BulkSyncEntryResult `json:"entries"`
}

// BulkSyncUseCase aplica correcciones absolutas como movimientos ADJUSTMENT (delta = objetivo - actual),
// nunca sobrescribiendo el contador, para que el ledger siga explicando cada cambio.
type BulkSyncUseCase struct {
	txRunner   TxRunner
	items      repository.InventoryItemRepository
	products   repository.ProductRefRepository
	warehouses repository.WarehouseRepository
	notifier   *Notifier
	retry      RetryPolicy
	workers    int
	log        *logger.Logger
}

// NewBulkSyncUseCase construye el caso de uso. workers limita las entradas en paralelo.
func NewBulkSyncUseCase(
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	products repository.ProductRefRepository,
	warehouses repository.WarehouseRepository,
	notifier *Notifier,
	retry RetryPolicy,
	workers int,
	log *logger.Logger,
) *BulkSyncUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &BulkSyncUseCase{
		txRunner:   txRunner,
		items:      items,
		products:   products,
		warehouses: warehouses,
		notifier:   notifier,
		retry:      retry,
		workers:    max(workers, 1),
		log:        log,
	}
}

// NormalizeCode deja SKUs y códigos de bodega en NFC, sin espacios y en mayúsculas.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(norm.NFC.String(s)))
}

// ApplyBulkUpdate aplica cada entrada por separado; una falla queda en el reporte y no aborta el lote.
// Entradas con el mismo (sku, bodega) se aplican en orden de llegada; grupos distintos van en paralelo.
func (uc *BulkSyncUseCase) ApplyBulkUpdate(ctx context.Context, entries []BulkSyncEntry, reason, performedBy string) (*BulkSyncReport, error) {
	if strings.TrimSpace(performedBy) == "" {
		return nil, domain.ErrInvalidInput
	}
	if reason == "" {
		reason = "sincronización masiva"
	}

	report := &BulkSyncReport{Total: len(entries), Entries: make([]BulkSyncEntryResult, len(entries))}
	groups := make(map[string][]int)
	var order []string
	for i, e := range entries {
		key := NormalizeCode(e.SKU) + "|" + NormalizeCode(e.WarehouseCode)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for _, key := range order {
		idxs := groups[key]
		g.Go(func() error {
			for _, i := range idxs {
				report.Entries[i] = uc.applyEntry(gctx, i, entries[i], reason, performedBy)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range report.Entries {
		switch r.Status {
		case SyncApplied:
			report.Applied++
		case SyncUnchanged:
			report.Unchanged++
		default:
			report.Failed++
		}
		metrics.BulkSyncEntries.WithLabelValues(r.Status).Inc()
	}
	uc.log.Info().
		Int("total", report.Total).
		Int("applied", report.Applied).
		Int("unchanged", report.Unchanged).
		Int("failed", report.Failed).
		Str("reason", reason).
		Msg("sincronización masiva aplicada")
	return report, nil
}

func (uc *BulkSyncUseCase) applyEntry(ctx context.Context, idx int, e BulkSyncEntry, reason, performedBy string) BulkSyncEntryResult {
	res := BulkSyncEntryResult{Index: idx, SKU: NormalizeCode(e.SKU), WarehouseCode: NormalizeCode(e.WarehouseCode)}
	fail := func(err error) BulkSyncEntryResult {
		res.Status = SyncFailed
		res.Error = err.Error()
		return res
	}
	if ctx.Err() != nil {
		return fail(ctx.Err())
	}
	if res.SKU == "" || res.WarehouseCode == "" {
		return fail(domain.ErrInvalidInput)
	}
	if e.QuantityOnHand == nil && e.AverageCost == nil {
		return fail(domain.ErrInvalidInput)
	}
	if e.QuantityOnHand != nil && *e.QuantityOnHand < 0 {
		return fail(domain.ErrInvalidInput)
	}
	if e.AverageCost != nil && e.AverageCost.IsNegative() {
		return fail(domain.ErrInvalidInput)
	}

	ref, err := uc.products.GetBySKU(ctx, res.SKU)
	if err != nil {
		return fail(err)
	}
	if ref == nil {
		return fail(errors.New("sku desconocido: " + res.SKU))
	}
	wh, err := uc.warehouses.GetByCode(ctx, res.WarehouseCode)
	if err != nil {
		return fail(err)
	}
	if wh == nil {
		return fail(errors.New("bodega desconocida: " + res.WarehouseCode))
	}
	// Primer evento de stock para la tripleta: se crea el ítem.
	target, err := uc.items.CreateIfAbsent(ctx, newItem(entity.ItemKey{
		ProductID:        ref.ProductID,
		ProductVariantID: ref.ProductVariantID,
		WarehouseID:      wh.ID,
	}, entity.ItemSettings{}, time.Now()))
	if err != nil {
		return fail(err)
	}
	res.InventoryItemID = target.ID

	var mov *entity.StockMovement
	var touched *entity.InventoryItem
	err = uc.retry.run(ctx, "bulk_sync", func() error {
		mov, touched = nil, nil
		return uc.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			movements repository.StockMovementRepository,
			_ repository.StockTransferRepository,
		) error {
			item, err := items.GetForUpdate(ctx, target.ID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewStockError(domain.ErrItemNotFound, nil)
			}
			res.QuantityBefore = item.QuantityOnHand
			res.QuantityAfter = item.QuantityOnHand
			changed := false
			if e.QuantityOnHand != nil {
				if delta := *e.QuantityOnHand - item.QuantityOnHand; delta != 0 {
					m, err := applyLocked(ctx, items, movements, item, entity.MovementAdjustment, delta, entity.MovementMetadata{
						PerformedBy: performedBy,
						Reason:      reason,
					}, time.Now())
					if err != nil {
						return err
					}
					mov = m
					res.QuantityAfter = m.QuantityAfter
				}
			}
			if e.AverageCost != nil && !e.AverageCost.Equal(item.AverageCost) {
				item.AverageCost = *e.AverageCost
				item.UpdatedAt = time.Now()
				changed = true
			}
			if changed {
				if err := items.UpdateCounters(ctx, item); err != nil {
					return err
				}
			}
			if mov != nil || changed {
				touched = item
			}
			return nil
		})
	})
	if err != nil {
		return fail(err)
	}
	if touched == nil {
		res.Status = SyncUnchanged
		return res
	}
	res.Status = SyncApplied
	var movs []*entity.StockMovement
	if mov != nil {
		res.MovementID = mov.ID
		movs = append(movs, mov)
	}
	uc.notifier.MovementsCommitted(ctx, movs, touched)
	return res
}
