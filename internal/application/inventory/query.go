package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	lowStockScan    = 500
)

// QueryUseCase lecturas del ledger: ítems, historial, verificación, traslados y reorden.
type QueryUseCase struct {
	txRunner  TxRunner
	items     repository.InventoryItemRepository
	movements repository.StockMovementRepository
	transfers repository.StockTransferRepository
	log       *logger.Logger
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
	transfers repository.StockTransferRepository,
	log *logger.Logger,
) *QueryUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &QueryUseCase{txRunner: txRunner, items: items, movements: movements, transfers: transfers, log: log}
}

// GetItem devuelve el ítem o domain.ErrItemNotFound.
func (uc *QueryUseCase) GetItem(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

// GetItemByKey busca por (producto, variante, bodega).
func (uc *QueryUseCase) GetItemByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error) {
	if key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if key.ProductVariantID != nil && *key.ProductVariantID == "" {
		key.ProductVariantID = nil
	}
	item, err := uc.items.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

// ListMovements historial paginado del ítem y el total de movimientos.
func (uc *QueryUseCase) ListMovements(ctx context.Context, itemID string, order repository.SortOrder, limit, offset int) ([]*entity.StockMovement, int, error) {
	if _, err := uc.GetItem(ctx, itemID); err != nil {
		return nil, 0, err
	}
	if order != repository.SortAsc {
		order = repository.SortDesc
	}
	limit, offset = page(limit, offset)
	list, err := uc.movements.ListByItem(ctx, itemID, order, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.movements.CountByItem(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// VerifyLedger reproduce el historial completo y lo compara con on-hand.
// Bloquea la fila mientras lee para que ningún movimiento se cuele entre las dos lecturas.
func (uc *QueryUseCase) VerifyLedger(ctx context.Context, itemID string) (*inventory.LedgerCheck, error) {
	var check inventory.LedgerCheck
	err := uc.txRunner.Run(ctx, func(
		items repository.InventoryItemRepository,
		movements repository.StockMovementRepository,
		_ repository.StockTransferRepository,
	) error {
		item, err := items.GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}
		movs, err := movements.ListAllByItem(ctx, itemID)
		if err != nil {
			return err
		}
		check = inventory.Replay(item, movs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !check.Consistent {
		uc.log.Error().
			Str("item_id", itemID).
			Int64("replayed", check.ReplayedOnHand).
			Int64("on_hand", check.CurrentOnHand).
			Int("broken_at", check.BrokenAt).
			Msg("ledger inconsistente")
	}
	return &check, nil
}

// GetTransfer devuelve el traslado con el estado de cada línea.
func (uc *QueryUseCase) GetTransfer(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// Evaluate corre el evaluador de reorden sobre el estado actual del ítem.
func (uc *QueryUseCase) Evaluate(ctx context.Context, itemID string) (*entity.InventoryItem, inventory.ReorderEvaluation, error) {
	item, err := uc.GetItem(ctx, itemID)
	if err != nil {
		return nil, inventory.ReorderEvaluation{}, err
	}
	return item, inventory.Evaluate(item), nil
}

// LowStockItem ítem bajo mínimo o agotado con su evaluación.
type LowStockItem struct {
	Item       *entity.InventoryItem
	Evaluation inventory.ReorderEvaluation
}

// ListLowStock recorre los ítems activos de la bodega y devuelve los que requieren reorden.
func (uc *QueryUseCase) ListLowStock(ctx context.Context, warehouseID string) ([]LowStockItem, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out []LowStockItem
	for offset := 0; ; offset += lowStockScan {
		batch, err := uc.items.ListByWarehouse(ctx, warehouseID, lowStockScan, offset)
		if err != nil {
			return nil, err
		}
		for _, item := range batch {
			if !item.IsActive {
				continue
			}
			if ev := inventory.Evaluate(item); ev.NeedsAttention() {
				out = append(out, LowStockItem{Item: item, Evaluation: ev})
			}
		}
		if len(batch) < lowStockScan {
			return out, nil
		}
	}
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
