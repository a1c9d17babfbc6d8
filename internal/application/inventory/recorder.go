package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RecordMovementUseCase registra movimientos de stock de forma transaccional con bloqueo de fila
// (SELECT FOR UPDATE). Toda mutación de on-hand pasa por aquí, de modo que el ledger es la única fuente.
type RecordMovementUseCase struct {
	txRunner TxRunner
	notifier *Notifier
	retry    RetryPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewRecordMovementUseCase construye el caso de uso.
func NewRecordMovementUseCase(txRunner TxRunner, notifier *Notifier, retry RetryPolicy, log *logger.Logger) *RecordMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RecordMovementUseCase{
		txRunner: txRunner,
		notifier: notifier,
		retry:    retry,
		log:      log,
		now:      time.Now,
	}
}

// MovementResult movimiento escrito y estado del ítem tras el commit.
type MovementResult struct {
	Movement *entity.StockMovement
	Item     *entity.InventoryItem
}

// RecordMovement valida, bloquea la fila del ítem, aplica el delta y agrega el movimiento en la misma tx.
// Si algo falla no queda escritura parcial y el error trae el ítem sin cambios (domain.StockError).
func (uc *RecordMovementUseCase) RecordMovement(
	ctx context.Context,
	itemID string,
	movementType entity.MovementType,
	quantityChange int64,
	meta entity.MovementMetadata,
) (*MovementResult, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidMovement
	}
	if err := inventory.ValidateMovement(movementType, quantityChange, meta); err != nil {
		metrics.MovementsRejected.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}

	var result MovementResult
	start := time.Now()
	err := uc.retry.run(ctx, "record_movement", func() error {
		return uc.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			movements repository.StockMovementRepository,
			_ repository.StockTransferRepository,
		) error {
			mov, item, err := uc.RecordInTx(ctx, items, movements, itemID, movementType, quantityChange, meta, uc.now())
			if err != nil {
				return err
			}
			result = MovementResult{Movement: mov, Item: item}
			return nil
		})
	})
	metrics.LedgerTxDuration.WithLabelValues("record_movement").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(errorKind(err)).Inc()
		uc.logFailure(err, itemID, movementType, quantityChange)
		return nil, err
	}

	metrics.MovementsRecorded.WithLabelValues(string(movementType)).Inc()
	uc.log.Debug().
		Str("item_id", itemID).
		Str("type", string(movementType)).
		Int64("change", quantityChange).
		Int64("after", result.Movement.QuantityAfter).
		Msg("movimiento registrado")
	uc.notifier.MovementsCommitted(ctx, []*entity.StockMovement{result.Movement}, result.Item)
	return &result, nil
}

// RecordInTx bloquea el ítem y registra el movimiento usando los repositorios de la tx del llamador.
func (uc *RecordMovementUseCase) RecordInTx(
	ctx context.Context,
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
	itemID string,
	movementType entity.MovementType,
	quantityChange int64,
	meta entity.MovementMetadata,
	now time.Time,
) (*entity.StockMovement, *entity.InventoryItem, error) {
	item, err := items.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.NewStockError(domain.ErrItemNotFound, nil)
	}
	mov, err := applyLocked(ctx, items, movements, item, movementType, quantityChange, meta, now)
	if err != nil {
		return nil, nil, err
	}
	return mov, item, nil
}

// Fulfill despacha stock comprometido: baja comprometido y registra un SALE por la misma cantidad, en una tx.
func (uc *RecordMovementUseCase) Fulfill(ctx context.Context, itemID string, quantity int64, meta entity.MovementMetadata) (*MovementResult, error) {
	if itemID == "" || quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := inventory.ValidateMovement(entity.MovementSale, -quantity, meta); err != nil {
		return nil, err
	}

	var result MovementResult
	err := uc.retry.run(ctx, "fulfill", func() error {
		return uc.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			movements repository.StockMovementRepository,
			_ repository.StockTransferRepository,
		) error {
			item, err := items.GetForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewStockError(domain.ErrItemNotFound, nil)
			}
			original := *item
			if err := inventory.ReleaseCommitted(item, quantity); err != nil {
				return err
			}
			mov, err := applyLocked(ctx, items, movements, item, entity.MovementSale, -quantity, meta, uc.now())
			if err != nil {
				*item = original
				return domain.NewStockError(unwrapKind(err), &original)
			}
			result = MovementResult{Movement: mov, Item: item}
			return nil
		})
	})
	if err != nil {
		uc.logFailure(err, itemID, entity.MovementSale, -quantity)
		return nil, err
	}
	metrics.MovementsRecorded.WithLabelValues(string(entity.MovementSale)).Inc()
	uc.notifier.MovementsCommitted(ctx, []*entity.StockMovement{result.Movement}, result.Item)
	return &result, nil
}

// applyLocked aplica el movimiento sobre un ítem ya bloqueado y persiste contadores y fila del ledger.
func applyLocked(
	ctx context.Context,
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
	item *entity.InventoryItem,
	movementType entity.MovementType,
	quantityChange int64,
	meta entity.MovementMetadata,
	now time.Time,
) (*entity.StockMovement, error) {
	mov, err := inventory.ApplyMovement(item, movementType, quantityChange, meta, now)
	if err != nil {
		return nil, err
	}
	if err := items.UpdateCounters(ctx, item); err != nil {
		return nil, err
	}
	if err := movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// unwrapKind devuelve el sentinel de dominio dentro de un StockError.
func unwrapKind(err error) error {
	if se, ok := err.(*domain.StockError); ok {
		return se.Err
	}
	return err
}

func (uc *RecordMovementUseCase) logFailure(err error, itemID string, t entity.MovementType, change int64) {
	ev := uc.log.Error()
	if isRejection(err) {
		ev = uc.log.Info()
	}
	ev.Err(err).
		Str("item_id", itemID).
		Str("type", string(t)).
		Int64("change", change).
		Str("kind", errorKind(err)).
		Msg("movimiento rechazado")
}
