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

// ReservationUseCase ajusta reservado / comprometido sin tocar on-hand ni escribir movimientos.
// Cada operación bloquea la fila del ítem, igual que RecordMovement, para no competir con él.
type ReservationUseCase struct {
	txRunner TxRunner
	notifier *Notifier
	retry    RetryPolicy
	log      *logger.Logger
}

// NewReservationUseCase construye el caso de uso.
func NewReservationUseCase(txRunner TxRunner, notifier *Notifier, retry RetryPolicy, log *logger.Logger) *ReservationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ReservationUseCase{txRunner: txRunner, notifier: notifier, retry: retry, log: log}
}

// Reserve aparta quantity si reserved' <= onHand - committed.
func (uc *ReservationUseCase) Reserve(ctx context.Context, itemID string, quantity int64) (*entity.InventoryItem, error) {
	return uc.mutate(ctx, "reserve", itemID, quantity, inventory.Reserve)
}

// Release libera quantity reservado.
func (uc *ReservationUseCase) Release(ctx context.Context, itemID string, quantity int64) (*entity.InventoryItem, error) {
	return uc.mutate(ctx, "release", itemID, quantity, inventory.Release)
}

// Commit mueve quantity de reservado a comprometido si committed' <= onHand - reserved'.
func (uc *ReservationUseCase) Commit(ctx context.Context, itemID string, quantity int64) (*entity.InventoryItem, error) {
	return uc.mutate(ctx, "commit", itemID, quantity, inventory.Commit)
}

// Uncommit devuelve quantity de comprometido a reservado.
func (uc *ReservationUseCase) Uncommit(ctx context.Context, itemID string, quantity int64) (*entity.InventoryItem, error) {
	return uc.mutate(ctx, "uncommit", itemID, quantity, inventory.Uncommit)
}

func (uc *ReservationUseCase) mutate(
	ctx context.Context,
	op, itemID string,
	quantity int64,
	rule func(*entity.InventoryItem, int64) error,
) (*entity.InventoryItem, error) {
	if itemID == "" || quantity <= 0 {
		metrics.ReservationOps.WithLabelValues(op, "invalid_input").Inc()
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.InventoryItem
	start := time.Now()
	err := uc.retry.run(ctx, op, func() error {
		return uc.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			_ repository.StockMovementRepository,
			_ repository.StockTransferRepository,
		) error {
			item, err := items.GetForUpdate(ctx, itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.NewStockError(domain.ErrItemNotFound, nil)
			}
			if err := rule(item, quantity); err != nil {
				return err
			}
			item.UpdatedAt = time.Now()
			if err := items.UpdateCounters(ctx, item); err != nil {
				return err
			}
			updated = item
			return nil
		})
	})
	metrics.LedgerTxDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.ReservationOps.WithLabelValues(op, errorKind(err)).Inc()
	if err != nil {
		ev := uc.log.Error()
		if isRejection(err) {
			ev = uc.log.Info()
		}
		ev.Err(err).Str("op", op).Str("item_id", itemID).Int64("quantity", quantity).Msg("reserva rechazada")
		return nil, err
	}

	uc.log.Debug().
		Str("op", op).
		Str("item_id", itemID).
		Int64("reserved", updated.QuantityReserved).
		Int64("committed", updated.QuantityCommitted).
		Msg("promesa actualizada")
	uc.notifier.ItemsChanged(ctx, updated)
	return updated, nil
}
