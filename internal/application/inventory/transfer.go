package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// TransferUseCase coordina traslados entre bodegas.
//
// Cada línea es una unidad atómica: TRANSFER_OUT en origen y TRANSFER_IN en destino en una sola
// transacción que bloquea ambas filas en orden ascendente de ID. Entre líneas NO hay atomicidad:
// una línea fallida no revierte las ya confirmadas; el traslado queda FAILED con estado por línea
// para que el llamador reintente solo lo que falló.
type TransferUseCase struct {
	txRunner  TxRunner
	items     repository.InventoryItemRepository
	transfers repository.StockTransferRepository
	notifier  *Notifier
	retry     RetryPolicy
	log       *logger.Logger
	now       func() time.Time
}

// NewTransferUseCase construye el caso de uso. items y transfers son los repositorios fuera de tx.
func NewTransferUseCase(
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	transfers repository.StockTransferRepository,
	notifier *Notifier,
	retry RetryPolicy,
	log *logger.Logger,
) *TransferUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TransferUseCase{
		txRunner:  txRunner,
		items:     items,
		transfers: transfers,
		notifier:  notifier,
		retry:     retry,
		log:       log,
		now:       time.Now,
	}
}

// TransferLineInput línea solicitada.
type TransferLineInput struct {
	InventoryItemID string
	Quantity        int64
	Reason          string
}

// TransferInput entrada de un traslado.
type TransferInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	Items                  []TransferLineInput
	Reference              *string
	Notes                  *string
	PerformedBy            string
}

func (in TransferInput) validate() error {
	if in.SourceWarehouseID == "" || in.DestinationWarehouseID == "" || in.SourceWarehouseID == in.DestinationWarehouseID {
		return domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.PerformedBy) == "" || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	for _, l := range in.Items {
		if l.InventoryItemID == "" || l.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// Transfer ejecuta todas las líneas. Si alguna falla devuelve el traslado (FAILED, con detalle por
// línea) junto con domain.ErrTransferPartialFailure.
func (uc *TransferUseCase) Transfer(ctx context.Context, in TransferInput) (*entity.StockTransfer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := uc.now()
	transfer := &entity.StockTransfer{
		ID:                     uuid.New().String(),
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Reference:              in.Reference,
		Notes:                  in.Notes,
		Status:                 entity.TransferPending,
		PerformedBy:            in.PerformedBy,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	for i, l := range in.Items {
		transfer.Items = append(transfer.Items, entity.TransferLine{
			LineNo:          i + 1,
			InventoryItemID: l.InventoryItemID,
			Quantity:        l.Quantity,
			Reason:          l.Reason,
			Status:          entity.TransferPending,
		})
	}
	if err := uc.transfers.Create(ctx, transfer); err != nil {
		return nil, err
	}

	failed := 0
	for i := range transfer.Items {
		line := &transfer.Items[i]
		if err := uc.executeLine(ctx, transfer, line); err != nil {
			failed++
			line.Status = entity.TransferFailed
			line.Error = err.Error()
			metrics.TransferLines.WithLabelValues("failed").Inc()
			uc.log.Warn().Err(err).
				Str("transfer_id", transfer.ID).
				Int("line", line.LineNo).
				Str("item_id", line.InventoryItemID).
				Msg("línea de traslado fallida")
			if uerr := uc.transfers.UpdateLine(ctx, transfer.ID, *line); uerr != nil {
				uc.log.Error().Err(uerr).Str("transfer_id", transfer.ID).Msg("guardar estado de línea")
			}
			continue
		}
		metrics.TransferLines.WithLabelValues("completed").Inc()
	}

	transfer.Status = entity.TransferCompleted
	if failed > 0 {
		transfer.Status = entity.TransferFailed
	}
	transfer.UpdatedAt = uc.now()
	if err := uc.transfers.UpdateStatus(ctx, transfer.ID, transfer.Status); err != nil {
		return transfer, err
	}

	uc.log.Info().
		Str("transfer_id", transfer.ID).
		Str("status", string(transfer.Status)).
		Int("lines", len(transfer.Items)).
		Int("failed", failed).
		Msg("traslado procesado")
	if failed > 0 {
		return transfer, domain.ErrTransferPartialFailure
	}
	return transfer, nil
}

// executeLine resuelve (o crea) el ítem destino y aplica el par OUT/IN en una sola tx.
func (uc *TransferUseCase) executeLine(ctx context.Context, transfer *entity.StockTransfer, line *entity.TransferLine) error {
	source, err := uc.items.GetByID(ctx, line.InventoryItemID)
	if err != nil {
		return err
	}
	if source == nil {
		return domain.NewStockError(domain.ErrItemNotFound, nil)
	}
	if source.WarehouseID != transfer.SourceWarehouseID {
		return domain.NewStockError(domain.ErrInvalidInput, source)
	}

	// La fila destino se provisiona antes de la tx para poder bloquear ambas en orden fijo.
	dest, err := uc.items.CreateIfAbsent(ctx, newItem(entity.ItemKey{
		ProductID:        source.ProductID,
		ProductVariantID: source.ProductVariantID,
		WarehouseID:      transfer.DestinationWarehouseID,
	}, entity.ItemSettings{}, uc.now()))
	if err != nil {
		return err
	}
	line.DestinationInventoryItem = dest.ID

	reference := transfer.ID
	reason := line.Reason
	if reason == "" {
		reason = "traslado " + transfer.SourceWarehouseID + " -> " + transfer.DestinationWarehouseID
	}

	var movs []*entity.StockMovement
	var touched []*entity.InventoryItem
	err = uc.retry.run(ctx, "transfer_line", func() error {
		return uc.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			movements repository.StockMovementRepository,
			transfers repository.StockTransferRepository,
		) error {
			locked, err := items.GetManyForUpdate(ctx, []string{source.ID, dest.ID})
			if err != nil {
				return err
			}
			src, dst := locked[source.ID], locked[dest.ID]
			if src == nil || dst == nil {
				return domain.NewStockError(domain.ErrItemNotFound, src)
			}
			// Se valida contra disponible, no contra on-hand: lo prometido no se traslada.
			if src.QuantityAvailable() < line.Quantity {
				return domain.NewStockError(domain.ErrInsufficientAvailableStock, src)
			}
			cost := src.AverageCost
			now := uc.now()
			meta := entity.MovementMetadata{
				PerformedBy: transfer.PerformedBy,
				Reason:      reason,
				Reference:   &reference,
				Notes:       transfer.Notes,
				UnitCost:    &cost,
			}
			out, err := applyLocked(ctx, items, movements, src, entity.MovementTransferOut, -line.Quantity, meta, now)
			if err != nil {
				return err
			}
			in, err := applyLocked(ctx, items, movements, dst, entity.MovementTransferIn, line.Quantity, meta, now)
			if err != nil {
				return err
			}
			done := *line
			done.Status = entity.TransferCompleted
			if err := transfers.UpdateLine(ctx, transfer.ID, done); err != nil {
				return err
			}
			movs = []*entity.StockMovement{out, in}
			touched = []*entity.InventoryItem{src, dst}
			return nil
		})
	})
	if err != nil {
		return err
	}
	line.Status = entity.TransferCompleted
	uc.notifier.MovementsCommitted(ctx, movs, touched...)
	return nil
}

