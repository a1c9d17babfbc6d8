package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockTransferRepository persiste la cabecera y el estado por línea de cada traslado.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	UpdateLine(ctx context.Context, transferID string, line entity.TransferLine) error
	UpdateStatus(ctx context.Context, transferID string, status entity.TransferStatus) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
}
