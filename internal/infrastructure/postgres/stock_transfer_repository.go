package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo cabecera y líneas de traslados sobre PostgreSQL (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// Create guarda la cabecera y las líneas en estado PENDING.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_transfers (id, source_warehouse_id, destination_warehouse_id, reference, notes, status, performed_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.SourceWarehouseID, t.DestinationWarehouseID, t.Reference, t.Notes,
		string(t.Status), t.PerformedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock transfer: %w", err)
	}
	for _, l := range t.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO stock_transfer_lines (transfer_id, line_no, inventory_item_id, destination_inventory_item, quantity, reason, status, error)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, l.LineNo, l.InventoryItemID, l.DestinationInventoryItem, l.Quantity, l.Reason, string(l.Status), l.Error,
		)
		if err != nil {
			return fmt.Errorf("create stock transfer line %d: %w", l.LineNo, err)
		}
	}
	return nil
}

// UpdateLine persiste estado, destino y error de una línea.
func (r *StockTransferRepo) UpdateLine(ctx context.Context, transferID string, l entity.TransferLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_transfer_lines SET destination_inventory_item = $3, status = $4, error = $5
		WHERE transfer_id = $1 AND line_no = $2`,
		transferID, l.LineNo, l.DestinationInventoryItem, string(l.Status), l.Error,
	)
	if err != nil {
		return fmt.Errorf("update stock transfer line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock transfer line: %s/%d no existe", transferID, l.LineNo)
	}
	return nil
}

// UpdateStatus cambia el estado de la cabecera.
func (r *StockTransferRepo) UpdateStatus(ctx context.Context, transferID string, status entity.TransferStatus) error {
	_, err := r.q.Exec(ctx, `UPDATE stock_transfers SET status = $2, updated_at = now() WHERE id = $1`, transferID, string(status))
	if err != nil {
		return fmt.Errorf("update stock transfer status: %w", err)
	}
	return nil
}

// GetByID devuelve el traslado con sus líneas ordenadas. nil si no existe.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var status string
	err := r.q.QueryRow(ctx, `
		SELECT id, source_warehouse_id, destination_warehouse_id, reference, notes, status, performed_by, created_at, updated_at
		FROM stock_transfers WHERE id = $1`, id).Scan(
		&t.ID, &t.SourceWarehouseID, &t.DestinationWarehouseID, &t.Reference, &t.Notes,
		&status, &t.PerformedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	t.Status = entity.TransferStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT line_no, inventory_item_id, destination_inventory_item, quantity, reason, status, error
		FROM stock_transfer_lines WHERE transfer_id = $1 ORDER BY line_no`, id)
	if err != nil {
		return nil, fmt.Errorf("list stock transfer lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.TransferLine
		var ls string
		if err := rows.Scan(&l.LineNo, &l.InventoryItemID, &l.DestinationInventoryItem, &l.Quantity, &l.Reason, &ls, &l.Error); err != nil {
			return nil, fmt.Errorf("scan stock transfer line: %w", err)
		}
		l.Status = entity.TransferStatus(ls)
		t.Items = append(t.Items, l)
	}
	return &t, rows.Err()
}
