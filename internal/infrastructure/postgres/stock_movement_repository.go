package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	id, inventory_item_id, type, quantity_change, quantity_before, quantity_after,
	unit_cost, reference, performed_by, performed_at, reason, notes`

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var typ string
	if err := row.Scan(
		&m.ID, &m.InventoryItemID, &typ, &m.QuantityChange, &m.QuantityBefore, &m.QuantityAfter,
		&m.UnitCost, &m.Reference, &m.PerformedBy, &m.PerformedAt, &m.Reason, &m.Notes,
	); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}

func (r *StockMovementRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create agrega un movimiento al ledger. Nunca se actualiza ni se borra.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.InventoryItemID, string(m.Type), m.QuantityChange, m.QuantityBefore, m.QuantityAfter,
		m.UnitCost, m.Reference, m.PerformedBy, m.PerformedAt, m.Reason, m.Notes,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// ListByItem historial paginado. seq desempata movimientos con el mismo performed_at.
func (r *StockMovementRepo) ListByItem(ctx context.Context, itemID string, order repository.SortOrder, limit, offset int) ([]*entity.StockMovement, error) {
	dir := "DESC"
	if order == repository.SortAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM stock_movements WHERE inventory_item_id = $1
		ORDER BY performed_at %s, seq %s LIMIT $2 OFFSET $3`, movementColumns, dir, dir)
	return r.list(ctx, "list stock movements", query, itemID, limit, offset)
}

// CountByItem total de movimientos del ítem.
func (r *StockMovementRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_movements WHERE inventory_item_id = $1`, itemID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stock movements: %w", err)
	}
	return n, nil
}

// ListAllByItem todos los movimientos en orden de commit (seq), para replay.
func (r *StockMovementRepo) ListAllByItem(ctx context.Context, itemID string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE inventory_item_id = $1 ORDER BY seq`
	return r.list(ctx, "list all stock movements", query, itemID)
}

// ListByReference movimientos que comparten referencia (p. ej. el par de un traslado).
func (r *StockMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE reference = $1 ORDER BY seq`
	return r.list(ctx, "list stock movements by reference", query, reference)
}
