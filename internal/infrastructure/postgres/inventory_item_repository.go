package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `
	id, product_id, product_variant_id, warehouse_id,
	quantity_on_hand, quantity_reserved, quantity_committed,
	minimum_stock, maximum_stock, reorder_quantity, lead_time_days,
	average_cost, last_purchase_cost, batch_number, expiration_date, manufacturing_date,
	is_active, created_at, updated_at`

// InventoryItemRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	var variant string
	err := row.Scan(
		&it.ID, &it.ProductID, &variant, &it.WarehouseID,
		&it.QuantityOnHand, &it.QuantityReserved, &it.QuantityCommitted,
		&it.MinimumStock, &it.MaximumStock, &it.ReorderQuantity, &it.LeadTimeDays,
		&it.AverageCost, &it.LastPurchaseCost, &it.BatchNumber, &it.ExpirationDate, &it.ManufacturingDate,
		&it.IsActive, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.ProductVariantID = nullIfEmpty(variant)
	return &it, nil
}

func (r *InventoryItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

// GetByID obtiene un ítem por ID. nil si no existe.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetByKey obtiene un ítem por producto, variante y bodega.
func (r *InventoryItemRepo) GetByKey(ctx context.Context, key entity.ItemKey) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE product_id = $1 AND product_variant_id = $2 AND warehouse_id = $3`
	return r.getOne(ctx, "get inventory item by key", query, key.ProductID, key.Variant(), key.WarehouseID)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get inventory item for update", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// GetManyForUpdate bloquea las filas en orden ascendente de ID. Dos traslados opuestos
// piden los mismos bloqueos en el mismo orden y no se cruzan.
func (r *InventoryItemRepo) GetManyForUpdate(ctx context.Context, ids []string) (map[string]*entity.InventoryItem, error) {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	rows, err := r.q.Query(ctx, query, sorted)
	if err != nil {
		return nil, fmt.Errorf("lock inventory items: %w", err)
	}
	defer rows.Close()
	out := make(map[string]*entity.InventoryItem, len(sorted))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out[it.ID] = it
	}
	return out, rows.Err()
}

// CreateIfAbsent inserta el ítem; si la tripleta ya existe devuelve la fila vigente sin tocarla.
func (r *InventoryItemRepo) CreateIfAbsent(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	query := `
		INSERT INTO inventory_items (
			id, product_id, product_variant_id, warehouse_id,
			minimum_stock, maximum_stock, reorder_quantity, lead_time_days,
			average_cost, last_purchase_cost, batch_number, expiration_date, manufacturing_date,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (product_id, product_variant_id, warehouse_id) DO NOTHING
		RETURNING ` + itemColumns
	created, err := r.getOne(ctx, "create inventory item", query,
		item.ID, item.ProductID, emptyIfNull(item.ProductVariantID), item.WarehouseID,
		item.MinimumStock, item.MaximumStock, item.ReorderQuantity, item.LeadTimeDays,
		item.AverageCost, item.LastPurchaseCost, item.BatchNumber, item.ExpirationDate, item.ManufacturingDate,
		item.IsActive, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if created != nil {
		return created, nil
	}
	existing, err := r.GetByKey(ctx, item.Key())
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("create inventory item: fila %s no visible tras conflicto", item.Key().ProductID)
	}
	return existing, nil
}

// UpdateCounters persiste cantidades y costos. El CHECK de la tabla respalda el invariante.
func (r *InventoryItemRepo) UpdateCounters(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			quantity_on_hand = $2, quantity_reserved = $3, quantity_committed = $4,
			average_cost = $5, last_purchase_cost = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.QuantityOnHand, item.QuantityReserved, item.QuantityCommitted,
		item.AverageCost, item.LastPurchaseCost, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update inventory counters: ítem %s no existe", item.ID)
	}
	return nil
}

// UpdateSettings persiste reorden, lote y estado activo.
func (r *InventoryItemRepo) UpdateSettings(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items SET
			minimum_stock = $2, maximum_stock = $3, reorder_quantity = $4, lead_time_days = $5,
			batch_number = $6, expiration_date = $7, manufacturing_date = $8,
			is_active = $9, updated_at = $10
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.MinimumStock, item.MaximumStock, item.ReorderQuantity, item.LeadTimeDays,
		item.BatchNumber, item.ExpirationDate, item.ManufacturingDate,
		item.IsActive, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory settings: %w", err)
	}
	return nil
}

// ListByWarehouse lista los ítems de una bodega ordenados por ID.
func (r *InventoryItemRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE warehouse_id = $1 ORDER BY id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
