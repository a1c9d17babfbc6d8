package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRefRepository = (*ProductRefRepo)(nil)

// ProductRefRepo mapeo SKU -> producto/variante sobre PostgreSQL.
type ProductRefRepo struct {
	q Querier
}

// NewProductRefRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRefRepository(q Querier) *ProductRefRepo {
	return &ProductRefRepo{q: q}
}

// GetBySKU resuelve un SKU ya normalizado. nil si no existe.
func (r *ProductRefRepo) GetBySKU(ctx context.Context, sku string) (*entity.ProductRef, error) {
	var p entity.ProductRef
	var variant string
	err := r.q.QueryRow(ctx, `SELECT sku, product_id, product_variant_id FROM product_refs WHERE sku = $1`, sku).
		Scan(&p.SKU, &p.ProductID, &variant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product ref: %w", err)
	}
	p.ProductVariantID = nullIfEmpty(variant)
	return &p, nil
}

// Upsert registra o reemplaza el mapeo del SKU.
func (r *ProductRefRepo) Upsert(ctx context.Context, p *entity.ProductRef) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO product_refs (sku, product_id, product_variant_id) VALUES ($1, $2, $3)
		ON CONFLICT (sku) DO UPDATE SET product_id = EXCLUDED.product_id, product_variant_id = EXCLUDED.product_variant_id`,
		p.SKU, p.ProductID, emptyIfNull(p.ProductVariantID),
	)
	if err != nil {
		return fmt.Errorf("upsert product ref: %w", err)
	}
	return nil
}
