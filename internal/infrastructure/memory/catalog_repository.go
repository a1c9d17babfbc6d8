package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRefRepository = (*ProductRefRepo)(nil)
	_ repository.WarehouseRepository  = (*WarehouseRepo)(nil)
)

// ProductRefRepo mapeo SKU -> producto en memoria.
type ProductRefRepo struct{ s *Store }

func (r *ProductRefRepo) GetBySKU(_ context.Context, sku string) (*entity.ProductRef, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[sku]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *ProductRefRepo) Upsert(_ context.Context, p *entity.ProductRef) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *p
	r.s.products[p.SKU] = &c
	return nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ s *Store }

func (r *WarehouseRepo) GetByCode(_ context.Context, code string) (*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.warehouses {
		if w.Code == code {
			c := *w
			return &c, nil
		}
	}
	return nil, nil
}

func (r *WarehouseRepo) Upsert(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, other := range r.s.warehouses {
		if id != w.ID && other.Code == w.Code {
			return domain.ErrDuplicate
		}
	}
	c := *w
	r.s.warehouses[w.ID] = &c
	return nil
}
