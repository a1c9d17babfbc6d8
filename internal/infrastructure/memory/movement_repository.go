package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo ledger append-only en memoria. El orden del slice es el orden de commit.
type MovementRepo struct {
	s  *Store
	tx *txState
}

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	c := *m
	return r.s.with(r.tx, func() error {
		if r.tx != nil {
			r.tx.movements = append(r.tx.movements, &c)
			return nil
		}
		r.s.movements = append(r.s.movements, &c)
		return nil
	})
}

// filter recorre confirmados y luego los pendientes de la tx.
func (r *MovementRepo) filter(keep func(*entity.StockMovement) bool) []*entity.StockMovement {
	var out []*entity.StockMovement
	all := r.s.movements
	if r.tx != nil {
		all = append(slices.Clip(all), r.tx.movements...)
	}
	for _, m := range all {
		if keep(m) {
			c := *m
			out = append(out, &c)
		}
	}
	return out
}

func (r *MovementRepo) GetByID(_ context.Context, id string) (*entity.StockMovement, error) {
	var out *entity.StockMovement
	_ = r.s.with(r.tx, func() error {
		if found := r.filter(func(m *entity.StockMovement) bool { return m.ID == id }); len(found) > 0 {
			out = found[0]
		}
		return nil
	})
	return out, nil
}

func (r *MovementRepo) ListByItem(_ context.Context, itemID string, order repository.SortOrder, limit, offset int) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	_ = r.s.with(r.tx, func() error {
		list = r.filter(func(m *entity.StockMovement) bool { return m.InventoryItemID == itemID })
		return nil
	})
	// Orden estable por fecha; el orden de commit desempata.
	slices.SortStableFunc(list, func(a, b *entity.StockMovement) int { return a.PerformedAt.Compare(b.PerformedAt) })
	if order != repository.SortAsc {
		slices.Reverse(list)
	}
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

func (r *MovementRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	all, err := r.ListAllByItem(ctx, itemID)
	return len(all), err
}

func (r *MovementRepo) ListAllByItem(_ context.Context, itemID string) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	_ = r.s.with(r.tx, func() error {
		list = r.filter(func(m *entity.StockMovement) bool { return m.InventoryItemID == itemID })
		return nil
	})
	return list, nil
}

func (r *MovementRepo) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	_ = r.s.with(r.tx, func() error {
		list = r.filter(func(m *entity.StockMovement) bool { return m.Reference != nil && *m.Reference == reference })
		return nil
	})
	return list, nil
}
