package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*ItemRepo)(nil)

// ItemRepo ítems de inventario en memoria.
type ItemRepo struct {
	s  *Store
	tx *txState
}

func (r *ItemRepo) get(id string) *entity.InventoryItem {
	if r.tx != nil {
		if it, ok := r.tx.items[id]; ok {
			return it
		}
	}
	return r.s.items[id]
}

func (r *ItemRepo) idForKey(k string) (string, bool) {
	if r.tx != nil {
		if id, ok := r.tx.byKey[k]; ok {
			return id, true
		}
	}
	id, ok := r.s.byKey[k]
	return id, ok
}

func (r *ItemRepo) put(it *entity.InventoryItem) {
	if r.tx != nil {
		r.tx.items[it.ID] = it
		r.tx.byKey[keyString(it.Key())] = it.ID
		return
	}
	r.s.items[it.ID] = it
	r.s.byKey[keyString(it.Key())] = it.ID
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	_ = r.s.with(r.tx, func() error {
		out = cloneItem(r.get(id))
		return nil
	})
	return out, nil
}

func (r *ItemRepo) GetByKey(_ context.Context, key entity.ItemKey) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	_ = r.s.with(r.tx, func() error {
		if id, ok := r.idForKey(keyString(key)); ok {
			out = cloneItem(r.get(id))
		}
		return nil
	})
	return out, nil
}

// GetForUpdate igual que GetByID: dentro de Run el mutex global ya serializa.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) GetManyForUpdate(_ context.Context, ids []string) (map[string]*entity.InventoryItem, error) {
	out := make(map[string]*entity.InventoryItem, len(ids))
	_ = r.s.with(r.tx, func() error {
		for _, id := range ids {
			if it := r.get(id); it != nil {
				out[id] = cloneItem(it)
			}
		}
		return nil
	})
	return out, nil
}

func (r *ItemRepo) CreateIfAbsent(_ context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	var out *entity.InventoryItem
	err := r.s.with(r.tx, func() error {
		if id, ok := r.idForKey(keyString(item.Key())); ok {
			out = cloneItem(r.get(id))
			return nil
		}
		if r.get(item.ID) != nil {
			return fmt.Errorf("memory: id de ítem repetido %s", item.ID)
		}
		r.put(cloneItem(item))
		out = cloneItem(item)
		return nil
	})
	return out, err
}

func (r *ItemRepo) UpdateCounters(_ context.Context, item *entity.InventoryItem) error {
	return r.s.with(r.tx, func() error {
		cur := r.get(item.ID)
		if cur == nil {
			return fmt.Errorf("memory: ítem %s no existe", item.ID)
		}
		next := cloneItem(cur)
		next.QuantityOnHand = item.QuantityOnHand
		next.QuantityReserved = item.QuantityReserved
		next.QuantityCommitted = item.QuantityCommitted
		next.AverageCost = item.AverageCost
		next.LastPurchaseCost = item.LastPurchaseCost
		next.UpdatedAt = item.UpdatedAt
		if err := checkCounters(next); err != nil {
			return err
		}
		r.put(next)
		return nil
	})
}

func (r *ItemRepo) UpdateSettings(_ context.Context, item *entity.InventoryItem) error {
	return r.s.with(r.tx, func() error {
		cur := r.get(item.ID)
		if cur == nil {
			return fmt.Errorf("memory: ítem %s no existe", item.ID)
		}
		next := cloneItem(cur)
		next.MinimumStock = item.MinimumStock
		next.MaximumStock = item.MaximumStock
		next.ReorderQuantity = item.ReorderQuantity
		next.LeadTimeDays = item.LeadTimeDays
		next.BatchNumber = item.BatchNumber
		next.ExpirationDate = item.ExpirationDate
		next.ManufacturingDate = item.ManufacturingDate
		next.IsActive = item.IsActive
		next.UpdatedAt = item.UpdatedAt
		r.put(next)
		return nil
	})
}

func (r *ItemRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryItem, error) {
	var list []*entity.InventoryItem
	_ = r.s.with(r.tx, func() error {
		seen := make(map[string]bool)
		collect := func(it *entity.InventoryItem) {
			if it.WarehouseID == warehouseID && !seen[it.ID] {
				seen[it.ID] = true
				list = append(list, cloneItem(r.get(it.ID)))
			}
		}
		if r.tx != nil {
			for _, it := range r.tx.items {
				collect(it)
			}
		}
		for _, it := range r.s.items {
			collect(it)
		}
		return nil
	})
	slices.SortFunc(list, func(a, b *entity.InventoryItem) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}
