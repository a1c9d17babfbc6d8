package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados en memoria.
type TransferRepo struct {
	s  *Store
	tx *txState
}

func (r *TransferRepo) get(id string) *entity.StockTransfer {
	if r.tx != nil {
		if t, ok := r.tx.transfers[id]; ok {
			return t
		}
	}
	return r.s.transfers[id]
}

func (r *TransferRepo) put(t *entity.StockTransfer) {
	if r.tx != nil {
		r.tx.transfers[t.ID] = t
		return
	}
	r.s.transfers[t.ID] = t
}

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.s.with(r.tx, func() error {
		if r.get(t.ID) != nil {
			return fmt.Errorf("memory: traslado %s ya existe", t.ID)
		}
		r.put(cloneTransfer(t))
		return nil
	})
}

func (r *TransferRepo) UpdateLine(_ context.Context, transferID string, line entity.TransferLine) error {
	return r.s.with(r.tx, func() error {
		cur := r.get(transferID)
		if cur == nil {
			return fmt.Errorf("memory: traslado %s no existe", transferID)
		}
		next := cloneTransfer(cur)
		for i := range next.Items {
			if next.Items[i].LineNo == line.LineNo {
				next.Items[i].DestinationInventoryItem = line.DestinationInventoryItem
				next.Items[i].Status = line.Status
				next.Items[i].Error = line.Error
				r.put(next)
				return nil
			}
		}
		return fmt.Errorf("memory: línea %d no existe en traslado %s", line.LineNo, transferID)
	})
}

func (r *TransferRepo) UpdateStatus(_ context.Context, transferID string, status entity.TransferStatus) error {
	return r.s.with(r.tx, func() error {
		cur := r.get(transferID)
		if cur == nil {
			return fmt.Errorf("memory: traslado %s no existe", transferID)
		}
		next := cloneTransfer(cur)
		next.Status = status
		r.put(next)
		return nil
	})
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	_ = r.s.with(r.tx, func() error {
		if t := r.get(id); t != nil {
			out = cloneTransfer(t)
		}
		return nil
	})
	return out, nil
}
