// Package memory implementa el Ledger Store en memoria: mismo contrato que postgres,
// con las transacciones serializadas por un mutex global. Sirve para desarrollo y tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store estado completo del ledger.
type Store struct {
	mu         sync.Mutex
	items      map[string]*entity.InventoryItem
	byKey      map[string]string
	movements  []*entity.StockMovement
	transfers  map[string]*entity.StockTransfer
	products   map[string]*entity.ProductRef
	warehouses map[string]*entity.Warehouse
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		items:      make(map[string]*entity.InventoryItem),
		byKey:      make(map[string]string),
		transfers:  make(map[string]*entity.StockTransfer),
		products:   make(map[string]*entity.ProductRef),
		warehouses: make(map[string]*entity.Warehouse),
	}
}

// txState cambios de una transacción; se copian al store solo si fn termina sin error.
type txState struct {
	items     map[string]*entity.InventoryItem
	byKey     map[string]string
	movements []*entity.StockMovement
	transfers map[string]*entity.StockTransfer
}

func newTxState() *txState {
	return &txState{
		items:     make(map[string]*entity.InventoryItem),
		byKey:     make(map[string]string),
		transfers: make(map[string]*entity.StockTransfer),
	}
}

// Run ejecuta fn con repositorios atados a una tx. Un error descarta todo lo escrito.
func (s *Store) Run(ctx context.Context, fn func(
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
	transfers repository.StockTransferRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTxState()
	if err := fn(&ItemRepo{s: s, tx: tx}, &MovementRepo{s: s, tx: tx}, &TransferRepo{s: s, tx: tx}); err != nil {
		return err
	}
	for id, it := range tx.items {
		s.items[id] = it
	}
	for k, id := range tx.byKey {
		s.byKey[k] = id
	}
	s.movements = append(s.movements, tx.movements...)
	for id, t := range tx.transfers {
		s.transfers[id] = t
	}
	return nil
}

// Items repositorio fuera de tx.
func (s *Store) Items() *ItemRepo { return &ItemRepo{s: s} }

// Movements repositorio fuera de tx.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Transfers repositorio fuera de tx.
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{s: s} }

// Products repositorio de referencias SKU.
func (s *Store) Products() *ProductRefRepo { return &ProductRefRepo{s: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// with toma el mutex solo fuera de tx; dentro de Run ya está tomado.
func (s *Store) with(tx *txState, fn func() error) error {
	if tx == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

func keyString(k entity.ItemKey) string {
	return k.ProductID + "\x00" + k.Variant() + "\x00" + k.WarehouseID
}

func cloneItem(it *entity.InventoryItem) *entity.InventoryItem {
	if it == nil {
		return nil
	}
	c := *it
	return &c
}

func cloneTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.Items = slices.Clone(t.Items)
	return &c
}

// checkCounters equivale al CHECK de la tabla en postgres.
func checkCounters(it *entity.InventoryItem) error {
	if it.QuantityReserved < 0 || it.QuantityCommitted < 0 || it.QuantityOnHand < it.QuantityReserved+it.QuantityCommitted {
		return fmt.Errorf("memory: contadores inválidos para ítem %s", it.ID)
	}
	return nil
}
