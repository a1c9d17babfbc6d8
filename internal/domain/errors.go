package domain

import (
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Taxonomía del ledger de inventario.
	ErrItemNotFound               = errors.New("ítem de inventario no encontrado")
	ErrInactiveItem               = errors.New("ítem de inventario inactivo")
	ErrInsufficientStock          = errors.New("stock insuficiente")
	ErrInsufficientAvailableStock = errors.New("stock disponible insuficiente")
	ErrInvalidMovement            = errors.New("movimiento inválido")
	ErrConflict                   = errors.New("conflicto de concurrencia, reintentos agotados")
	ErrTransferPartialFailure     = errors.New("traslado con líneas fallidas")
)

// StockError acompaña un error del ledger con el estado (sin cambios) del ítem afectado,
// para que el llamador decida si reintenta, divide la cantidad o aborta.
type StockError struct {
	Err  error
	Item *entity.InventoryItem
}

// NewStockError envuelve err con una copia del ítem.
func NewStockError(err error, item *entity.InventoryItem) *StockError {
	var snapshot *entity.InventoryItem
	if item != nil {
		c := *item
		snapshot = &c
	}
	return &StockError{Err: err, Item: snapshot}
}

func (e *StockError) Error() string {
	if e.Item == nil {
		return e.Err.Error()
	}
	return e.Err.Error() + " (item " + e.Item.ID + ")"
}

func (e *StockError) Unwrap() error { return e.Err }

// ItemFromError devuelve el snapshot del ítem si err es (o envuelve) un StockError.
func ItemFromError(err error) *entity.InventoryItem {
	var se *StockError
	if errors.As(err, &se) {
		return se.Item
	}
	return nil
}
