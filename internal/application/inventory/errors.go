package inventory

import (
	"errors"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// errorKind etiqueta corta del error para métricas y logs.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrItemNotFound):
		return "item_not_found"
	case errors.Is(err, domain.ErrInactiveItem):
		return "inactive_item"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInsufficientAvailableStock):
		return "insufficient_available_stock"
	case errors.Is(err, domain.ErrInvalidMovement):
		return "invalid_movement"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "internal"
	}
}

// isRejection distingue rechazos de negocio de fallas de infraestructura.
func isRejection(err error) bool {
	k := errorKind(err)
	return k != "internal" && k != "conflict" && k != "ok"
}
