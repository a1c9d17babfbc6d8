package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// BulkSyncHandler correcciones masivas desde feeds externos (solo admin).
type BulkSyncHandler struct {
	bulk *inventory.BulkSyncUseCase
}

// NewBulkSyncHandler construye el handler.
func NewBulkSyncHandler(bulk *inventory.BulkSyncUseCase) *BulkSyncHandler {
	return &BulkSyncHandler{bulk: bulk}
}

// Apply godoc
// @Summary      Sincronización masiva de stock
// @Description  Cada entrada se aplica como ADJUSTMENT (objetivo - actual). Las fallas quedan en el reporte.
// @Tags         bulk-sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkSyncRequest  true  "razón y entradas (sku, warehouse_code, quantity_on_hand, average_cost)"
// @Success      200   {object}  inventory.BulkSyncReport
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/bulk-sync [post]
func (h *BulkSyncHandler) Apply(c *fiber.Ctx) error {
	var in dto.BulkSyncRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	report, err := h.bulk.ApplyBulkUpdate(c.Context(), in.ToEntries(), in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}
