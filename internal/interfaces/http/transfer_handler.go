package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// TransferHandler traslados entre bodegas.
type TransferHandler struct {
	transfer *inventory.TransferUseCase
	query    *inventory.QueryUseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(transfer *inventory.TransferUseCase, query *inventory.QueryUseCase) *TransferHandler {
	return &TransferHandler{transfer: transfer, query: query}
}

// Create godoc
// @Summary      Trasladar stock entre bodegas
// @Description  Cada línea es atómica. Si alguna falla responde 207 con el traslado FAILED y el estado por línea.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "origen, destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Success      207   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	lines := make([]inventory.TransferLineInput, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, inventory.TransferLineInput{InventoryItemID: l.InventoryItemID, Quantity: l.Quantity, Reason: l.Reason})
	}
	t, err := h.transfer.Transfer(c.Context(), inventory.TransferInput{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Items:                  lines,
		Reference:              in.Reference,
		Notes:                  in.Notes,
		PerformedBy:            GetUserID(c),
	})
	if errors.Is(err, domain.ErrTransferPartialFailure) && t != nil {
		return c.Status(fiber.StatusMultiStatus).JSON(dto.NewTransferResponse(t))
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferResponse(t))
}

// Get godoc
// @Summary      Consultar traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.query.GetTransfer(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewTransferResponse(t))
}
