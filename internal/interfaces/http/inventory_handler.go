package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler ítems, movimientos y lecturas del ledger (protegido).
type InventoryHandler struct {
	recorder  *inventory.RecordMovementUseCase
	provision *inventory.ProvisionUseCase
	query     *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(recorder *inventory.RecordMovementUseCase, provision *inventory.ProvisionUseCase, query *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{recorder: recorder, provision: provision, query: query}
}

// ProvisionItem godoc
// @Summary      Provisionar ítem de inventario
// @Description  Idempotente sobre (product_id, product_variant_id, warehouse_id): si existe lo devuelve.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProvisionItemRequest  true  "producto, variante, bodega y configuración"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) ProvisionItem(c *fiber.Ctx) error {
	var in dto.ProvisionItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.provision.ProvisionItem(c.Context(), entity.ItemKey{
		ProductID:        in.ProductID,
		ProductVariantID: in.ProductVariantID,
		WarehouseID:      in.WarehouseID,
	}, in.ToSettings())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewItemResponse(item))
}

// FindItem godoc
// @Summary      Buscar ítem por producto, variante y bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  true   "producto"
// @Param        variant_id    query  string  false  "variante"
// @Param        warehouse_id  query  string  true   "bodega"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items [get]
func (h *InventoryHandler) FindItem(c *fiber.Ctx) error {
	key := entity.ItemKey{ProductID: c.Query("product_id"), WarehouseID: c.Query("warehouse_id")}
	if v := c.Query("variant_id"); v != "" {
		key.ProductVariantID = &v
	}
	item, err := h.query.GetItemByKey(c.Context(), key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// GetItem godoc
// @Summary      Contadores de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id} [get]
func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	item, err := h.query.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// UpdateSettings godoc
// @Summary      Actualizar configuración de reorden y lote
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del ítem"
// @Param        body  body  dto.ItemSettingsRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/settings [patch]
func (h *InventoryHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.ItemSettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.provision.UpdateSettings(c.Context(), c.Params("id"), in.ToSettings())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// Activate godoc
// @Summary      Reactivar ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Router       /api/inventory/items/{id}/activate [post]
func (h *InventoryHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Desactivar ítem (no se borra)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Router       /api/inventory/items/{id}/deactivate [post]
func (h *InventoryHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *InventoryHandler) setActive(c *fiber.Ctx, active bool) error {
	item, err := h.provision.SetActive(c.Context(), c.Params("id"), active)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// RecordMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Bloquea la fila del ítem, aplica el delta y agrega la fila del ledger en una sola transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del ítem"
// @Param        body  body  dto.RecordMovementRequest  true  "type, quantity_change (con signo), unit_cost (RECEIPT)"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [post]
func (h *InventoryHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	movementType, err := domaininv.ParseMovementType(in.Type)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.recorder.RecordMovement(c.Context(), c.Params("id"), movementType, in.QuantityChange, entity.MovementMetadata{
		PerformedBy: GetUserID(c),
		Reason:      in.Reason,
		Reference:   in.Reference,
		Notes:       in.Notes,
		UnitCost:    in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResultResponse{
		Movement: dto.NewMovementResponse(res.Movement),
		Item:     dto.NewItemResponse(res.Item),
	})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        order   query  string  false  "asc | desc (por defecto desc)"
// @Param        limit   query  int     false  "máximo 500"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.MovementPageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	order := repository.SortOrder(c.Query("order"))
	if order != "" && order != repository.SortAsc && order != repository.SortDesc {
		return writeError(c, domain.ErrInvalidInput)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.ErrInvalidInput)
	}
	movs, total, err := h.query.ListMovements(c.Context(), c.Params("id"), order, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementPageResponse{
		Items: make([]dto.MovementResponse, 0, len(movs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, m := range movs {
		out.Items = append(out.Items, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}

// VerifyLedger godoc
// @Summary      Verificar la cadena del ledger de un ítem
// @Description  Reproduce los movimientos desde cero y compara con quantity_on_hand.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.LedgerCheckResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/ledger-check [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	check, err := h.query.VerifyLedger(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewLedgerCheckResponse(check))
}

// Evaluate godoc
// @Summary      Evaluar reorden de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ReorderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/reorder [get]
func (h *InventoryHandler) Evaluate(c *fiber.Ctx) error {
	item, ev, err := h.query.Evaluate(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewReorderResponse(item, ev))
}

// ListLowStock godoc
// @Summary      Ítems bajo mínimo o agotados en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/warehouses/{id}/low-stock [get]
func (h *InventoryHandler) ListLowStock(c *fiber.Ctx) error {
	list, err := h.query.ListLowStock(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ReorderResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.NewReorderResponse(l.Item, l.Evaluation))
	}
	return c.JSON(fiber.Map{
		"total": len(items),
		"items": items,
	})
}
