package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CatalogHandler mapeos de SKU y bodegas para la sincronización masiva (solo admin).
type CatalogHandler struct {
	uc *inventory.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *inventory.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// PutProduct godoc
// @Summary      Registrar SKU
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProductRefRequest  true  "sku, product_id, product_variant_id"
// @Success      200   {object}  dto.ProductRefRequest
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/catalog/products [put]
func (h *CatalogHandler) PutProduct(c *fiber.Ctx) error {
	var in dto.ProductRefRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ref, err := h.uc.RegisterProductRef(c.Context(), entity.ProductRef{SKU: in.SKU, ProductID: in.ProductID, ProductVariantID: in.ProductVariantID})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ProductRefRequest{SKU: ref.SKU, ProductID: ref.ProductID, ProductVariantID: ref.ProductVariantID})
}

// PutWarehouse godoc
// @Summary      Registrar bodega
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WarehouseRequest  true  "id, code, name"
// @Success      200   {object}  dto.WarehouseRequest
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/catalog/warehouses [put]
func (h *CatalogHandler) PutWarehouse(c *fiber.Ctx) error {
	var in dto.WarehouseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	wh, err := h.uc.RegisterWarehouse(c.Context(), entity.Warehouse{ID: in.ID, Code: in.Code, Name: in.Name})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.WarehouseRequest{ID: wh.ID, Code: wh.Code, Name: wh.Name})
}
