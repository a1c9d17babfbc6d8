package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ReservationHandler promesas sobre el stock: reservar, comprometer y despachar.
type ReservationHandler struct {
	reservation *inventory.ReservationUseCase
	recorder    *inventory.RecordMovementUseCase
}

// NewReservationHandler construye el handler.
func NewReservationHandler(reservation *inventory.ReservationUseCase, recorder *inventory.RecordMovementUseCase) *ReservationHandler {
	return &ReservationHandler{reservation: reservation, recorder: recorder}
}

type quantityOp func(ctx context.Context, itemID string, quantity int64) (*entity.InventoryItem, error)

func (h *ReservationHandler) apply(c *fiber.Ctx, op quantityOp) error {
	var in dto.QuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := op(c.Context(), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewItemResponse(item))
}

// Reserve godoc
// @Summary      Reservar stock disponible
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.QuantityRequest  true  "cantidad"
// @Success      200   {object}  dto.ItemResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/reserve [post]
func (h *ReservationHandler) Reserve(c *fiber.Ctx) error {
	return h.apply(c, h.reservation.Reserve)
}

// Release godoc
// @Summary      Liberar reserva
// @Tags         reservations
// @Security     Bearer
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.QuantityRequest  true  "cantidad"
// @Success      200   {object}  dto.ItemResponse
// @Router       /api/inventory/items/{id}/release [post]
func (h *ReservationHandler) Release(c *fiber.Ctx) error {
	return h.apply(c, h.reservation.Release)
}

// Commit godoc
// @Summary      Pasar reservado a comprometido
// @Tags         reservations
// @Security     Bearer
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.QuantityRequest  true  "cantidad"
// @Success      200   {object}  dto.ItemResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/commit [post]
func (h *ReservationHandler) Commit(c *fiber.Ctx) error {
	return h.apply(c, h.reservation.Commit)
}

// Uncommit godoc
// @Summary      Devolver comprometido a reservado
// @Tags         reservations
// @Security     Bearer
// @Param        id    path  string               true  "ID del ítem"
// @Param        body  body  dto.QuantityRequest  true  "cantidad"
// @Success      200   {object}  dto.ItemResponse
// @Router       /api/inventory/items/{id}/uncommit [post]
func (h *ReservationHandler) Uncommit(c *fiber.Ctx) error {
	return h.apply(c, h.reservation.Uncommit)
}

// Fulfill godoc
// @Summary      Despachar stock comprometido
// @Description  Baja comprometido y registra un SALE por la misma cantidad en una sola transacción.
// @Tags         reservations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del ítem"
// @Param        body  body  dto.FulfillRequest  true  "cantidad, referencia del pedido"
// @Success      201   {object}  dto.MovementResultResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/fulfill [post]
func (h *ReservationHandler) Fulfill(c *fiber.Ctx) error {
	var in dto.FulfillRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.recorder.Fulfill(c.Context(), c.Params("id"), in.Quantity, entity.MovementMetadata{
		PerformedBy: GetUserID(c),
		Reason:      in.Reason,
		Reference:   in.Reference,
		Notes:       in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MovementResultResponse{
		Movement: dto.NewMovementResponse(res.Movement),
		Item:     dto.NewItemResponse(res.Item),
	})
}
