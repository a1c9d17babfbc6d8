package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName string
	Recorder    *inventory.RecordMovementUseCase
	Reservation *inventory.ReservationUseCase
	Transfer    *inventory.TransferUseCase
	Provision   *inventory.ProvisionUseCase
	BulkSync    *inventory.BulkSyncUseCase
	Query       *inventory.QueryUseCase
	Catalog     *inventory.CatalogUseCase
	JWTSecret   string
}

// Router registra health, métricas y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(MetricsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Todo lo de inventario requiere Bearer Token
	inv := app.Group("/api/inventory", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	stockRoles := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	salesRoles := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)

	items := NewInventoryHandler(deps.Recorder, deps.Provision, deps.Query)
	inv.Post("/items", stockRoles, items.ProvisionItem)
	inv.Get("/items", anyRole, items.FindItem)
	inv.Get("/items/:id", anyRole, items.GetItem)
	inv.Patch("/items/:id/settings", stockRoles, items.UpdateSettings)
	inv.Post("/items/:id/activate", stockRoles, items.Activate)
	inv.Post("/items/:id/deactivate", stockRoles, items.Deactivate)
	inv.Post("/items/:id/movements", stockRoles, items.RecordMovement)
	inv.Get("/items/:id/movements", anyRole, items.ListMovements)
	inv.Get("/items/:id/ledger-check", stockRoles, items.VerifyLedger)
	inv.Get("/items/:id/reorder", anyRole, items.Evaluate)
	inv.Get("/warehouses/:id/low-stock", anyRole, items.ListLowStock)

	// Promesas: ventas reserva y compromete; bodega despacha
	promises := NewReservationHandler(deps.Reservation, deps.Recorder)
	inv.Post("/items/:id/reserve", salesRoles, promises.Reserve)
	inv.Post("/items/:id/release", salesRoles, promises.Release)
	inv.Post("/items/:id/commit", salesRoles, promises.Commit)
	inv.Post("/items/:id/uncommit", salesRoles, promises.Uncommit)
	inv.Post("/items/:id/fulfill", anyRole, promises.Fulfill)

	transfers := NewTransferHandler(deps.Transfer, deps.Query)
	inv.Post("/transfers", stockRoles, transfers.Create)
	inv.Get("/transfers/:id", anyRole, transfers.Get)

	adminOnly := RequireRole(jwt.RoleAdmin)
	bulk := NewBulkSyncHandler(deps.BulkSync)
	inv.Post("/bulk-sync", adminOnly, bulk.Apply)

	catalog := NewCatalogHandler(deps.Catalog)
	inv.Put("/catalog/products", adminOnly, catalog.PutProduct)
	inv.Put("/catalog/warehouses", adminOnly, catalog.PutWarehouse)
}
