package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Reparaciones-api/internal/application/billing"
	"github.com/jhoicas/Reparaciones-api/internal/application/estimates"
	"github.com/jhoicas/Reparaciones-api/internal/application/inventory"
	"github.com/jhoicas/Reparaciones-api/internal/application/orders"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orders    *orders.UseCase
	Payments  *billing.PaymentUseCase
	Estimates *estimates.UseCase
	Stock     *inventory.StockUseCase
	LowStock  *inventory.LowStockUseCase
	TaxRate   decimal.Decimal
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	orderHandler := NewOrderHandler(deps.Orders, deps.Payments, deps.TaxRate, deps.Log)
	estimateHandler := NewEstimateHandler(deps.Estimates, deps.TaxRate, deps.Log)
	inventoryHandler := NewInventoryHandler(deps.Stock, deps.LowStock, deps.Log)

	// Consulta pública por token (sin auth)
	api.Get("/public/orders/:token", orderHandler.Public)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(entity.RoleManager, entity.RoleFrontDesk, entity.RoleTechnician, entity.RoleStaff)
	desk := RequireRole(entity.RoleManager, entity.RoleFrontDesk)

	// Órdenes. Las reglas finas por rol viven en la máquina de estados.
	ordersGroup := protected.Group("/orders", staff)
	ordersGroup.Post("/", desk, orderHandler.Create)
	ordersGroup.Get("/:id", orderHandler.Get)
	ordersGroup.Post("/:id/status", orderHandler.Transition)
	ordersGroup.Post("/:id/reopen", orderHandler.Reopen)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Post("/:id/assign", orderHandler.Assign)
	ordersGroup.Post("/:id/warranty", orderHandler.Warranty)
	ordersGroup.Post("/:id/payments", desk, orderHandler.AddPayment)
	ordersGroup.Get("/:id/ledger", orderHandler.Ledger)
	ordersGroup.Get("/:id/estimate", estimateHandler.GetByOrder)
	ordersGroup.Put("/:id/estimate", estimateHandler.Save)

	// Decisiones del cliente, capturadas en mostrador
	estimatesGroup := protected.Group("/estimates", desk)
	estimatesGroup.Post("/:id/items/:item/decision", estimateHandler.Decide)
	estimatesGroup.Post("/:id/decisions", estimateHandler.Finalize)

	// Inventario
	invGroup := protected.Group("/inventory", staff)
	invGroup.Post("/items", desk, inventoryHandler.CreateItem)
	invGroup.Get("/items/:sku", inventoryHandler.GetItem)
	invGroup.Get("/items/:sku/movements", inventoryHandler.Movements)
	invGroup.Post("/receive", desk, inventoryHandler.Receive)
	invGroup.Post("/consume", inventoryHandler.Consume)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
}
