package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/export"
	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	UserUC         *usecase.UserUseCase
	ProductUC      *usecase.ProductUseCase
	RecordMovement *appinventory.RecordMovementUseCase
	Reconcile      *appinventory.ReconcileUseCase
	Aggregation    *analytics.AggregationService
	Dashboard      *analytics.DashboardUseCase
	Replenishment  *analytics.ReplenishmentUseCase
	ExportUC       *export.ExportUseCase
	Storage        Pinger
	Backend        string
	Metrics        nethttp.Handler // nil = sin /metrics
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	health := NewHealthHandler(deps.Storage, deps.Backend)
	app.Get("/health", health.Health)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")
	authRequired := AuthMiddleware(deps.JWTSecret)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", authRequired, authHandler.Me)
	authGroup.Post("/bootstrap-admin", authRequired, authHandler.BootstrapAdmin)

	// Admin
	adminHandler := NewAdminHandler(deps.UserUC)
	admin := api.Group("/admin", authRequired, RequireRole(entity.RoleAdmin))
	admin.Get("/users", adminHandler.ListUsers)
	admin.Put("/users/:id/role", adminHandler.UpdateRole)
	admin.Delete("/users/:id", adminHandler.DeleteUser)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	products := api.Group("/products", authRequired)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole(entity.RoleAdmin), productHandler.Delete)

	// Movements
	movementHandler := NewMovementHandler(deps.RecordMovement, deps.Aggregation)
	movements := api.Group("/movements", authRequired)
	movements.Post("/", append(Idempotency(), movementHandler.Record)...)
	movements.Get("/", movementHandler.List)
	movements.Get("/recent", movementHandler.Recent)

	// Inventory
	inventoryHandler := NewInventoryHandler(deps.Aggregation, deps.Reconcile, deps.Replenishment, deps.Dashboard)
	inv := api.Group("/inventory", authRequired)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/valuation", inventoryHandler.Valuation)
	inv.Get("/reconciliation", inventoryHandler.Reconciliation)
	inv.Get("/replenishment", inventoryHandler.Replenishment)
	api.Get("/dashboard", authRequired, inventoryHandler.Dashboard)

	// Export
	exportHandler := NewExportHandler(deps.ExportUC)
	exp := api.Group("/export", authRequired)
	exp.Get("/products.json", exportHandler.ProductsJSON)
	exp.Get("/products.csv", exportHandler.ProductsCSV)
	exp.Get("/movements.csv", exportHandler.MovementsCSV)
	exp.Get("/products.xlsx", exportHandler.Workbook)
	exp.Get("/stock-report.pdf", exportHandler.StockReportPDF)
}
