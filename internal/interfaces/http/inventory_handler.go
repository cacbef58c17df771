package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// InventoryHandler vistas derivadas del inventario (protegido).
type InventoryHandler struct {
	agg           *analytics.AggregationService
	reconcile     *appinventory.ReconcileUseCase
	replenishment *analytics.ReplenishmentUseCase
	dashboard     *analytics.DashboardUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	agg *analytics.AggregationService,
	reconcile *appinventory.ReconcileUseCase,
	replenishment *analytics.ReplenishmentUseCase,
	dashboard *analytics.DashboardUseCase,
) *InventoryHandler {
	return &InventoryHandler{agg: agg, reconcile: reconcile, replenishment: replenishment, dashboard: dashboard}
}

// LowStock godoc
// @Summary      Productos bajo el umbral mínimo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.agg.LowStock(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromProducts(items))
}

// Valuation godoc
// @Summary      Valuación del inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ValuationResponse
// @Router       /api/inventory/valuation [get]
func (h *InventoryHandler) Valuation(c *fiber.Ctx) error {
	v, err := h.agg.Valuation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromValuation(v))
}

// Reconciliation godoc
// @Summary      Conciliación existencia vs ledger
// @Description  Productos cuya existencia no coincide con initial_quantity + movimientos. Vacío si todo cuadra.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.DiscrepancyResponse
// @Router       /api/inventory/reconciliation [get]
func (h *InventoryHandler) Reconciliation(c *fiber.Ctx) error {
	ds, err := h.reconcile.Execute(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromDiscrepancies(ds))
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Productos bajo el umbral con la cantidad sugerida de pedido, priorizados por margen y salidas recientes.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}

// Dashboard godoc
// @Summary      Resumen del inventario
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardSummaryDTO
// @Router       /api/dashboard [get]
func (h *InventoryHandler) Dashboard(c *fiber.Ctx) error {
	sum, err := h.dashboard.GetSummary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sum)
}
