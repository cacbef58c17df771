package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	appinventory "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Límites de listados del ledger.
const (
	DefaultRecentMovements = 5
	MaxMovementPageSize    = 500
)

// MovementHandler registra movimientos y consulta el ledger (protegido).
type MovementHandler struct {
	record *appinventory.RecordMovementUseCase
	agg    *analytics.AggregationService
}

// NewMovementHandler construye el handler.
func NewMovementHandler(record *appinventory.RecordMovementUseCase, agg *analytics.AggregationService) *MovementHandler {
	return &MovementHandler{record: record, agg: agg}
}

// Record godoc
// @Summary      Registrar movimiento de inventario
// @Description  IN suma y OUT resta la cantidad; una salida mayor a la existencia se rechaza sin cambios.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        X-Idempotency-Key  header    string                     false  "reintentos seguros"
// @Param        body               body      dto.RecordMovementRequest  true   "product_id, type (IN|OUT), quantity, note"
// @Success      201                {object}  dto.RecordMovementResponse
// @Failure      400                {object}  dto.ErrorResponse
// @Failure      404                {object}  dto.ErrorResponse
// @Failure      409                {object}  dto.InsufficientStockResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Record(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.record.Execute(c.UserContext(), appinventory.RecordMovementInput{
		ProductID: in.ProductID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Note:      in.Note,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordMovementResponse{
		Movement: dto.FromMovement(res.Movement),
		Product:  dto.FromProduct(res.Product),
	})
}

// List godoc
// @Summary      Listar movimientos
// @Description  Más recientes primero; a igual fecha, el último registrado primero.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query     string  false  "filtrar por producto"
// @Param        limit       query     int     false  "tamaño de página (por defecto 20, máx 500)"
// @Param        offset      query     int     false  "desplazamiento"
// @Success      200         {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 0), Offset: c.QueryInt("offset", 0)}
	page.Normalize(MaxMovementPageSize)

	items, total, err := h.agg.Movements(c.UserContext(), repository.MovementFilter{
		ProductID: c.Query("product_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.FromMovements(items),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Recent godoc
// @Summary      Movimientos recientes
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        n    query     int  false  "cantidad (por defecto 5)"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/movements/recent [get]
func (h *MovementHandler) Recent(c *fiber.Ctx) error {
	n := min(c.QueryInt("n", DefaultRecentMovements), MaxMovementPageSize)
	items, err := h.agg.RecentMovements(c.UserContext(), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromMovements(items))
}
