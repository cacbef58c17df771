package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/export"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler descargas del catálogo, el ledger y el reporte de stock (protegido).
type ExportHandler struct {
	uc  *export.ExportUseCase
	now func() time.Time
}

// NewExportHandler construye el handler.
func NewExportHandler(uc *export.ExportUseCase) *ExportHandler {
	return &ExportHandler{uc: uc, now: time.Now}
}

// ProductsJSON godoc
// @Summary      Exportar productos (JSON)
// @Tags         export
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/export/products.json [get]
func (h *ExportHandler) ProductsJSON(c *fiber.Ctx) error {
	data, err := h.uc.ProductsJSON(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return h.attachment(c, fiber.MIMEApplicationJSONCharsetUTF8, "productos", "json", data)
}

// ProductsCSV godoc
// @Summary      Exportar productos (CSV)
// @Tags         export
// @Security     Bearer
// @Produce      text/csv
// @Param        charset  query  string  false  "utf-8 (por defecto) o windows-1252"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/export/products.csv [get]
func (h *ExportHandler) ProductsCSV(c *fiber.Ctx) error {
	charset := c.Query("charset")
	data, err := h.uc.ProductsCSV(c.UserContext(), charset)
	if err != nil {
		return respondError(c, err)
	}
	return h.attachment(c, csvContentType(charset), "productos", "csv", data)
}

// MovementsCSV godoc
// @Summary      Exportar movimientos (CSV)
// @Tags         export
// @Security     Bearer
// @Produce      text/csv
// @Param        product_id  query  string  false  "filtrar por producto"
// @Param        charset     query  string  false  "utf-8 (por defecto) o windows-1252"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/export/movements.csv [get]
func (h *ExportHandler) MovementsCSV(c *fiber.Ctx) error {
	charset := c.Query("charset")
	data, err := h.uc.MovementsCSV(c.UserContext(), repository.MovementFilter{ProductID: c.Query("product_id")}, charset)
	if err != nil {
		return respondError(c, err)
	}
	return h.attachment(c, csvContentType(charset), "movimientos", "csv", data)
}

// Workbook godoc
// @Summary      Exportar libro Excel
// @Description  Hojas Productos, Movimientos y Resumen.
// @Tags         export
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/export/products.xlsx [get]
func (h *ExportHandler) Workbook(c *fiber.Ctx) error {
	data, err := h.uc.Workbook(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return h.attachment(c, mimeXLSX, "inventario", "xlsx", data)
}

// StockReportPDF godoc
// @Summary      Reporte de stock (PDF)
// @Tags         export
// @Security     Bearer
// @Produce      application/pdf
// @Success      200
// @Router       /api/export/stock-report.pdf [get]
func (h *ExportHandler) StockReportPDF(c *fiber.Ctx) error {
	data, err := h.uc.StockReportPDF(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return h.attachment(c, "application/pdf", "reporte-stock", "pdf", data)
}

func (h *ExportHandler) attachment(c *fiber.Ctx, contentType, base, ext string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-%s.%s"`, base, h.now().Format("20060102"), ext))
	return c.Send(data)
}

func csvContentType(charset string) string {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "latin1", "iso-8859-1", "windows-1252", "cp1252":
		return "text/csv; charset=windows-1252"
	}
	return "text/csv; charset=utf-8"
}
