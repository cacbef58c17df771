package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportRecentLimit movimientos recientes incluidos en el PDF.
const ReportRecentLimit = 20

// ExportUseCase genera las descargas.
type ExportUseCase struct {
	products  ProductReader
	movements MovementReader
	tabular   TabularEncoder
	renderer  ReportRenderer
	now       func() time.Time
}

// NewExportUseCase construye el caso de uso.
func NewExportUseCase(products ProductReader, movements MovementReader, tabular TabularEncoder, renderer ReportRenderer) *ExportUseCase {
	return &ExportUseCase{
		products:  products,
		movements: movements,
		tabular:   tabular,
		renderer:  renderer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ProductsJSON catálogo completo con el indicador de bajo stock.
func (uc *ExportUseCase) ProductsJSON(ctx context.Context) ([]byte, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(dto.FromProducts(products), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export json: %w", err)
	}
	return out, nil
}

// ProductsCSV catálogo en CSV.
func (uc *ExportUseCase) ProductsCSV(ctx context.Context, charset string) ([]byte, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := uc.tabular.ProductsCSV(&buf, products, charset); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

// MovementsCSV ledger filtrado, más recientes primero.
func (uc *ExportUseCase) MovementsCSV(ctx context.Context, filter repository.MovementFilter, charset string) ([]byte, error) {
	movements, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := uc.tabular.MovementsCSV(&buf, movements, charset); err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Workbook libro XLSX con hojas de productos, movimientos y resumen.
func (uc *ExportUseCase) Workbook(ctx context.Context) ([]byte, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	movements, err := uc.movements.List(ctx, repository.MovementFilter{})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := uc.tabular.Workbook(&buf, products, movements, inventory.Valuate(products)); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// StockReportPDF informe de existencias: valuación, bajo stock, catálogo y
// últimos movimientos.
func (uc *ExportUseCase) StockReportPDF(ctx context.Context) ([]byte, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := uc.movements.List(ctx, repository.MovementFilter{Limit: ReportRecentLimit})
	if err != nil {
		return nil, err
	}
	return uc.renderer.StockReportPDF(ctx, StockReport{
		Title:       "Informe de existencias",
		GeneratedAt: uc.now(),
		Products:    products,
		LowStock:    inventory.LowStock(products),
		Recent:      recent,
		Valuation:   inventory.Valuate(products),
	})
}
