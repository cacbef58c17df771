// Package export arma los archivos de descarga (JSON, CSV, XLSX, PDF) a partir
// de lecturas del catálogo y del ledger. Solo lee; nunca escribe en el core.
package export

import (
	"context"
	"io"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ProductReader lectura del catálogo.
type ProductReader interface {
	List(ctx context.Context) ([]*entity.Product, error)
}

// MovementReader lectura del ledger.
type MovementReader interface {
	List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error)
}

// TabularEncoder escribe tablas en CSV o XLSX.
// charset vacío o "utf-8" escribe UTF-8; "latin1" escribe Windows-1252.
type TabularEncoder interface {
	ProductsCSV(w io.Writer, products []*entity.Product, charset string) error
	MovementsCSV(w io.Writer, movements []*entity.Movement, charset string) error
	Workbook(w io.Writer, products []*entity.Product, movements []*entity.Movement, valuation inventory.Valuation) error
}

// StockReport datos del informe PDF de existencias.
type StockReport struct {
	Title       string
	GeneratedAt time.Time
	Products    []*entity.Product
	LowStock    []*entity.Product
	Recent      []*entity.Movement
	Valuation   inventory.Valuation
}

// ReportRenderer genera el PDF del informe.
type ReportRenderer interface {
	StockReportPDF(ctx context.Context, report StockReport) ([]byte, error)
}
