// Package pdf genera el informe de existencias en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + fecha de generación                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VALUACIÓN: Inventario / Venta potencial / Ganancia          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BAJO STOCK: Producto | Existencia | Umbral | Faltante       │
//	│  CATÁLOGO: Producto | Categoría | Exist. | Compra | Venta    │
//	│  ÚLTIMOS MOVIMIENTOS: Fecha | Producto | Tipo | Cantidad     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appexport "github.com/jhoicas/stock-ledger/internal/application/export"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 156, Green: 0, Blue: 6}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appexport.ReportRenderer = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa export.ReportRenderer usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Las cifras se formatean con
// las convenciones del idioma dado (es: 1.234,50).
func NewMarotoPDFGenerator(lang language.Tag) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(lang)}
}

// StockReportPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) StockReportPDF(ctx context.Context, r appexport.StockReport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(r.Title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.valuationRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow(fmt.Sprintf("BAJO STOCK (%d)", len(r.LowStock))))
	if len(r.LowStock) == 0 {
		m.AddRows(row.New(6).Add(col.New(12).Add(
			text.New("Ningún producto por debajo de su umbral.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		)))
	} else {
		m.AddRows(tableHeaderRow([]string{"Producto", "Existencia", "Umbral", "Faltante"}, []int{6, 2, 2, 2}))
		m.AddRows(g.lowStockRows(r.LowStock)...)
	}

	m.AddRows(row.New(4))
	m.AddRows(sectionRow(fmt.Sprintf("CATÁLOGO (%d)", len(r.Products))))
	m.AddRows(tableHeaderRow([]string{"Producto", "Categoría", "Exist.", "Compra", "Venta"}, []int{4, 3, 1, 2, 2}))
	m.AddRows(g.productRows(r.Products)...)

	m.AddRows(row.New(4))
	m.AddRows(sectionRow("ÚLTIMOS MOVIMIENTOS"))
	m.AddRows(tableHeaderRow([]string{"Fecha", "Producto", "Tipo", "Cantidad"}, []int{3, 5, 2, 2}))
	m.AddRows(g.movementRows(r.Recent)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) headerRow(r appexport.StockReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(r.Title, props.Text{Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 2}),
		),
		col.New(4).Add(
			text.New("Generado: "+r.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 4, Color: colorGray,
			}),
		),
	)
}

func (g *MarotoPDFGenerator) valuationRow(r appexport.StockReport) core.Row {
	box := func(label string, v decimal.Decimal) core.Col {
		return col.New(4).Add(
			text.New(label, props.Text{Size: 8, Color: colorGray, Align: align.Center, Top: 1}),
			text.New("$"+g.money(v), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Top: 6}),
		)
	}
	return row.New(16).Add(
		box("Valor del inventario", r.Valuation.InventoryValue),
		box("Valor potencial de venta", r.Valuation.PotentialSalesValue),
		box("Ganancia potencial", r.Valuation.PotentialProfit),
	)
}

func (g *MarotoPDFGenerator) lowStockRows(products []*entity.Product) []core.Row {
	rows := make([]core.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row.New(6).Add(
			cell(p.Name, 6, align.Left),
			cellColor(g.number(p.Quantity), 2, colorAlert),
			cell(g.number(p.MinThreshold), 2, align.Right),
			cell(g.number(p.MinThreshold-p.Quantity), 2, align.Right),
		))
	}
	return rows
}

func (g *MarotoPDFGenerator) productRows(products []*entity.Product) []core.Row {
	rows := make([]core.Row, 0, len(products))
	for _, p := range products {
		rows = append(rows, row.New(6).Add(
			cell(p.Name, 4, align.Left),
			cell(p.Category, 3, align.Left),
			cell(g.number(p.Quantity), 1, align.Right),
			cell("$"+g.money(p.BuyPrice), 2, align.Right),
			cell("$"+g.money(p.SellPrice), 2, align.Right),
		))
	}
	return rows
}

func (g *MarotoPDFGenerator) movementRows(movements []*entity.Movement) []core.Row {
	rows := make([]core.Row, 0, len(movements))
	for _, m := range movements {
		label := "Entrada"
		if m.Type == entity.MovementTypeOUT {
			label = "Salida"
		}
		rows = append(rows, row.New(6).Add(
			cell(m.Date.Format("02/01/2006 15:04"), 3, align.Left),
			cell(m.ProductName, 5, align.Left),
			cell(label, 2, align.Center),
			cell(g.number(m.Quantity), 2, align.Right),
		))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sectionRow(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
	))
}

func tableHeaderRow(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func cell(s string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func cellColor(s string, size int, c *props.Color) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1, Style: fontstyle.Bold, Color: c}))
}

func (g *MarotoPDFGenerator) number(n int) string {
	return g.printer.Sprintf("%d", n)
}

func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("%.2f", d.InexactFloat64())
}
