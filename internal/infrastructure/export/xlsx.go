package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// Nombres de hoja del libro.
const (
	SheetProducts  = "Productos"
	SheetMovements = "Movimientos"
	SheetSummary   = "Resumen"
)

const moneyFormat = "#,##0.00"

// Workbook escribe un libro con tres hojas. Los productos bajo el umbral se
// resaltan en la hoja de productos.
func (e *Encoder) Workbook(w io.Writer, products []*entity.Product, movements []*entity.Movement, valuation inventory.Valuation) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetProducts); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetMovements); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return err
	}

	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeProductsSheet(f, st, products); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetProducts, err)
	}
	if err := writeMovementsSheet(f, st, movements); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetMovements, err)
	}
	if err := writeSummarySheet(f, st, len(products), valuation); err != nil {
		return fmt.Errorf("hoja %s: %w", SheetSummary, err)
	}
	return f.Write(w)
}

type styles struct {
	header int
	money  int
	low    int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	money := moneyFormat
	if st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#00467F"}},
	}); err != nil {
		return st, err
	}
	if st.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: &money}); err != nil {
		return st, err
	}
	if st.low, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#9C0006"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#FFC7CE"}},
	}); err != nil {
		return st, err
	}
	return st, nil
}

func writeHeader(f *excelize.File, sheet string, st styles, header []string) error {
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, st.header)
}

func writeProductsSheet(f *excelize.File, st styles, products []*entity.Product) error {
	sheet := SheetProducts
	if err := writeHeader(f, sheet, st, productHeader); err != nil {
		return err
	}
	for i, p := range products {
		r := i + 2
		cell, err := excelize.CoordinatesToCellName(1, r)
		if err != nil {
			return err
		}
		values := []any{
			p.ID, p.Name, p.Category, p.Quantity, p.InitialQuantity,
			p.BuyPrice.InexactFloat64(), p.SellPrice.InexactFloat64(),
			p.MinThreshold, p.IsLowStock(),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("F%d", r), fmt.Sprintf("G%d", r), st.money); err != nil {
			return err
		}
		if p.IsLowStock() {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("D%d", r), fmt.Sprintf("D%d", r), st.low); err != nil {
				return err
			}
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "C", 24); err != nil {
		return err
	}
	return f.AutoFilter(sheet, fmt.Sprintf("A1:I%d", len(products)+1), nil)
}

func writeMovementsSheet(f *excelize.File, st styles, movements []*entity.Movement) error {
	sheet := SheetMovements
	if err := writeHeader(f, sheet, st, movementHeader); err != nil {
		return err
	}
	for i, m := range movements {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			m.ID, m.Date.UTC().Format("2006-01-02 15:04:05"), m.ProductID, m.ProductName,
			string(m.Type), m.Quantity, m.Note, m.CreatedBy,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "D", 22)
}

func writeSummarySheet(f *excelize.File, st styles, productCount int, v inventory.Valuation) error {
	sheet := SheetSummary
	rows := [][]any{
		{"Productos", productCount},
		{"Valor del inventario", v.InventoryValue.InexactFloat64()},
		{"Valor potencial de venta", v.PotentialSalesValue.InexactFloat64()},
		{"Ganancia potencial", v.PotentialProfit.InexactFloat64()},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "A4", st.header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "B2", "B4", st.money); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}
