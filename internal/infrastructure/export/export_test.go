package export_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/export"
)

func sampleProducts() []*entity.Product {
	return []*entity.Product{
		{ID: "p1", Name: "Café, molido", Category: "Bebidas", Quantity: 2, InitialQuantity: 5, MinThreshold: 3,
			BuyPrice: decimal.RequireFromString("10.5"), SellPrice: decimal.RequireFromString("15")},
		{ID: "p2", Name: "Azúcar", Category: "Abarrotes", Quantity: 10, InitialQuantity: 10, MinThreshold: 1,
			BuyPrice: decimal.RequireFromString("1"), SellPrice: decimal.RequireFromString("2")},
	}
}

func TestProductsCSV_UTF8(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewEncoder().ProductsCSV(&buf, sampleProducts(), ""))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "nombre", records[0][1])
	assert.Equal(t, []string{"p1", "Café, molido", "Bebidas", "2", "5", "10.50", "15.00", "3", "true"}, records[1])
	assert.Equal(t, "false", records[2][8])
}

func TestProductsCSV_Latin1(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.NewEncoder().ProductsCSV(&buf, sampleProducts(), "latin1"))
	// "é" en Windows-1252 es un solo byte 0xE9
	assert.True(t, bytes.Contains(buf.Bytes(), []byte{'C', 'a', 'f', 0xE9}))

	err := export.NewEncoder().ProductsCSV(&bytes.Buffer{}, nil, "ebcdic")
	assert.Error(t, err)
}

func TestMovementsCSV(t *testing.T) {
	movs := []*entity.Movement{{
		ID: "m1", Date: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), ProductID: "p1", ProductName: "Café",
		Type: entity.MovementTypeOUT, Quantity: 3, Note: "venta \"mostrador\"",
	}}
	var buf bytes.Buffer
	require.NoError(t, export.NewEncoder().MovementsCSV(&buf, movs, "utf-8"))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-01T12:00:00Z", records[1][1])
	assert.Equal(t, "OUT", records[1][4])
	assert.Equal(t, `venta "mostrador"`, records[1][6])
}

func TestWorkbook(t *testing.T) {
	products := sampleProducts()
	movs := []*entity.Movement{{ID: "m1", Date: time.Now(), ProductID: "p1", ProductName: "Café", Type: entity.MovementTypeIN, Quantity: 1}}

	var buf bytes.Buffer
	require.NoError(t, export.NewEncoder().Workbook(&buf, products, movs, inventory.Valuate(products)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{export.SheetProducts, export.SheetMovements, export.SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetProducts)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Café, molido", rows[1][1])

	movRows, err := f.GetRows(export.SheetMovements)
	require.NoError(t, err)
	assert.Len(t, movRows, 2)

	// 2*10.5 + 10*1 = 31
	v, err := f.GetCellValue(export.SheetSummary, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "31", v)
}
