package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su existencia actual.
// Quantity solo cambia a través de movimientos; el resto de campos por edición de catálogo.
type Product struct {
	ID              string
	Name            string
	Category        string
	Quantity        int
	InitialQuantity int             // existencia al crear; base para conciliar contra el ledger
	BuyPrice        decimal.Decimal // costo unitario
	SellPrice       decimal.Decimal // precio de venta unitario
	MinThreshold    int             // punto de reorden
	CreatedBy       string
	Seq             int64 // orden de creación asignado por el almacenamiento
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si la existencia está por debajo del umbral.
func (p *Product) IsLowStock() bool {
	return p.Quantity < p.MinThreshold
}

// Clone devuelve una copia independiente.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
