// Package inventory contiene las reglas puras del ledger de stock:
// signo de los movimientos, orden de recencia, reproducción del ledger
// y las valuaciones derivadas. No conoce persistencia ni transporte.
package inventory

import (
	"slices"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SignedDelta devuelve +qty para entradas y -qty para salidas.
func SignedDelta(t entity.MovementType, qty int) int {
	if t == entity.MovementTypeOUT {
		return -qty
	}
	return qty
}

// CanWithdraw indica si una salida de qty deja la existencia en cero o más.
func CanWithdraw(p *entity.Product, qty int) bool {
	return p.Quantity >= qty
}

// SortNewestFirst ordena in-place por Date desc; empates por Seq desc
// (el último insertado primero).
func SortNewestFirst(movs []*entity.Movement) {
	slices.SortStableFunc(movs, func(a, b *entity.Movement) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		switch {
		case a.Seq > b.Seq:
			return -1
		case a.Seq < b.Seq:
			return 1
		}
		return 0
	})
}

// Replay aplica los movimientos, en orden de inserción, sobre la existencia inicial.
func Replay(initial int, movs []*entity.Movement) int {
	q := initial
	for _, m := range movs {
		q += m.Delta()
	}
	return q
}

// Discrepancy producto cuya existencia almacenada no coincide con el ledger.
type Discrepancy struct {
	ProductID string
	Name      string
	Stored    int
	Replayed  int
}

// Reconcile compara cada producto contra la reproducción de sus movimientos.
// byProduct debe traer los movimientos de cada producto en orden de inserción.
func Reconcile(products []*entity.Product, byProduct map[string][]*entity.Movement) []Discrepancy {
	out := []Discrepancy{}
	for _, p := range products {
		replayed := Replay(p.InitialQuantity, byProduct[p.ID])
		if replayed != p.Quantity {
			out = append(out, Discrepancy{ProductID: p.ID, Name: p.Name, Stored: p.Quantity, Replayed: replayed})
		}
	}
	return out
}
