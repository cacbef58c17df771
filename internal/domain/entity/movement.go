package entity

import (
	"strings"
	"time"
)

// MovementType dirección de un movimiento de stock.
type MovementType string

// Tipos de movimiento.
const (
	MovementTypeIN  MovementType = "IN"  // entrada
	MovementTypeOUT MovementType = "OUT" // salida
)

// ParseMovementType acepta las variantes usadas por los clientes
// (IN/OUT, inbound/outbound, entrada/salida, entrée/sortie).
func ParseMovementType(s string) (MovementType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "inbound", "entrada", "entrée", "entree":
		return MovementTypeIN, true
	case "out", "outbound", "salida", "sortie":
		return MovementTypeOUT, true
	default:
		return "", false
	}
}

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	return t == MovementTypeIN || t == MovementTypeOUT
}

// Movement registro inmutable de un cambio de stock.
// ProductName es una copia del nombre al momento del movimiento;
// ProductID puede quedar huérfano si el producto se elimina.
type Movement struct {
	ID          string
	Date        time.Time
	ProductID   string
	ProductName string
	Type        MovementType
	Quantity    int // siempre positivo; la dirección la da Type
	Note        string
	CreatedBy   string
	Seq         int64 // orden de inserción asignado por el almacenamiento
}

// Delta devuelve la cantidad con signo según el tipo.
func (m *Movement) Delta() int {
	if m.Type == MovementTypeOUT {
		return -m.Quantity
	}
	return m.Quantity
}

// Clone devuelve una copia independiente.
func (m *Movement) Clone() *Movement {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
