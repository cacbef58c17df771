// Package export implementa export.TabularEncoder: CSV con encoding/csv y
// libros XLSX con excelize.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	appexport "github.com/jhoicas/stock-ledger/internal/application/export"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var _ appexport.TabularEncoder = (*Encoder)(nil)

var (
	productHeader  = []string{"id", "nombre", "categoria", "existencia", "existencia_inicial", "precio_compra", "precio_venta", "umbral_minimo", "bajo_stock"}
	movementHeader = []string{"id", "fecha", "producto_id", "producto", "tipo", "cantidad", "nota", "usuario"}
)

// Encoder sin estado; seguro para uso concurrente.
type Encoder struct{}

// NewEncoder construye el encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// ProductsCSV una fila por producto, en el orden recibido.
func (e *Encoder) ProductsCSV(w io.Writer, products []*entity.Product, charset string) error {
	return writeCSV(w, charset, productHeader, len(products), func(i int) []string {
		p := products[i]
		return []string{
			p.ID, p.Name, p.Category,
			strconv.Itoa(p.Quantity), strconv.Itoa(p.InitialQuantity),
			p.BuyPrice.StringFixed(2), p.SellPrice.StringFixed(2),
			strconv.Itoa(p.MinThreshold), strconv.FormatBool(p.IsLowStock()),
		}
	})
}

// MovementsCSV una fila por movimiento, en el orden recibido.
func (e *Encoder) MovementsCSV(w io.Writer, movements []*entity.Movement, charset string) error {
	return writeCSV(w, charset, movementHeader, len(movements), func(i int) []string {
		m := movements[i]
		return []string{
			m.ID, m.Date.UTC().Format(time.RFC3339), m.ProductID, m.ProductName,
			string(m.Type), strconv.Itoa(m.Quantity), m.Note, m.CreatedBy,
		}
	})
}

func writeCSV(w io.Writer, charset string, header []string, n int, record func(int) []string) error {
	out, closeFn, err := encodeWriter(w, charset)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := cw.Write(record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return closeFn()
}

// encodeWriter envuelve w con el transcodificador del charset pedido.
// Windows-1252 es lo que Excel espera al abrir un CSV con doble clic.
func encodeWriter(w io.Writer, charset string) (io.Writer, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return w, func() error { return nil }, nil
	case "latin1", "iso-8859-1", "windows-1252", "cp1252":
		tw := transform.NewWriter(w, charmap.Windows1252.NewEncoder())
		return tw, tw.Close, nil
	default:
		return nil, nil, domain.Invalid("charset", fmt.Sprintf("no soportado: %q", charset))
	}
}
