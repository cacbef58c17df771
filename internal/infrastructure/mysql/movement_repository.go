package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = "id, date, product_id, product_name, type, quantity, note, created_by, seq"

// maxRows LIMIT usado cuando solo hay OFFSET (MySQL no acepta OFFSET sin LIMIT).
const maxRows = "18446744073709551615"

// MovementRepo ledger de movimientos sobre MySQL.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append persiste el movimiento y toma seq de LAST_INSERT_ID().
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO stock_movements (id, date, product_id, product_name, type, quantity, note, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Date.UTC(), m.ProductID, m.ProductName, string(m.Type), m.Quantity, m.Note, m.CreatedBy,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append movement: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("movement seq: %w", err)
	}
	m.Seq = seq
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	m, err := scanMovement(r.q.QueryRowContext(ctx, "SELECT "+movementColumns+" FROM stock_movements WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// List lista movimientos filtrados, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var (
		where []string
		args  []any
	)
	if f.ProductID != "" {
		where = append(where, "product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.From != nil {
		where = append(where, "date >= ?")
		args = append(args, f.From.UTC())
	}
	if f.To != nil {
		where = append(where, "date <= ?")
		args = append(args, f.To.UTC())
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + movementColumns + " FROM stock_movements")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY date DESC, seq DESC")
	switch {
	case f.Limit > 0:
		sb.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
	case f.Offset > 0:
		sb.WriteString(" LIMIT " + maxRows)
	}
	if f.Offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, f.Offset)
	}
	return r.query(ctx, sb.String(), args...)
}

// ListByProductAsc movimientos de un producto en orden de inserción.
func (r *MovementRepo) ListByProductAsc(ctx context.Context, productID string) ([]*entity.Movement, error) {
	return r.query(ctx, "SELECT "+movementColumns+" FROM stock_movements WHERE product_id = ? ORDER BY seq", productID)
}

// Count longitud del ledger.
func (r *MovementRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM stock_movements").Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

func (r *MovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	list := []*entity.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row rowScanner) (*entity.Movement, error) {
	var (
		m   entity.Movement
		typ string
	)
	if err := row.Scan(&m.ID, &m.Date, &m.ProductID, &m.ProductName, &typ, &m.Quantity, &m.Note, &m.CreatedBy, &m.Seq); err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}
