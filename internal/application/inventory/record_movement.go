package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// MaxNoteLength límite de la nota libre de un movimiento (en runas).
const MaxNoteLength = 500

// Motivos de rechazo reportados a Metrics.
const (
	ReasonInvalidInput      = "invalid_input"
	ReasonNotFound          = "not_found"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonInternal          = "internal"
)

// RecordMovementUseCase es el motor de consistencia del inventario: valida un
// movimiento, aplica el delta a la existencia y agrega el registro al ledger
// en una sola transacción. El bloqueo por producto (GetForUpdate) serializa
// movimientos concurrentes sobre el mismo producto.
type RecordMovementUseCase struct {
	txRunner TxRunner
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
	newID    func() (uuid.UUID, error)
}

// Option configura RecordMovementUseCase.
type Option func(*RecordMovementUseCase)

// WithMetrics reporta aceptaciones y rechazos.
func WithMetrics(m Metrics) Option {
	return func(uc *RecordMovementUseCase) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithLogger usa l para registrar resultados.
func WithLogger(l *logger.Logger) Option {
	return func(uc *RecordMovementUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *RecordMovementUseCase) {
		if now != nil {
			uc.now = now
		}
	}
}

// NewRecordMovementUseCase construye el caso de uso.
func NewRecordMovementUseCase(txRunner TxRunner, opts ...Option) *RecordMovementUseCase {
	uc := &RecordMovementUseCase{
		txRunner: txRunner,
		metrics:  noopMetrics{},
		log:      logger.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewV7,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RecordMovementInput entrada para registrar un movimiento.
// Type acepta IN/OUT y sus alias (ver entity.ParseMovementType).
type RecordMovementInput struct {
	ProductID string
	Type      string
	Quantity  int
	Note      string
	CreatedBy string
}

// RecordMovementResult movimiento creado y estado del producto tras aplicarlo.
type RecordMovementResult struct {
	Movement *entity.Movement
	Product  *entity.Product
}

// Execute valida en orden (cantidad, campos, existencia del producto, stock
// disponible para salidas) y solo si todo pasa aplica el delta y agrega el
// movimiento. Un rechazo no deja cambios en productos ni en el ledger.
func (uc *RecordMovementUseCase) Execute(ctx context.Context, in RecordMovementInput) (*RecordMovementResult, error) {
	start := time.Now()
	res, err := uc.execute(ctx, in)
	uc.metrics.ObserveLatency(time.Since(start))

	if err != nil {
		reason := rejectReason(err)
		uc.metrics.MovementRejected(reason)
		ev := uc.log.Warn()
		if reason == ReasonInternal {
			ev = uc.log.Error()
		}
		ev.Err(err).
			Str("product_id", in.ProductID).
			Str("type", in.Type).
			Int("quantity", in.Quantity).
			Str("reason", reason).
			Msg("movimiento rechazado")
		return nil, err
	}

	uc.metrics.MovementRecorded(res.Movement.Type, res.Movement.Quantity)
	uc.log.Debug().
		Str("movement_id", res.Movement.ID).
		Str("product_id", res.Product.ID).
		Str("type", string(res.Movement.Type)).
		Int("quantity", res.Movement.Quantity).
		Int("stock", res.Product.Quantity).
		Msg("movimiento registrado")
	return res, nil
}

func (uc *RecordMovementUseCase) execute(ctx context.Context, in RecordMovementInput) (*RecordMovementResult, error) {
	movType, err := validate(in)
	if err != nil {
		return nil, err
	}
	productID := strings.TrimSpace(in.ProductID)
	note := strings.TrimSpace(in.Note)

	var result RecordMovementResult
	err = uc.txRunner.Run(ctx, func(
		products repository.ProductRepository,
		movements repository.MovementRepository,
	) error {
		// Bloquea el producto hasta el commit: una segunda salida concurrente
		// valida contra la existencia ya descontada.
		product, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if movType == entity.MovementTypeOUT && !inventory.CanWithdraw(product, in.Quantity) {
			return &domain.InsufficientStockError{
				ProductID: product.ID,
				Available: product.Quantity,
				Requested: in.Quantity,
			}
		}

		id, err := uc.newID()
		if err != nil {
			return fmt.Errorf("generar id de movimiento: %w", err)
		}

		updated, err := products.ApplyDelta(ctx, product.ID, inventory.SignedDelta(movType, in.Quantity))
		if err != nil {
			return err
		}

		mov := &entity.Movement{
			ID:          id.String(),
			Date:        uc.now(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Type:        movType,
			Quantity:    in.Quantity,
			Note:        note,
			CreatedBy:   in.CreatedBy,
		}
		if err := movements.Append(ctx, mov); err != nil {
			return err
		}

		result.Movement = mov
		result.Product = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// validate aplica las reglas que no requieren leer el almacenamiento.
// La cantidad se valida primero.
func validate(in RecordMovementInput) (entity.MovementType, error) {
	if in.Quantity <= 0 {
		return "", domain.Invalid("quantity", "debe ser un entero positivo")
	}
	movType, ok := entity.ParseMovementType(in.Type)
	if !ok {
		return "", domain.Invalid("type", "debe ser IN u OUT")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return "", domain.Invalid("product_id", "es obligatorio")
	}
	if utf8.RuneCountInString(in.Note) > MaxNoteLength {
		return "", domain.Invalid("note", fmt.Sprintf("excede %d caracteres", MaxNoteLength))
	}
	return movType, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return ReasonInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return ReasonInsufficientStock
	default:
		return ReasonInternal
	}
}
