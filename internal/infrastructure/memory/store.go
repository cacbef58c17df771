// Package memory implementa los puertos de persistencia en memoria.
// Es el backend por defecto en desarrollo y el que usan los tests.
//
// Concurrencia: cada producto tiene un bloqueo propio (keyedMutex) que las
// transacciones toman en GetForUpdate/ApplyDelta y sueltan al terminar. Las
// escrituras de una transacción se acumulan y se publican juntas bajo el
// bloqueo de escritura del Store, así que un lector ve el estado anterior o el
// posterior de un movimiento, nunca uno intermedio.
// Orden de bloqueos: producto -> Store.mu.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Store contiene productos, ledger y usuarios.
type Store struct {
	mu          sync.RWMutex
	products    map[string]*entity.Product
	movements   []*entity.Movement
	movementIdx map[string]int
	users       map[string]*entity.User
	productSeq  int64
	movementSeq int64

	locks *keyedMutex
	now   func() time.Time
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		products:    make(map[string]*entity.Product),
		movementIdx: make(map[string]int),
		users:       make(map[string]*entity.User),
		locks:       newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Ping siempre responde; existe para el health check.
func (s *Store) Ping(context.Context) error { return nil }

// Close no libera nada; existe por simetría con los backends SQL.
func (s *Store) Close() {}

// ── lecturas sobre el estado publicado (llamar con s.mu tomado) ─────────────

func (s *Store) productLocked(id string) (*entity.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Store) productsInOrderLocked() []*entity.Product {
	out := make([]*entity.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b *entity.Product) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return out
}

// snapshot copia catálogo y ledger bajo un solo bloqueo de lectura. Los
// productos y movimientos publicados nunca se modifican en sitio, así que
// basta con copiar los contenedores. Los usuarios no forman parte de la vista.
func (s *Store) snapshot() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.movements)
	return &Store{
		products:    maps.Clone(s.products),
		movements:   s.movements[:n:n],
		movementIdx: maps.Clone(s.movementIdx),
		users:       make(map[string]*entity.User),
		productSeq:  s.productSeq,
		movementSeq: s.movementSeq,
		locks:       newKeyedMutex(),
		now:         s.now,
	}
}

// ── escrituras (llamar con s.mu tomado en modo escritura) ───────────────────

func (s *Store) insertProductLocked(p *entity.Product) error {
	if _, exists := s.products[p.ID]; exists {
		return domain.ErrDuplicate
	}
	s.productSeq++
	p.Seq = s.productSeq
	s.products[p.ID] = p.Clone()
	return nil
}

func (s *Store) appendMovementLocked(m *entity.Movement) error {
	if _, exists := s.movementIdx[m.ID]; exists {
		return domain.ErrDuplicate
	}
	s.movementSeq++
	m.Seq = s.movementSeq
	s.movementIdx[m.ID] = len(s.movements)
	s.movements = append(s.movements, m.Clone())
	return nil
}
