package memory

import (
	"context"
	"sync"
)

// keyedMutex exclusión mutua por clave (id de producto). Las entradas se
// liberan cuando nadie las usa.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

// Lock bloquea key o retorna ctx.Err() si el contexto termina antes.
// La función devuelta libera el bloqueo.
func (k *keyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() { k.unlock(key, l, true) }, nil
	case <-ctx.Done():
		k.unlock(key, l, false)
		return nil, ctx.Err()
	}
}

func (k *keyedMutex) unlock(key string, l *keyLock, held bool) {
	if held {
		<-l.ch
	}
	k.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
