package locker

import "sync"

// KeyedLocker serializes state-changing operations per key. Escrow operations
// lock by escrow id, payroll operations by contract id; operations on
// different keys proceed fully in parallel.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*entry)}
}

func (l *KeyedLocker) acquire(key string) *entry {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

func (l *KeyedLocker) release(key string, e *entry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// WithLock runs fn while holding the exclusive lock for key.
func (l *KeyedLocker) WithLock(key string, fn func() error) error {
	e := l.acquire(key)
	defer l.release(key, e)
	return fn()
}
