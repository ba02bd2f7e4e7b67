package engine

import "sync"

// keyedMutex мьютекс на каждый id аукциона. Разные аукционы не конкурируют.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*keyedEntry)}
}

func (k *keyedMutex) acquire(id int64) *keyedEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.locks[id]
	if !ok {
		e = &keyedEntry{}
		k.locks[id] = e
	}
	e.refs++
	return e
}

func (k *keyedMutex) release(id int64, e *keyedEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, id)
	}
}

// Lock блокирует аукцион id и возвращает функцию разблокировки
func (k *keyedMutex) Lock(id int64) func() {
	e := k.acquire(id)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.release(id, e)
	}
}

// TryLock как Lock, но не ждёт: false, если аукцион уже занят
func (k *keyedMutex) TryLock(id int64) (func(), bool) {
	e := k.acquire(id)
	if !e.mu.TryLock() {
		k.release(id, e)
		return nil, false
	}
	return func() {
		e.mu.Unlock()
		k.release(id, e)
	}, true
}
