// Package watchers хранит, кто следит за аукционом. Счётчик нужен только для вовлечённости
// и никак не влияет на приём ставок.
package watchers

import (
	"context"
	"sync"
)

// Registry in-memory реестр наблюдателей. Watch и Unwatch идемпотентны.
type Registry struct {
	mu   sync.RWMutex
	sets map[int64]map[int64]struct{}
}

func NewRegistry() *Registry {
	return &Registry{sets: make(map[int64]map[int64]struct{})}
}

func (r *Registry) Watch(_ context.Context, auctionID, bidderID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[auctionID]
	if !ok {
		set = make(map[int64]struct{})
		r.sets[auctionID] = set
	}
	set[bidderID] = struct{}{}
	return len(set), nil
}

func (r *Registry) Unwatch(_ context.Context, auctionID, bidderID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[auctionID]
	if !ok {
		return 0, nil
	}
	delete(set, bidderID)
	if len(set) == 0 {
		delete(r.sets, auctionID)
		return 0, nil
	}
	return len(set), nil
}

func (r *Registry) WatcherCount(_ context.Context, auctionID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sets[auctionID]), nil
}
