package game

import (
	"sort"
	"sync"
	"time"
)

// Registry maps player IDs to their tables.
// It is safe for concurrent use; a player never has more than one table.
type Registry[T Table] struct {
	tables  map[int64]T
	factory Factory[T]
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry that builds tables with factory.
func NewRegistry[T Table](factory Factory[T]) *Registry[T] {
	return &Registry[T]{
		tables:  make(map[int64]T),
		factory: factory,
	}
}

// GetOrCreate returns the player's table, creating it on first use.
// created is true when a new table was built.
func (r *Registry[T]) GetOrCreate(userID int64) (t T, created bool) {
	r.mu.RLock()
	t, ok := r.tables[userID]
	r.mu.RUnlock()
	if ok {
		return t, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tables[userID]; ok {
		return t, false
	}
	t = r.factory(userID)
	r.tables[userID] = t
	return t, true
}

// Get retrieves the player's table.
// Returns the table and true if found, the zero value and false otherwise.
func (r *Registry[T]) Get(userID int64) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[userID]
	return t, ok
}

// Remove drops the player's table and closes it.
// Returns ErrTableNotFound if the player has none.
func (r *Registry[T]) Remove(userID int64) error {
	r.mu.Lock()
	t, ok := r.tables[userID]
	if ok {
		delete(r.tables, userID)
	}
	r.mu.Unlock()

	if !ok {
		return ErrTableNotFound
	}
	t.Close()
	return nil
}

// Count returns the number of open tables.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// UserIDs returns the players with an open table, in ascending order.
func (r *Registry[T]) UserIDs() []int64 {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Sweep closes and drops every table idle for longer than ttl at now.
// Tables in the middle of a round are kept. It returns the removed player IDs.
func (r *Registry[T]) Sweep(now time.Time, ttl time.Duration) []int64 {
	var removed []int64
	var stale []T

	r.mu.Lock()
	for id, t := range r.tables {
		if t.Busy() || now.Sub(t.LastActivity()) <= ttl {
			continue
		}
		delete(r.tables, id)
		removed = append(removed, id)
		stale = append(stale, t)
	}
	r.mu.Unlock()

	for _, t := range stale {
		t.Close()
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	return removed
}

// CloseAll closes every table and empties the registry.
func (r *Registry[T]) CloseAll() {
	r.mu.Lock()
	tables := r.tables
	r.tables = make(map[int64]T)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range tables {
		wg.Add(1)
		go func(t T) {
			defer wg.Done()
			t.Close()
		}(t)
	}
	wg.Wait()
}
