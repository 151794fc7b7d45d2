package sync

import (
	"context"
	"sort"
	"sync"

	"veriledger/pkg/platform/tx"
)

// Table is a concurrency-safe map backing the in-memory stores. Every write
// made inside a unit of work is journaled and reverted if that unit rolls
// back, so in-memory stores get the same all-or-nothing behaviour as the
// Postgres ones. Values are stored as given: callers store copies.
type Table[K comparable, V any] struct {
	mu   sync.RWMutex
	rows map[K]V
}

// NewTable creates an empty table.
func NewTable[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{rows: make(map[K]V)}
}

// Get returns the value stored under key.
func (t *Table[K, V]) Get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[key]
	return v, ok
}

// Put stores value under key.
func (t *Table[K, V]) Put(ctx context.Context, key K, value V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.putLocked(ctx, key, value)
}

// Insert stores value only if key is absent and reports whether it did.
func (t *Table[K, V]) Insert(ctx context.Context, key K, value V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[key]; exists {
		return false
	}
	t.putLocked(ctx, key, value)
	return true
}

// Replace stores value only if key is present and reports whether it did.
func (t *Table[K, V]) Replace(ctx context.Context, key K, value V) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[key]; !exists {
		return false
	}
	t.putLocked(ctx, key, value)
	return true
}

// Delete removes key.
func (t *Table[K, V]) Delete(ctx context.Context, key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, existed := t.rows[key]
	if !existed {
		return
	}
	delete(t.rows, key)
	tx.OnRollback(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.rows[key] = prev
	})
}

// Filter returns every value for which keep returns true, ordered by less.
func (t *Table[K, V]) Filter(keep func(V) bool, less func(a, b V) bool) []V {
	t.mu.RLock()
	out := make([]V, 0)
	for _, v := range t.rows {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	t.mu.RUnlock()
	if less != nil {
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Len returns the number of rows.
func (t *Table[K, V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

func (t *Table[K, V]) putLocked(ctx context.Context, key K, value V) {
	prev, existed := t.rows[key]
	t.rows[key] = value
	tx.OnRollback(ctx, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if existed {
			t.rows[key] = prev
			return
		}
		delete(t.rows, key)
	})
}
