// Package store is the normalized in-memory cache of records fetched from
// the authority. Every other component reads from it; only ingest and
// confirmed mutations write to it.
package store

import (
	"log/slog"
	"sync"

	"jobmate/board-client/internal/model"
)

// Collection holds one kind of record keyed by identifier, in ingest order.
// Reads return clones; absence is reported with ok=false, never an error.
type Collection[T model.Entity[T]] struct {
	kind model.Kind

	mu      sync.RWMutex
	order   []string
	byID    map[string]T
	version uint64
}

func newCollection[T model.Entity[T]](kind model.Kind) *Collection[T] {
	return &Collection[T]{kind: kind, byID: make(map[string]T)}
}

// Kind returns the entity kind held by the collection.
func (c *Collection[T]) Kind() model.Kind { return c.kind }

// IngestMany replaces the whole collection with records. Records absent
// from the argument are evicted. Within one batch a repeated identifier
// keeps its first position and its last value. Records without an
// identifier are skipped; the number skipped is returned.
func (c *Collection[T]) IngestMany(records []T) (skipped int) {
	order := make([]string, 0, len(records))
	byID := make(map[string]T, len(records))
	for _, r := range records {
		id := r.EntityID()
		if id == "" {
			skipped++
			continue
		}
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}
		byID[id] = r.Clone()
	}

	c.mu.Lock()
	c.order = order
	c.byID = byID
	c.version++
	c.mu.Unlock()

	if skipped > 0 {
		slog.Warn("ingest skipped records without id", "kind", c.kind, "skipped", skipped)
	}
	return skipped
}

// IngestOne upserts a single record. A replaced record keeps its position;
// a new one is appended. Returns false when the record has no identifier.
func (c *Collection[T]) IngestOne(record T) bool {
	id := record.EntityID()
	if id == "" {
		slog.Warn("ingest skipped record without id", "kind", c.kind)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		c.order = append(c.order, id)
	}
	c.byID[id] = record.Clone()
	c.version++
	return true
}

// Update replaces the record with fn applied to a copy of it, under the
// write lock. It is a no-op when the identifier is absent and reports
// whether fn ran. fn must keep the identifier.
func (c *Collection[T]) Update(id string, fn func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.byID[id]
	if !ok {
		return false
	}
	next := fn(cur.Clone())
	if next.EntityID() != id {
		slog.Warn("update changed record id; ignored", "kind", c.kind, "id", id, "got", next.EntityID())
		return false
	}
	c.byID[id] = next.Clone()
	c.version++
	return true
}

// Evict removes the record with the given identifier. It is a no-op when
// the identifier is absent and reports whether anything was removed.
func (c *Collection[T]) Evict(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[id]; !ok {
		return false
	}
	delete(c.byID, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	c.version++
	return true
}

// Get returns a copy of the record, or ok=false when absent.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return r.Clone(), true
}

// List returns copies of every record in ingest order.
func (c *Collection[T]) List() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out
}

// Len returns the number of records held.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Version increases on every write. Readers compare versions to detect
// change without diffing.
func (c *Collection[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Clear empties the collection.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	c.order = nil
	c.byID = make(map[string]T)
	c.version++
	c.mu.Unlock()
}
