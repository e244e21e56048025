// Package crudtest provides an in-memory crud.Store implementation for
// handler and service tests that do not want a database.
package crudtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/accessd/accessd/internal/crud"
	"github.com/accessd/accessd/internal/shared"
)

// MemStore is a map-backed crud.Store. The entity-specific behavior is
// supplied as closures, mirroring how the real store takes a loader.
type MemStore[T any] struct {
	mu    sync.Mutex
	seq   int64
	rows  map[int64]*T
	order []int64

	// New returns a zero entity.
	New func() *T
	// Apply writes the scalar fields onto the entity.
	Apply func(*T, crud.Fields) error
	// SetID / GetID bind the synthetic id.
	SetID func(*T, int64)
	GetID func(*T) int64
	// Field reads a named field for GetByField lookups.
	Field func(*T, string) any
	// Unique, when set, is checked against every other row on create
	// and update; return an error wrapping shared.ErrConflict to
	// simulate a uniqueness constraint.
	Unique func(existing, candidate *T) error
}

// NewMemStore constructs an empty store.
func NewMemStore[T any]() *MemStore[T] {
	return &MemStore[T]{rows: make(map[int64]*T)}
}

// Seed inserts an entity directly, assigning the next id.
func (m *MemStore[T]) Seed(ent *T) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.SetID(ent, m.seq)
	m.rows[m.seq] = ent
	m.order = append(m.order, m.seq)
	return m.seq
}

// Len returns the number of stored entities.
func (m *MemStore[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *MemStore[T]) Get(ctx context.Context, id int64) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ent, ok := m.rows[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", shared.ErrNotFound, id)
	}
	return ent, nil
}

func (m *MemStore[T]) GetByField(ctx context.Context, field string, value any) (*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if ent, ok := m.rows[id]; ok && m.Field(ent, field) == value {
			return ent, nil
		}
	}
	return nil, fmt.Errorf("%w: %s=%v", shared.ErrNotFound, field, value)
}

func (m *MemStore[T]) List(ctx context.Context, skip, limit int) ([]*T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*T
	for i, id := range m.order {
		if i < skip {
			continue
		}
		if len(out) >= limit {
			break
		}
		if ent, ok := m.rows[id]; ok {
			out = append(out, ent)
		}
	}
	return out, nil
}

func (m *MemStore[T]) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *MemStore[T]) Create(ctx context.Context, scalars crud.Fields, post crud.HookFunc) (*T, error) {
	m.mu.Lock()
	ent := m.New()
	if err := m.Apply(ent, scalars); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if err := m.checkUniqueLocked(0, ent); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.seq++
	id := m.seq
	m.SetID(ent, id)
	m.rows[id] = ent
	m.order = append(m.order, id)
	m.mu.Unlock()

	if post != nil {
		if err := post(ctx, nil, id); err != nil {
			// roll the insert back
			m.mu.Lock()
			delete(m.rows, id)
			m.order = m.order[:len(m.order)-1]
			m.mu.Unlock()
			return nil, err
		}
	}
	return ent, nil
}

func (m *MemStore[T]) Update(ctx context.Context, id int64, scalars crud.Fields, post crud.HookFunc) (*T, error) {
	m.mu.Lock()
	ent, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: id %d", shared.ErrNotFound, id)
	}
	// Work on a copy so a uniqueness conflict leaves the row untouched.
	tmp := *ent
	if err := m.Apply(&tmp, scalars); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if err := m.checkUniqueLocked(id, &tmp); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	*ent = tmp
	m.mu.Unlock()

	if post != nil {
		if err := post(ctx, nil, id); err != nil {
			return nil, err
		}
	}
	return ent, nil
}

func (m *MemStore[T]) Delete(ctx context.Context, id int64, pre crud.HookFunc) (bool, error) {
	m.mu.Lock()
	_, ok := m.rows[id]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if pre != nil {
		if err := pre(ctx, nil, id); err != nil {
			return false, err
		}
	}
	m.mu.Lock()
	delete(m.rows, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	return true, nil
}

func (m *MemStore[T]) checkUniqueLocked(selfID int64, candidate *T) error {
	if m.Unique == nil {
		return nil
	}
	for id, other := range m.rows {
		if id == selfID {
			continue
		}
		if err := m.Unique(other, candidate); err != nil {
			return err
		}
	}
	return nil
}

var _ crud.Store[struct{}] = (*MemStore[struct{}])(nil)
