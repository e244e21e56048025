package crud

import "context"

// Hooks are the entity-specific extension points around the generic
// operations. Pre hooks transform the scalar field set before the row
// write (hashing a password, stripping relationship id lists); post
// hooks resolve relationship id lists inside the same transaction. All
// hooks are optional.
type Hooks struct {
	PreCreate  func(ctx context.Context, scalars Fields) error
	PostCreate func(ctx context.Context, db DBTX, id int64, payload Fields) error
	PreUpdate  func(ctx context.Context, scalars Fields) error
	PostUpdate func(ctx context.Context, db DBTX, id int64, payload Fields) error
	PreDelete  func(ctx context.Context, db DBTX, id int64) error
}

// Service exposes CRUD operations over one entity type, delegating
// storage to a Store and customization to the hook set.
type Service[T any] struct {
	store Store[T]
	hooks Hooks
}

// NewService constructs a Service.
func NewService[T any](store Store[T], hooks Hooks) *Service[T] {
	return &Service[T]{store: store, hooks: hooks}
}

// Get returns a single entity by id.
func (s *Service[T]) Get(ctx context.Context, id int64) (*T, error) {
	return s.store.Get(ctx, id)
}

// GetByField returns a single entity by exact match on one field.
func (s *Service[T]) GetByField(ctx context.Context, field string, value any) (*T, error) {
	return s.store.GetByField(ctx, field, value)
}

// List returns entities with offset pagination.
func (s *Service[T]) List(ctx context.Context, skip, limit int) ([]*T, error) {
	return s.store.List(ctx, skip, limit)
}

// Count returns the total entity count.
func (s *Service[T]) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

// Create persists a new entity from payload fields. The pre-create hook
// sees a copy of the payload, so the post-create hook still observes the
// original fields (including relationship id lists the pre hook strips).
func (s *Service[T]) Create(ctx context.Context, payload Fields) (*T, error) {
	scalars := payload.Clone()
	if s.hooks.PreCreate != nil {
		if err := s.hooks.PreCreate(ctx, scalars); err != nil {
			return nil, err
		}
	}
	var post HookFunc
	if s.hooks.PostCreate != nil {
		post = func(ctx context.Context, db DBTX, id int64) error {
			return s.hooks.PostCreate(ctx, db, id, payload)
		}
	}
	return s.store.Create(ctx, scalars, post)
}

// Update applies the explicitly-present payload fields to an existing
// entity. Fields absent from the payload keep their stored values.
func (s *Service[T]) Update(ctx context.Context, id int64, payload Fields) (*T, error) {
	scalars := payload.Clone()
	if s.hooks.PreUpdate != nil {
		if err := s.hooks.PreUpdate(ctx, scalars); err != nil {
			return nil, err
		}
	}
	var post HookFunc
	if s.hooks.PostUpdate != nil {
		post = func(ctx context.Context, db DBTX, id int64) error {
			return s.hooks.PostUpdate(ctx, db, id, payload)
		}
	}
	return s.store.Update(ctx, id, scalars, post)
}

// Delete hard-deletes an entity. Returns false when the id was not
// found. The pre-delete hook runs first, inside the same transaction.
func (s *Service[T]) Delete(ctx context.Context, id int64) (bool, error) {
	return s.store.Delete(ctx, id, s.hooks.PreDelete)
}
