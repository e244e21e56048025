// Package crud implements the generic persistence service and
// permission-gated router that back every entity endpoint. Entity
// packages parameterize it with a table descriptor and a hook set
// instead of subclassing.
package crud

import "sort"

// Fields holds the explicitly-present fields of a request payload,
// keyed by column name. Absence of a key means the caller did not send
// the field; a present key with an empty value is an explicit value.
// This carries the partial-update semantics end to end.
type Fields map[string]any

// Set stores a field value.
func (f Fields) Set(name string, value any) {
	f[name] = value
}

// Get returns a field value.
func (f Fields) Get(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// Has reports whether the field is present.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Pop removes and returns a field value.
func (f Fields) Pop(name string) (any, bool) {
	v, ok := f[name]
	if ok {
		delete(f, name)
	}
	return v, ok
}

// String returns the field as a string when present and of that type.
func (f Fields) String(name string) (string, bool) {
	v, ok := f[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64s returns the field as an id list when present and of that type.
func (f Fields) Int64s(name string) ([]int64, bool) {
	v, ok := f[name]
	if !ok {
		return nil, false
	}
	ids, ok := v.([]int64)
	return ids, ok
}

// Clone returns a shallow copy, so hooks can mutate the scalar set
// without losing the original payload.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Names returns the field names in deterministic order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
