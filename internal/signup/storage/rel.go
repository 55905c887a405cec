package storage

// Rel caches a related record after its first load. Once resolved, the value
// sticks for the lifetime of the holding record; fetched records are never
// silently invalidated.
type Rel[T any] struct {
	loaded bool
	value  T
}

// Resolve returns the cached value, calling load exactly once on first access.
// A load failure leaves the cell unresolved so the next access retries.
func (r *Rel[T]) Resolve(load func() (T, error)) (T, error) {
	if r.loaded {
		return r.value, nil
	}
	value, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	r.value = value
	r.loaded = true
	return value, nil
}

// Set seeds the cell with an already-known value, marking it resolved.
func (r *Rel[T]) Set(value T) {
	r.value = value
	r.loaded = true
}

// Loaded reports whether the cell holds a resolved value.
func (r *Rel[T]) Loaded() bool {
	return r.loaded
}
