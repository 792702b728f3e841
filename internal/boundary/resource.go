package boundary

import (
	"errors"
	"sync"
)

// ErrPoisoned is returned when a resource's previous holder panicked
// while holding the lock. Subsequent accesses never silently succeed;
// callers that retry take on the responsibility of deciding whether the
// poisoning cause matters to them.
var ErrPoisoned = errors.New("resource poisoned by a previous fault")

// ErrReleased is returned when a resource has been fully released.
var ErrReleased = errors.New("resource has been released")

// Resource is a reference-counted cell guarding shared native state
// (an archive reader, a database connection) behind a mutex.
//
// All access goes through With, which holds the lock for the duration
// of one operation only. If the operation panics, the resource is
// marked poisoned before the panic continues to the enclosing Guard.
type Resource[T any] struct {
	mu       sync.Mutex
	val      T
	closer   func(T) error
	refs     int
	poisoned bool
	released bool
}

// NewResource creates a resource with a reference count of one.
// closer runs exactly once, when the count drops to zero.
func NewResource[T any](val T, closer func(T) error) *Resource[T] {
	return &Resource[T]{val: val, closer: closer, refs: 1}
}

// Retain increments the reference count and returns the same resource,
// so a derived handle can share it.
func (r *Resource[T]) Retain() *Resource[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refs++
	return r
}

// Release decrements the reference count. When it reaches zero the
// closer runs and the resource becomes unusable. Releasing an already
// fully released resource returns ErrReleased.
func (r *Resource[T]) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	r.refs--
	if r.refs > 0 {
		return nil
	}

	r.released = true
	if r.closer == nil {
		return nil
	}
	return r.closer(r.val)
}

// With runs fn with the resource value under the lock.
//
// It returns ErrPoisoned if a previous holder faulted and ErrReleased
// if the resource is gone. A panic inside fn poisons the resource and
// then propagates, to be contained by the entry point's Guard.
func (r *Resource[T]) With(fn func(T) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.poisoned {
		return ErrPoisoned
	}
	if r.released {
		return ErrReleased
	}

	defer func() {
		if p := recover(); p != nil {
			r.poisoned = true
			panic(p)
		}
	}()

	return fn(r.val)
}

// Poisoned reports whether a previous holder faulted. Used by tests.
func (r *Resource[T]) Poisoned() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.poisoned
}
