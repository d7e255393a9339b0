package ecs

import (
	"sync"
	"sync/atomic"
)

// Singleton is a shared cell holding one value that is not associated with
// any entity. Writers may live on other goroutines (device readers, file
// watchers); systems read it synchronously with Get.
type Singleton[T any] struct {
	value   atomic.Pointer[T]
	version atomic.Uint64
	mu      sync.Mutex
}

// NewSingleton creates a cell. If initializer is provided the cell starts
// with that value, otherwise it starts empty.
func NewSingleton[T any](initializer ...T) *Singleton[T] {
	s := &Singleton[T]{}
	if len(initializer) > 0 {
		s.Set(initializer[0])
	}
	return s
}

// Get returns the current value and whether one has been set.
func (s *Singleton[T]) Get() (T, bool) {
	ptr := s.value.Load()
	if ptr == nil {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// Set replaces the value.
func (s *Singleton[T]) Set(value T) {
	s.value.Store(&value)
	s.version.Add(1)
}

// Update applies fn to the current value under a lock so concurrent updates
// are not lost.
func (s *Singleton[T]) Update(fn func(current T, ok bool) T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.Get()
	s.Set(fn(current, ok))
}

// Exists returns true if a value has been set.
func (s *Singleton[T]) Exists() bool {
	return s.value.Load() != nil
}

// Version increases on every write. Readers compare it to detect changes.
func (s *Singleton[T]) Version() uint64 {
	return s.version.Load()
}
