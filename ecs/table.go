package ecs

import (
	"iter"

	"github.com/kamstrup/intmap"
)

const (
	tableBlockSize = 64
)

// Table is an id keyed side-table of components of type T. Values live in
// fixed size blocks so pointers returned by Get stay valid until the entry is
// deleted. Iteration follows slot order, which is deterministic for a given
// sequence of inserts and deletes.
type Table[T any] struct {
	blocks    []*[tableBlockSize]T
	owners    []*[tableBlockSize]EntityId
	index     *intmap.Map[EntityId, int]
	freeSlots []int
	nextIndex int
}

// NewTable creates a table sized for roughly capacity entries.
func NewTable[T any](capacity int) *Table[T] {
	return &Table[T]{
		index: intmap.New[EntityId, int](capacity),
	}
}

// Insert stores value under id, replacing any existing entry, and returns a
// pointer to the stored copy.
func (t *Table[T]) Insert(id EntityId, value T) *T {
	if !id.Valid() {
		panic("ecs: insert with zero entity id")
	}

	if slot, ok := t.index.Get(id); ok {
		ptr := t.at(slot)
		*ptr = value
		return ptr
	}

	var slot int
	if len(t.freeSlots) > 0 {
		slot = t.freeSlots[len(t.freeSlots)-1]
		t.freeSlots = t.freeSlots[:len(t.freeSlots)-1]
	} else {
		slot = t.nextIndex
		t.nextIndex++
		if slot/tableBlockSize >= len(t.blocks) {
			t.blocks = append(t.blocks, new([tableBlockSize]T))
			t.owners = append(t.owners, new([tableBlockSize]EntityId))
		}
	}

	t.owners[slot/tableBlockSize][slot%tableBlockSize] = id
	t.index.Put(id, slot)

	ptr := t.at(slot)
	*ptr = value
	return ptr
}

// Get returns the entry for id or nil.
func (t *Table[T]) Get(id EntityId) *T {
	slot, ok := t.index.Get(id)
	if !ok {
		return nil
	}
	return t.at(slot)
}

// Has reports whether id has an entry.
func (t *Table[T]) Has(id EntityId) bool {
	return t.index.Has(id)
}

// Delete removes the entry for id and reports whether one existed.
func (t *Table[T]) Delete(id EntityId) bool {
	slot, ok := t.index.Get(id)
	if !ok {
		return false
	}

	var zero T
	*t.at(slot) = zero
	t.owners[slot/tableBlockSize][slot%tableBlockSize] = 0
	t.index.Del(id)
	t.freeSlots = append(t.freeSlots, slot)
	return true
}

// Len returns the number of entries.
func (t *Table[T]) Len() int {
	return t.index.Len()
}

// Clear removes every entry and releases the blocks.
func (t *Table[T]) Clear() {
	t.blocks = nil
	t.owners = nil
	t.freeSlots = nil
	t.nextIndex = 0
	t.index.Clear()
}

// Iter yields every entry in slot order.
func (t *Table[T]) Iter() iter.Seq2[EntityId, *T] {
	return func(yield func(EntityId, *T) bool) {
		for i := 0; i < t.nextIndex; i++ {
			id := t.owners[i/tableBlockSize][i%tableBlockSize]
			if !id.Valid() {
				continue
			}
			if !yield(id, t.at(i)) {
				return
			}
		}
	}
}

// Ids returns the ids in slot order.
func (t *Table[T]) Ids() []EntityId {
	ids := make([]EntityId, 0, t.Len())
	for id := range t.Iter() {
		ids = append(ids, id)
	}
	return ids
}

func (t *Table[T]) at(slot int) *T {
	return &t.blocks[slot/tableBlockSize][slot%tableBlockSize]
}
