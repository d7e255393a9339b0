package ecs

import "strconv"

// EntityId is an opaque handle for a simulation entity. The zero value is
// never issued and means "no entity".
type EntityId uint64

// Valid reports whether the id refers to an entity.
func (e EntityId) Valid() bool {
	return e != 0
}

func (e EntityId) String() string {
	if e == 0 {
		return "none"
	}
	return "e" + strconv.FormatUint(uint64(e), 10)
}

// Allocator issues sequential entity ids starting at 1.
type Allocator struct {
	last EntityId
}

// Next returns a fresh id.
func (a *Allocator) Next() EntityId {
	a.last++
	return a.last
}

// Issued returns how many ids have been handed out.
func (a *Allocator) Issued() int {
	return int(a.last)
}
