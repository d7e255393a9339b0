package ecs

// Commands buffers work that must not run while systems are iterating the
// entity tables. The scheduler flushes it at the end of every pass.
type Commands struct {
	spawns []func()
	defers []func()
}

func newCommands() *Commands {
	return &Commands{}
}

// Spawn queues an entity creation. Spawns run before deferred functions.
func (c *Commands) Spawn(fn func()) {
	c.spawns = append(c.spawns, fn)
}

// Defer queues a function execution operation.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.defers)
}

// Flush runs all queued operations in order, resetting the buffer state.
// Operations queued while flushing run in the same flush.
func (c *Commands) Flush() {
	for i := 0; i < len(c.spawns); i++ {
		c.spawns[i]()
	}
	for i := 0; i < len(c.defers); i++ {
		c.defers[i]()
	}

	c.spawns = c.spawns[:0]
	c.defers = c.defers[:0]
}
