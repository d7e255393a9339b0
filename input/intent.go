// Package input normalizes raw devices into per-player intents. Keyboard
// events and serial controller frames both end up on a Board that the
// simulation reads once per tick.
package input

import (
	"maps"

	"github.com/plus3/capsynth/ecs"
)

// Intent is what one controller asks of its player this tick.
type Intent struct {
	// Thrust is held. A free player launches on the rising edge, a docked
	// player keeps its capsule moving while it is held.
	Thrust bool
	// Turn is the rotation rate in steps per tick, negative is
	// counter-clockwise.
	Turn float64
	// Heading is an absolute rotation in radians, used when HasHeading is set.
	Heading    float64
	HasHeading bool
}

// Board is the shared cell holding the latest intent per input id. Writers
// may run on any goroutine.
type Board struct {
	cell *ecs.Singleton[map[string]Intent]
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{cell: ecs.NewSingleton(map[string]Intent{})}
}

// Publish replaces the intent for id.
func (b *Board) Publish(id string, intent Intent) {
	b.cell.Update(func(current map[string]Intent, _ bool) map[string]Intent {
		next := maps.Clone(current)
		if next == nil {
			next = map[string]Intent{}
		}
		next[id] = intent
		return next
	})
}

// Intent returns the latest intent for id.
func (b *Board) Intent(id string) (Intent, bool) {
	current, _ := b.cell.Get()
	intent, ok := current[id]
	return intent, ok
}

// Snapshot returns a copy of every intent.
func (b *Board) Snapshot() map[string]Intent {
	current, _ := b.cell.Get()
	return maps.Clone(current)
}
