package game

import (
	"fmt"
	"iter"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/sequencer"
)

// World is the entity table. Every entity has a Kind and one entry in the
// matching side-table. Cross references between components are ids.
type World struct {
	ids   ecs.Allocator
	kinds *ecs.Table[Kind]

	Players   *ecs.Table[Player]
	Capsules  *ecs.Table[Capsule]
	Recorders *ecs.Table[*sequencer.Recorder]
	Walls     *ecs.Table[Wall]
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		kinds:     ecs.NewTable[Kind](256),
		Players:   ecs.NewTable[Player](8),
		Capsules:  ecs.NewTable[Capsule](16),
		Recorders: ecs.NewTable[*sequencer.Recorder](16),
		Walls:     ecs.NewTable[Wall](256),
	}
}

// Reserve allocates an id without attaching a component. Used when two
// entities must reference each other from creation.
func (w *World) Reserve() ecs.EntityId {
	return w.ids.Next()
}

// AddPlayer stores p under id.
func (w *World) AddPlayer(id ecs.EntityId, p Player) *Player {
	w.tag(id, KindPlayer)
	return w.Players.Insert(id, p)
}

// AddCapsule stores c under id.
func (w *World) AddCapsule(id ecs.EntityId, c Capsule) *Capsule {
	w.tag(id, KindCapsule)
	return w.Capsules.Insert(id, c)
}

// AddRecorder stores r under id.
func (w *World) AddRecorder(id ecs.EntityId, r *sequencer.Recorder) {
	w.tag(id, KindRecorder)
	w.Recorders.Insert(id, r)
}

// AddWall stores wl under id.
func (w *World) AddWall(id ecs.EntityId, wl Wall) {
	w.tag(id, KindWall)
	w.Walls.Insert(id, wl)
}

func (w *World) tag(id ecs.EntityId, kind Kind) {
	if existing := w.kinds.Get(id); existing != nil {
		panic(fmt.Sprintf("game: %s is already a %s, cannot add %s", id, *existing, kind))
	}
	w.kinds.Insert(id, kind)
}

// Kind returns the kind of id.
func (w *World) Kind(id ecs.EntityId) (Kind, bool) {
	k := w.kinds.Get(id)
	if k == nil {
		return 0, false
	}
	return *k, true
}

// Entities yields every entity with its kind in creation order.
func (w *World) Entities() iter.Seq2[ecs.EntityId, Kind] {
	return func(yield func(ecs.EntityId, Kind) bool) {
		for id, k := range w.kinds.Iter() {
			if !yield(id, *k) {
				return
			}
		}
	}
}

// Len returns the number of entities.
func (w *World) Len() int {
	return w.kinds.Len()
}

// Player returns the player for id.
func (w *World) Player(id ecs.EntityId) (*Player, bool) {
	p := w.Players.Get(id)
	return p, p != nil
}

// Capsule returns the capsule for id.
func (w *World) Capsule(id ecs.EntityId) (*Capsule, bool) {
	c := w.Capsules.Get(id)
	return c, c != nil
}

// Recorder returns the recorder for id.
func (w *World) Recorder(id ecs.EntityId) (*sequencer.Recorder, bool) {
	r := w.Recorders.Get(id)
	if r == nil {
		return nil, false
	}
	return *r, true
}

// mustPlayer resolves a reference that the docking rules guarantee points at
// a player. Anything else is a corrupted world.
func (w *World) mustPlayer(id ecs.EntityId) *Player {
	p := w.Players.Get(id)
	if p == nil {
		kind, _ := w.Kind(id)
		panic(fmt.Sprintf("game: reference %s should be a player, found %s", id, kind))
	}
	return p
}

func (w *World) mustCapsule(id ecs.EntityId) *Capsule {
	c := w.Capsules.Get(id)
	if c == nil {
		kind, _ := w.Kind(id)
		panic(fmt.Sprintf("game: reference %s should be a capsule, found %s", id, kind))
	}
	return c
}

func (w *World) mustRecorder(id ecs.EntityId) *sequencer.Recorder {
	r := w.Recorders.Get(id)
	if r == nil {
		kind, _ := w.Kind(id)
		panic(fmt.Sprintf("game: reference %s should be a recorder, found %s", id, kind))
	}
	return *r
}
