package game

import (
	"time"

	"github.com/plus3/capsynth/ecs"
)

// Spawner lines the playfield with walls once a surface is known and, after
// Start, releases capsules on a timer driven by the frame clock.
type Spawner struct {
	sim    *Sim
	tuning *Tuning

	wallsBuilt bool
	pending    bool
	started    bool
	startedAt  time.Duration
	spawned    int
}

// NewSpawner creates a spawner for sim.
func NewSpawner(sim *Sim, tuning *Tuning) *Spawner {
	return &Spawner{sim: sim, tuning: tuning}
}

// Start arms capsule spawning from the next tick.
func (s *Spawner) Start() {
	if !s.started {
		s.pending = true
	}
}

// Started reports whether capsule spawning has begun.
func (s *Spawner) Started() bool {
	return s.started
}

// Spawned returns how many capsules have been released.
func (s *Spawner) Spawned() int {
	return s.spawned
}

func (s *Spawner) Execute(frame *ecs.UpdateFrame) {
	if !s.wallsBuilt && frame.Surface.Valid() {
		s.wallsBuilt = true
		surface := frame.Surface
		frame.Commands.Spawn(func() {
			n := s.sim.BuildWalls(surface)
			s.sim.logger.Debug("walls built", "count", n, "width", surface.Width, "height", surface.Height)
		})
	}

	if s.pending {
		s.pending = false
		s.started = true
		s.startedAt = frame.Elapsed
		s.sim.logger.Info("play started")
	}
	if !s.started {
		return
	}

	since := frame.Elapsed - s.startedAt
	for s.spawned < s.tuning.CapsuleCount && s.tuning.spawnTime(s.spawned) <= since {
		s.spawned++
		frame.Commands.Spawn(func() { s.sim.AddCapsule() })
	}
}
