package game

import (
	"strconv"

	"github.com/plus3/capsynth/ecs"
)

// Phase is the capsule movement state.
type Phase uint8

const (
	// PhasePre waits for a docked player to thrust.
	PhasePre Phase = iota
	// PhaseActive moves with the occupant and records the path.
	PhaseActive
	// PhaseEnd lasts one tick: the path is built and the player ejected.
	PhaseEnd
	// PhaseSequence plays the recorded loop.
	PhaseSequence
)

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhaseActive:
		return "active"
	case PhaseEnd:
		return "end"
	case PhaseSequence:
		return "sequence"
	default:
		return "phase(" + strconv.Itoa(int(p)) + ")"
	}
}

// Capsule carries a player and records where it went.
type Capsule struct {
	OccupiedBy ecs.EntityId
	Phase      Phase
	Recorder   ecs.EntityId
	Radius     float64
}

// Occupied reports whether a player is docked.
func (c *Capsule) Occupied() bool {
	return c.OccupiedBy.Valid()
}

// Launch starts recording. Only an occupied capsule in PhasePre launches.
func (c *Capsule) Launch() bool {
	if c.Phase != PhasePre || !c.Occupied() {
		return false
	}
	c.Phase = PhaseActive
	return true
}

// Land stops recording.
func (c *Capsule) Land() bool {
	if c.Phase != PhaseActive {
		return false
	}
	c.Phase = PhaseEnd
	return true
}

// Settle moves a landed capsule into playback.
func (c *Capsule) Settle() bool {
	if c.Phase != PhaseEnd {
		return false
	}
	c.Phase = PhaseSequence
	return true
}

// Rearm returns a playing capsule to PhasePre when a player docks into it.
func (c *Capsule) Rearm() bool {
	if c.Phase != PhaseSequence {
		return false
	}
	c.Phase = PhasePre
	return true
}
