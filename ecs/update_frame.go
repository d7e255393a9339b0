package ecs

import (
	"time"

	"github.com/plus3/capsynth/geom"
)

// UpdateFrame is handed to every system for one scheduler pass.
type UpdateFrame struct {
	// DeltaTime is the elapsed time since the previous pass in milliseconds.
	DeltaTime float64
	// Elapsed is the scheduler clock at the start of this pass.
	Elapsed  time.Duration
	Tick     uint64
	Surface  geom.Surface
	Commands *Commands
}

func newUpdateFrame(dt float64, elapsed time.Duration, tick uint64, surface geom.Surface) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Elapsed:   elapsed,
		Tick:      tick,
		Surface:   surface,
		Commands:  newCommands(),
	}
}
