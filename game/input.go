package game

import (
	"math"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/input"
)

// IntentSource returns the latest intent for an input id.
type IntentSource interface {
	Intent(inputID string) (input.Intent, bool)
}

// InputSystem applies controller intents to players and their capsules.
// A free player gets one launch impulse per thrust press. A docked player
// starts its capsule by holding thrust and lands it by letting go.
type InputSystem struct {
	world   *World
	intents IntentSource
	tuning  *Tuning
	held    map[ecs.EntityId]bool
}

// NewInputSystem creates the system.
func NewInputSystem(world *World, intents IntentSource, tuning *Tuning) *InputSystem {
	return &InputSystem{
		world:   world,
		intents: intents,
		tuning:  tuning,
		held:    make(map[ecs.EntityId]bool),
	}
}

func (s *InputSystem) Execute(frame *ecs.UpdateFrame) {
	s.Apply()
}

// Apply reads one intent per player.
func (s *InputSystem) Apply() {
	for id, player := range s.world.Players.Iter() {
		intent, _ := s.intents.Intent(player.InputID)

		if intent.HasHeading {
			player.Rotation = wrapAngle(intent.Heading)
		} else if intent.Turn != 0 {
			player.Rotation = wrapAngle(player.Rotation + intent.Turn*s.tuning.RotateStep)
		}

		wasHeld := s.held[id]
		s.held[id] = intent.Thrust

		if player.Docked() {
			capsule := s.world.mustCapsule(player.InCapsule)
			if intent.Thrust {
				capsule.Launch()
			} else {
				capsule.Land()
			}
			continue
		}

		if intent.Thrust && !wasHeld {
			player.Acceleration = s.tuning.LaunchAcceleration
		}
	}
}

func wrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
