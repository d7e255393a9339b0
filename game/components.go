// Package game is the capsule simulation: players, capsules, path recorders
// and walls, and the input, physical and collision systems that drive them.
package game

import (
	"strconv"

	"github.com/plus3/capsynth/ecs"
)

// Kind tags which component an entity carries. Every entity has exactly one.
type Kind uint8

const (
	KindPlayer Kind = iota + 1
	KindCapsule
	KindRecorder
	KindWall
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindCapsule:
		return "capsule"
	case KindRecorder:
		return "recorder"
	case KindWall:
		return "wall"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// PlayerState tracks ejection from a capsule.
type PlayerState uint8

const (
	PlayerNormal PlayerState = iota
	// PlayerEjecting blocks docking until the player has a tick without any
	// contact.
	PlayerEjecting
	// PlayerBounce is reserved for wall rebounds.
	PlayerBounce
)

func (s PlayerState) String() string {
	switch s {
	case PlayerNormal:
		return "normal"
	case PlayerEjecting:
		return "ejecting"
	case PlayerBounce:
		return "bounce"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Player is a craft steered by one controller.
type Player struct {
	// Rotation is the heading in radians.
	Rotation     float64
	Acceleration float64
	// InCapsule is set while the player is docked.
	InCapsule ecs.EntityId
	InputID   string
	State     PlayerState
	Radius    float64
}

// Docked reports whether the player rides a capsule.
func (p *Player) Docked() bool {
	return p.InCapsule.Valid()
}

// Wall is a static boundary marker.
type Wall struct {
	Radius float64
}
