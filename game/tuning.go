package game

import (
	"math"
	"time"
)

const (
	DefaultPlayerRadius  = 20.0
	DefaultCapsuleRadius = 32.0
	DefaultWallRadius    = 10.0

	// DefaultLaunchAcceleration is the impulse a thrust pulse gives a free
	// player.
	DefaultLaunchAcceleration = 10.0
	// DefaultAccelerationScale converts acceleration*ms into normalized
	// distance.
	DefaultAccelerationScale = 0.00001
	// DefaultMinStep is added to every step of a moving player.
	DefaultMinStep = 0.0001
	// DefaultAccelerationDecay is lost per millisecond.
	DefaultAccelerationDecay = 0.005
	// DefaultCapsuleSpeed is normalized distance per millisecond.
	DefaultCapsuleSpeed = 0.0001
	// DefaultRotateStep is radians per tick for keyboard turning.
	DefaultRotateStep = 0.02 * 2 * math.Pi
	// DefaultInitialRotation points new players down and to the right.
	DefaultInitialRotation = 0.15 * 2 * math.Pi
	// DefaultEjectAcceleration pushes a released player off its capsule.
	DefaultEjectAcceleration = 10.0

	DefaultCapsuleCount      = 7
	DefaultFirstCapsuleDelay = 100 * time.Millisecond
	DefaultCapsuleInterval   = time.Second
)

// Tuning holds the simulation constants. Radii are in pixels, speeds in
// normalized units.
type Tuning struct {
	PlayerRadius  float64
	CapsuleRadius float64
	WallRadius    float64

	LaunchAcceleration float64
	AccelerationScale  float64
	MinStep            float64
	AccelerationDecay  float64
	CapsuleSpeed       float64
	RotateStep         float64
	InitialRotation    float64
	EjectAcceleration  float64

	CapsuleCount      int
	FirstCapsuleDelay time.Duration
	CapsuleInterval   time.Duration
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		PlayerRadius:       DefaultPlayerRadius,
		CapsuleRadius:      DefaultCapsuleRadius,
		WallRadius:         DefaultWallRadius,
		LaunchAcceleration: DefaultLaunchAcceleration,
		AccelerationScale:  DefaultAccelerationScale,
		MinStep:            DefaultMinStep,
		AccelerationDecay:  DefaultAccelerationDecay,
		CapsuleSpeed:       DefaultCapsuleSpeed,
		RotateStep:         DefaultRotateStep,
		InitialRotation:    DefaultInitialRotation,
		EjectAcceleration:  DefaultEjectAcceleration,
		CapsuleCount:       DefaultCapsuleCount,
		FirstCapsuleDelay:  DefaultFirstCapsuleDelay,
		CapsuleInterval:    DefaultCapsuleInterval,
	}
}

// spawnTime is when the i-th capsule appears relative to the start of play.
func (t Tuning) spawnTime(i int) time.Duration {
	if i == 0 {
		return t.FirstCapsuleDelay
	}
	return time.Duration(i) * t.CapsuleInterval
}
