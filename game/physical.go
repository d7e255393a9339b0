package game

import (
	"log/slog"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
	"github.com/plus3/capsynth/sequencer"
)

// PhysicalSystem owns the authoritative normalized position of every placed
// entity and advances motion once per tick.
type PhysicalSystem struct {
	world     *World
	positions *ecs.Table[geom.Vector]
	tuning    *Tuning
	logger    *slog.Logger
}

// NewPhysicalSystem creates the system. tuning is read every tick.
func NewPhysicalSystem(world *World, tuning *Tuning, logger *slog.Logger) *PhysicalSystem {
	return &PhysicalSystem{
		world:     world,
		positions: ecs.NewTable[geom.Vector](256),
		tuning:    tuning,
		logger:    logger,
	}
}

// Place registers or moves id. Positions are clamped to the playfield.
func (s *PhysicalSystem) Place(id ecs.EntityId, pos geom.Vector) {
	s.positions.Insert(id, geom.BoundVec(pos))
}

// PositionOf returns the normalized position of id.
func (s *PhysicalSystem) PositionOf(id ecs.EntityId) (geom.Vector, bool) {
	pos := s.positions.Get(id)
	if pos == nil {
		return geom.Vector{}, false
	}
	return *pos, true
}

func (s *PhysicalSystem) Execute(frame *ecs.UpdateFrame) {
	s.Advance(frame.DeltaTime, frame.Surface)
}

// Advance moves capsules, then players, then steps the recorders. Players
// come after capsules so a docked player mirrors this tick's capsule
// position, and before recorders so a landed capsule releases its player
// before it settles into playback.
func (s *PhysicalSystem) Advance(deltaMs float64, surface geom.Surface) {
	for id, capsule := range s.world.Capsules.Iter() {
		s.moveCapsule(id, capsule, deltaMs, surface)
	}
	for id, player := range s.world.Players.Iter() {
		s.movePlayer(id, player, deltaMs, surface)
	}
	for _, recorder := range s.world.Recorders.Iter() {
		s.stepRecorder(*recorder, surface)
	}
}

func (s *PhysicalSystem) moveCapsule(id ecs.EntityId, capsule *Capsule, deltaMs float64, surface geom.Surface) {
	if capsule.Phase != PhaseActive || !capsule.Occupied() {
		return
	}
	pos := s.positions.Get(id)
	if pos == nil {
		return
	}

	occupant := s.world.mustPlayer(capsule.OccupiedBy)
	*pos = step(*pos, occupant.Rotation, s.tuning.CapsuleSpeed*deltaMs, surface)
}

func (s *PhysicalSystem) movePlayer(id ecs.EntityId, player *Player, deltaMs float64, surface geom.Surface) {
	pos := s.positions.Get(id)
	if pos == nil {
		return
	}

	if player.Docked() {
		capsule := s.world.mustCapsule(player.InCapsule)
		if capsule.OccupiedBy != id {
			panic("game: " + id.String() + " is docked in " + player.InCapsule.String() +
				" which is occupied by " + capsule.OccupiedBy.String())
		}
		if host, ok := s.PositionOf(player.InCapsule); ok {
			*pos = host
		}
		if capsule.Phase == PhaseEnd {
			s.release(id, player, capsule)
		}
		return
	}

	distance := 0.0
	if player.Acceleration > 0 {
		distance = player.Acceleration*(deltaMs*s.tuning.AccelerationScale) + s.tuning.MinStep
		player.Acceleration = max(player.Acceleration-deltaMs*s.tuning.AccelerationDecay, 0)
	}
	if distance > 0 {
		*pos = step(*pos, player.Rotation, distance, surface)
	}
}

func (s *PhysicalSystem) release(id ecs.EntityId, player *Player, capsule *Capsule) {
	s.logger.Debug("player released", "player", id, "capsule", player.InCapsule)

	capsule.OccupiedBy = 0
	player.InCapsule = 0
	player.State = PlayerEjecting
	player.Acceleration = s.tuning.EjectAcceleration
}

func (s *PhysicalSystem) stepRecorder(recorder *sequencer.Recorder, surface geom.Surface) {
	capsuleID := recorder.Source()
	capsule := s.world.mustCapsule(capsuleID)

	switch capsule.Phase {
	case PhaseActive:
		if pos, ok := s.PositionOf(capsuleID); ok {
			recorder.RecordPoint(pos)
		}
	case PhaseEnd:
		if recorder.BuildIfReady(surface) {
			s.logger.Debug("sequence built", "capsule", capsuleID, "circles", len(recorder.Circles()))
		}
		capsule.Settle()
	case PhaseSequence:
		if circle, ok := recorder.ActiveCircle(); ok {
			s.Place(capsuleID, circle.Position)
		}
	case PhasePre:
	}
}

// step moves pos by distance along rotation. Vertical motion is scaled by the
// surface aspect so a step covers the same pixels on both axes.
func step(pos geom.Vector, rotation, distance float64, surface geom.Surface) geom.Vector {
	dir := geom.Heading(rotation)
	return geom.Vec(
		geom.Bound(pos.X()+distance*dir.X()),
		geom.Bound(pos.Y()+distance*surface.Aspect()*dir.Y()),
	)
}
