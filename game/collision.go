package game

import (
	"fmt"
	"log/slog"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
)

type collider struct {
	id     ecs.EntityId
	kind   Kind
	center geom.Vector
	radius float64
}

// CollisionSystem runs the pairwise circle test over every body and applies
// the docking rules.
type CollisionSystem struct {
	world    *World
	physical *PhysicalSystem
	logger   *slog.Logger

	colliders []collider
	touching  map[ecs.EntityId]bool

	// Contacts is the number of intersecting pairs found by the last pass.
	Contacts int
	// Docks counts successful dockings since creation.
	Docks int
}

// NewCollisionSystem creates the system reading positions from physical.
func NewCollisionSystem(world *World, physical *PhysicalSystem, logger *slog.Logger) *CollisionSystem {
	return &CollisionSystem{
		world:    world,
		physical: physical,
		logger:   logger,
		touching: make(map[ecs.EntityId]bool),
	}
}

func (s *CollisionSystem) Execute(frame *ecs.UpdateFrame) {
	s.Detect(frame.Surface)
}

// Detect tests every pair of bodies once. Centers are converted to surface
// pixels once per pass.
func (s *CollisionSystem) Detect(surface geom.Surface) {
	s.colliders = s.colliders[:0]
	clear(s.touching)
	s.Contacts = 0

	for id, kind := range s.world.Entities() {
		radius, ok := s.bodyRadius(id, kind)
		if !ok {
			continue
		}
		pos, ok := s.physical.PositionOf(id)
		if !ok {
			continue
		}
		s.colliders = append(s.colliders, collider{
			id:     id,
			kind:   kind,
			center: surface.ToCanvas(pos),
			radius: radius,
		})
	}

	for i := 0; i < len(s.colliders); i++ {
		a := &s.colliders[i]
		for j := i + 1; j < len(s.colliders); j++ {
			b := &s.colliders[j]
			if !geom.CirclesIntersect(a.center, a.radius, b.center, b.radius) {
				continue
			}
			s.Contacts++
			s.touching[a.id] = true
			s.touching[b.id] = true
			s.resolve(a, b)
		}
	}

	for id, player := range s.world.Players.Iter() {
		if player.State == PlayerEjecting && !s.touching[id] {
			player.State = PlayerNormal
		}
	}
}

func (s *CollisionSystem) bodyRadius(id ecs.EntityId, kind Kind) (float64, bool) {
	switch kind {
	case KindPlayer:
		return s.world.mustPlayer(id).Radius, true
	case KindCapsule:
		return s.world.mustCapsule(id).Radius, true
	case KindWall:
		return s.world.Walls.Get(id).Radius, true
	case KindRecorder:
		return 0, false
	default:
		panic(fmt.Sprintf("game: %s has unknown kind %s", id, kind))
	}
}

// resolve applies the effect of one contact. Only player/capsule contacts do
// anything; player/player, capsule/capsule and wall contacts are detected but
// have no effect yet.
func (s *CollisionSystem) resolve(a, b *collider) {
	switch {
	case a.kind == KindPlayer && b.kind == KindCapsule:
		s.dock(a.id, b.id)
	case a.kind == KindCapsule && b.kind == KindPlayer:
		s.dock(b.id, a.id)
	}
}

func (s *CollisionSystem) dock(playerID, capsuleID ecs.EntityId) {
	player := s.world.mustPlayer(playerID)
	capsule := s.world.mustCapsule(capsuleID)

	if player.Docked() || capsule.Occupied() || player.State == PlayerEjecting {
		return
	}

	switch capsule.Phase {
	case PhasePre:
	case PhaseSequence:
		capsule.Rearm()
		s.world.mustRecorder(capsule.Recorder).Reset()
	case PhaseActive, PhaseEnd:
		return
	default:
		panic(fmt.Sprintf("game: capsule %s has unknown phase %s", capsuleID, capsule.Phase))
	}

	capsule.OccupiedBy = playerID
	player.InCapsule = capsuleID
	player.Acceleration = 0
	s.Docks++

	s.logger.Debug("player docked", "player", playerID, "capsule", capsuleID)
}
