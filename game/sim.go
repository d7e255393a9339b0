package game

import (
	"log/slog"
	"math/rand/v2"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
	"github.com/plus3/capsynth/sequencer"
)

// NoteRegistry receives every recorder so it can be polled on the audio
// tick.
type NoteRegistry interface {
	Register(id ecs.EntityId, source audio.Source)
}

// Options configures a Sim.
type Options struct {
	Tuning  Tuning
	Palette sequencer.Palette
	Intents IntentSource
	Notes   NoteRegistry
	Rand    *rand.Rand
	Logger  *slog.Logger
}

// Sim wires the world and its systems onto one scheduler. Systems run in
// order: spawner, input, physical, collision.
type Sim struct {
	World     *World
	Spawner   *Spawner
	Input     *InputSystem
	Physical  *PhysicalSystem
	Collision *CollisionSystem
	Scheduler *ecs.Scheduler

	tuning  *Tuning
	palette sequencer.Palette
	notes   NoteRegistry
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewSim builds a simulation. Nil Rand and Logger fall back to a time seeded
// generator and slog.Default.
func NewSim(opts Options) *Sim {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	tuning := opts.Tuning

	s := &Sim{
		World:   NewWorld(),
		tuning:  &tuning,
		palette: opts.Palette,
		notes:   opts.Notes,
		rng:     rng,
		logger:  logger,
	}
	s.Physical = NewPhysicalSystem(s.World, s.tuning, logger.With("system", "physical"))
	s.Collision = NewCollisionSystem(s.World, s.Physical, logger.With("system", "collision"))
	s.Input = NewInputSystem(s.World, opts.Intents, s.tuning)
	s.Spawner = NewSpawner(s, s.tuning)

	s.Scheduler = ecs.NewScheduler("sim", logger)
	s.Scheduler.Register(s.Spawner)
	s.Scheduler.Register(s.Input)
	s.Scheduler.Register(s.Physical)
	s.Scheduler.Register(s.Collision)
	return s
}

// Step runs one animation tick.
func (s *Sim) Step(deltaMs float64, surface geom.Surface) {
	s.Scheduler.Once(deltaMs, surface)
}

// Tuning returns the live constants.
func (s *Sim) Tuning() Tuning {
	return *s.tuning
}

// SetTuning replaces the constants. Radii only apply to entities created
// afterwards.
func (s *Sim) SetTuning(t Tuning) {
	*s.tuning = t
}

// SetPalette replaces the note palette for every recorder's next build.
func (s *Sim) SetPalette(p sequencer.Palette) {
	s.palette = p
	for _, r := range s.World.Recorders.Iter() {
		(*r).SetPalette(p)
	}
}

// AddPlayer creates a player for inputID at a random position.
func (s *Sim) AddPlayer(inputID string) ecs.EntityId {
	return s.AddPlayerAt(inputID, s.randomPosition())
}

// AddPlayerAt creates a player for inputID at pos.
func (s *Sim) AddPlayerAt(inputID string, pos geom.Vector) ecs.EntityId {
	id := s.World.Reserve()
	s.World.AddPlayer(id, Player{
		Rotation: s.tuning.InitialRotation,
		InputID:  inputID,
		Radius:   s.tuning.PlayerRadius,
	})
	s.Physical.Place(id, pos)
	s.logger.Info("player joined", "player", id, "input", inputID)
	return id
}

// Start begins spawning capsules on the next tick.
func (s *Sim) Start() {
	s.Spawner.Start()
}

// AddCapsule creates a capsule with a recorder of a random voice at a random
// position.
func (s *Sim) AddCapsule() (capsule, recorder ecs.EntityId) {
	voice := audio.Voices[s.rng.IntN(len(audio.Voices))]
	return s.AddCapsuleAt(s.randomPosition(), voice)
}

// AddCapsuleAt creates a capsule at pos with a recorder playing voice.
func (s *Sim) AddCapsuleAt(pos geom.Vector, voice audio.Voice) (capsule, recorder ecs.EntityId) {
	capsule = s.World.Reserve()
	recorder = s.World.Reserve()

	s.World.AddCapsule(capsule, Capsule{
		Phase:    PhasePre,
		Recorder: recorder,
		Radius:   s.tuning.CapsuleRadius,
	})
	rec := sequencer.New(capsule, voice, s.palette, s.rng)
	s.World.AddRecorder(recorder, rec)
	s.Physical.Place(capsule, pos)

	if s.notes != nil {
		s.notes.Register(recorder, rec)
	}
	s.logger.Debug("capsule spawned", "capsule", capsule, "recorder", recorder, "voice", voice)
	return capsule, recorder
}

// AddWall creates a wall at pos.
func (s *Sim) AddWall(pos geom.Vector) ecs.EntityId {
	id := s.World.Reserve()
	s.World.AddWall(id, Wall{Radius: s.tuning.WallRadius})
	s.Physical.Place(id, pos)
	return id
}

// BuildWalls lines the four edges of surface with walls spaced two radii
// apart.
func (s *Sim) BuildWalls(surface geom.Surface) int {
	if !surface.Valid() || s.tuning.WallRadius <= 0 {
		return 0
	}

	spacing := s.tuning.WallRadius * 2
	count := 0
	for x := 0.0; x < surface.Width; x += spacing {
		s.AddWall(surface.FromCanvas(geom.Vec(x, 0)))
		s.AddWall(surface.FromCanvas(geom.Vec(x, surface.Height)))
		count += 2
	}
	for y := 0.0; y < surface.Height; y += spacing {
		s.AddWall(surface.FromCanvas(geom.Vec(0, y)))
		s.AddWall(surface.FromCanvas(geom.Vec(surface.Width, y)))
		count += 2
	}
	return count
}

func (s *Sim) randomPosition() geom.Vector {
	return geom.Vec(s.rng.Float64(), s.rng.Float64())
}
