package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/config"
	"github.com/plus3/capsynth/diag"
	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/game"
	"github.com/plus3/capsynth/geom"
	"github.com/plus3/capsynth/input"
)

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	bots := flag.Int("bots", 3, "The number of bot players.")
	capsules := flag.Int("capsules", 7, "The number of capsules to spawn.")
	frame := flag.Duration("frame", time.Second/60, "Simulated time per update.")
	width := flag.Int("width", 1000, "Surface width in pixels.")
	height := flag.Int("height", 700, "Surface height in pixels.")
	seed := flag.Uint64("seed", 1, "Random seed for placement, recorders and bots.")
	configPath := flag.String("config", "", "Optional YAML config overlay.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	level, _ := cfg.LogLevel()
	logger := diag.NewLogger(max(level, slog.LevelWarn), os.Stderr, nil)

	log.Println("Starting simulation stress test...")

	// 1. Setup the simulation and the audio path
	tuning := cfg.Tuning()
	tuning.CapsuleCount = *capsules

	rng := rand.New(rand.NewPCG(*seed, *seed+1))
	board := input.NewBoard()
	sink := &countingSink{}
	dispatcher := audio.NewDispatcher(sink, cfg.Audio.Lead, logger)

	sim := game.NewSim(game.Options{
		Tuning:  tuning,
		Palette: cfg.Palette(),
		Intents: board,
		Notes:   dispatcher,
		Rand:    rng,
		Logger:  logger,
	})

	audioScheduler := ecs.NewScheduler("audio", logger)
	audioScheduler.Register(dispatcher)
	clock := audio.NewClock(cfg.Audio.BPM)
	audioStep := float64(clock.Interval()) / float64(time.Millisecond)

	surface := geom.Surface{Width: float64(*width), Height: float64(*height)}

	// 2. Add bot players and start play
	log.Printf("Adding %d bots...\n", *bots)
	botList := make([]*bot, *bots)
	for i := range botList {
		botList[i] = &bot{id: fmt.Sprintf("bot-%d", i), rng: rng}
		sim.AddPlayer(botList[i].id)
	}
	sim.Start()

	// 3. Run the simulation loop
	report := &Report{
		Duration: *duration,
		Frame:    *frame,
		Bots:     *bots,
		Capsules: *capsules,
		Surface:  surface,
		UpdateTime: Stats{
			Samples: make([]time.Duration, 0),
		},
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s...\n", *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()
	var totalUpdates int64
	deltaMs := float64(*frame) / float64(time.Millisecond)

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
			for _, b := range botList {
				b.act(board)
			}

			updateStart := time.Now()
			sim.Step(deltaMs, surface)
			for range clock.Advance(*frame) {
				audioScheduler.Once(audioStep, surface)
			}
			updateDuration := time.Since(updateStart)

			report.UpdateTime.Samples = append(report.UpdateTime.Samples, updateDuration)
			totalUpdates++
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TotalUpdates = totalUpdates
	report.SimulatedTime = sim.Scheduler.Elapsed()
	report.UpdateTime.Finalize()
	report.Schedulers = []*ecs.SchedulerStats{sim.Scheduler.GetStats(), audioScheduler.GetStats()}
	report.Entities = sim.World.Len()
	report.Spawned = sim.Spawner.Spawned()
	report.Docks = sim.Collision.Docks
	report.Triggers, report.Notes = dispatcher.Counts()
	report.Chords = sink.chords
	for _, r := range sim.World.Recorders.Iter() {
		if len((*r).Circles()) > 0 {
			report.Sequences++
		}
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	// 4. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}

// bot wanders: it turns toward a random heading and toggles thrust so it
// launches, docks and lands capsules on its own.
type bot struct {
	id      string
	rng     *rand.Rand
	intent  input.Intent
	holdFor int
}

func (b *bot) act(board *input.Board) {
	if b.holdFor > 0 {
		b.holdFor--
		return
	}
	b.intent = input.Intent{
		Thrust:     b.rng.Float64() < 0.6,
		Heading:    b.rng.Float64() * 2 * math.Pi,
		HasHeading: true,
	}
	b.holdFor = 30 + b.rng.IntN(120)
	board.Publish(b.id, b.intent)
}

// countingSink stands in for a synthesizer.
type countingSink struct {
	chords int64
}

func (s *countingSink) Play(t audio.Trigger) error {
	if len(t.Pitches) > 1 {
		s.chords++
	}
	return nil
}
