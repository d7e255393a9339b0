package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/config"
	"github.com/plus3/capsynth/diag"
	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/ecs/debugui"
	debugui_ebiten "github.com/plus3/capsynth/ecs/debugui/ebiten"
	"github.com/plus3/capsynth/game"
	"github.com/plus3/capsynth/geom"
	"github.com/plus3/capsynth/input"
	"github.com/plus3/capsynth/render"
)

// maxFrame caps the simulated delta after a stall.
const maxFrame = 100 * time.Millisecond

// Game implements ebiten.Game. Devices, simulation and audio run in that
// order inside Update.
type Game struct {
	ctx    context.Context
	logger *slog.Logger
	status *diag.Last
	live   *config.Live

	board      *input.Board
	keyboard   *input.Keyboard
	serial     *serialControl
	devices    *ecs.Scheduler
	sim        *game.Sim
	dispatcher *audio.Dispatcher
	audio      *ecs.Scheduler
	clock      *audio.Clock

	imgui *debugui_ebiten.ImguiBackend
	ui    *ecs.Scheduler

	surface geom.Surface
	last    time.Time
}

func newGame(ctx context.Context, cfg *config.Config, sink audio.Sink, status *diag.Last, logger *slog.Logger, mode string) (*Game, error) {
	g := &Game{
		ctx:     ctx,
		logger:  logger,
		status:  status,
		live:    config.NewLive(cfg),
		board:   input.NewBoard(),
		devices: ecs.NewScheduler("devices", logger),
		audio:   ecs.NewScheduler("audio", logger),
		clock:   audio.NewClock(cfg.Audio.BPM),
	}

	g.dispatcher = audio.NewDispatcher(sink, cfg.Audio.Lead, logger.With("component", "audio"))
	g.audio.Register(g.dispatcher)

	g.sim = game.NewSim(game.Options{
		Tuning:  cfg.Tuning(),
		Palette: cfg.Palette(),
		Intents: g.board,
		Notes:   g.dispatcher,
		Logger:  logger.With("component", "game"),
	})

	switch mode {
	case "keyboard":
		g.keyboard = input.NewKeyboard(g.board)
		g.devices.RegisterNamed("KeyboardSystem", ecs.SystemFunc(func(*ecs.UpdateFrame) {
			g.keyboard.PollKeys()
		}))
		g.sim.AddPlayer(input.KeyboardID)
		g.sim.Start()
	case "serial":
		g.serial = newSerialControl(ctx, cfg, lobby{sim: g.sim}, g.board, logger.With("component", "serial"))
		g.devices.Register(g.serial.system)
	default:
		return nil, fmt.Errorf("unknown input mode %q", mode)
	}
	return g, nil
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	dt := time.Duration(0)
	if !g.last.IsZero() {
		dt = min(now.Sub(g.last), maxFrame)
	}
	g.last = now
	deltaMs := float64(dt) / float64(time.Millisecond)

	if cfg, ok := g.live.Poll(); ok {
		g.apply(cfg)
	}

	if g.serial != nil && inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.serial.begin(now)
	}

	if g.imgui != nil {
		g.imgui.BeginFrame()
	}

	g.devices.Once(deltaMs, g.surface)
	g.sim.Step(deltaMs, g.surface)

	step := float64(g.clock.Interval()) / float64(time.Millisecond)
	for range g.clock.Advance(dt) {
		g.audio.Once(step, g.surface)
	}

	if g.imgui != nil {
		g.ui.Once(deltaMs, g.surface)
		g.imgui.EndFrame()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	render.Draw(screen, render.Build(g.sim, g.surface, g.hud()...))

	if g.imgui != nil {
		g.imgui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.imgui != nil {
		g.imgui.Layout(outsideWidth, outsideHeight)
	}
	g.surface = geom.Surface{Width: float64(outsideWidth), Height: float64(outsideHeight)}
	return outsideWidth, outsideHeight
}

// apply takes a reloaded config. Radii only affect entities created later.
func (g *Game) apply(cfg *config.Config) {
	g.sim.SetTuning(cfg.Tuning())
	g.sim.SetPalette(cfg.Palette())
	g.clock.SetTempo(cfg.Audio.BPM)
	if g.serial != nil {
		g.serial.activation.SetTiming(cfg.Timing())
	}
	g.logger.Debug("config applied", "bpm", cfg.Audio.BPM)
}

func (g *Game) hud() []string {
	var lines []string
	if g.keyboard != nil {
		lines = append(lines, "keyboard: up thrusts, left/right turn")
	} else {
		lines = append(lines, g.serial.status())
	}

	triggers, _ := g.dispatcher.Counts()
	lines = append(lines, fmt.Sprintf("capsules %d/%d  triggers %d  %.0f fps",
		g.sim.Spawner.Spawned(), g.sim.Tuning().CapsuleCount, triggers, ebiten.ActualFPS()))

	if level, msg, n := g.status.Get(); n > 0 {
		lines = append(lines, fmt.Sprintf("%s: %s", level, msg))
	}
	return lines
}

func (g *Game) installDebugUI() {
	g.ui = ecs.NewScheduler("ui", g.logger)
	ui := debugui.NewImguiSystem(
		debugui.NewPerformanceStats(120, g.devices, g.sim.Scheduler, g.audio).Item(),
		debugui.ImguiItem{Name: "world", Render: func() { renderWorldWindow(g.sim, g.dispatcher) }},
	)
	g.ui.Register(ui)
}
