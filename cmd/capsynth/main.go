package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/audio/midiout"
	"github.com/plus3/capsynth/audio/synth"
	"github.com/plus3/capsynth/config"
	"github.com/plus3/capsynth/diag"
	debugui_ebiten "github.com/plus3/capsynth/ecs/debugui/ebiten"
	"github.com/plus3/capsynth/game"
	"github.com/plus3/capsynth/input"
)

func main() {
	if err := run(os.Args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		log.Fatal(err)
	}
}

// openAudio opens the configured sink and returns its closer.
var openAudio = openSink

// run returns instead of exiting so deferred cleanup closes the audio device.
func run(args []string) error {
	flags := flag.NewFlagSet("capsynth", flag.ContinueOnError)
	configPath := flags.String("config", "", "YAML config overlaid on the defaults; watched for changes.")
	inputMode := flags.String("input", "keyboard", "Controller source: keyboard or serial.")
	serialDevice := flags.String("serial", "", "Serial device path, overrides the config.")
	sinkName := flags.String("sink", "", "Audio output: synth, midi or none. Overrides the config.")
	midiPort := flags.String("midi-port", "", "MIDI output port name, overrides the config.")
	logLevel := flags.String("log-level", "", "Log level, overrides the config.")
	debug := flags.Bool("debug", false, "Show the ImGui debug overlay.")
	listMIDI := flags.Bool("list-midi", false, "List MIDI output ports and exit.")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *listMIDI {
		for _, name := range midiout.Ports() {
			fmt.Println(name)
		}
		return nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	override(&cfg.Serial.Device, *serialDevice)
	override(&cfg.Audio.Sink, *sinkName)
	override(&cfg.Audio.MIDIPort, *midiPort)
	override(&cfg.Log.Level, *logLevel)
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.LogLevel()
	status := &diag.Last{}
	logger := diag.NewLogger(level, os.Stderr, status)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink, closeSink, err := openAudio(cfg, logger)
	if err != nil {
		return fmt.Errorf("open audio sink: %w", err)
	}
	defer closeSink()

	g, err := newGame(ctx, cfg, sink, status, logger, *inputMode)
	if err != nil {
		return err
	}

	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, logger, g.live.Publish); err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	if *debug {
		g.imgui = debugui_ebiten.NewImguiBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		g.installDebugUI()
	} else {
		ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
		ebiten.SetWindowTitle(cfg.Window.Title)
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return ebiten.RunGame(g)
}

func override(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

func openSink(cfg *config.Config, logger *slog.Logger) (audio.Sink, func(), error) {
	switch cfg.Audio.Sink {
	case "synth":
		s := synth.New(cfg.Synth())
		if err := s.Open(); err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "midi":
		out, err := midiout.Open(cfg.Audio.MIDIPort, cfg.MIDI(), logger)
		if err != nil {
			return nil, nil, err
		}
		return out, func() {
			if err := out.Close(); err != nil {
				logger.Warn("closing midi port", "error", err)
			}
		}, nil
	case "none":
		return audio.SinkFunc(func(audio.Trigger) error { return nil }), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown sink %q", cfg.Audio.Sink)
}

// lobby adds a player for every controller that joins.
type lobby struct {
	sim *game.Sim
}

func (l lobby) AddPlayer(inputID string) {
	l.sim.AddPlayer(inputID)
}

func (l lobby) Start() {
	l.sim.Start()
}

var _ input.Lobby = lobby{}
