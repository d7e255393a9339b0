// Package config loads capsynth settings from an embedded default, an
// optional YAML file and CAPSYNTH_* environment variables.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/audio/midiout"
	"github.com/plus3/capsynth/audio/synth"
	"github.com/plus3/capsynth/game"
	"github.com/plus3/capsynth/input"
	"github.com/plus3/capsynth/sequencer"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window    Window    `yaml:"window"`
	Log       Log       `yaml:"log"`
	Physics   Physics   `yaml:"physics"`
	Sequencer Sequencer `yaml:"sequencer"`
	Audio     Audio     `yaml:"audio"`
	Serial    Serial    `yaml:"serial"`
}

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Physics mirrors game.Tuning. Angles are in turns.
type Physics struct {
	PlayerRadius       float64       `yaml:"player_radius"`
	CapsuleRadius      float64       `yaml:"capsule_radius"`
	WallRadius         float64       `yaml:"wall_radius"`
	LaunchAcceleration float64       `yaml:"launch_acceleration"`
	EjectAcceleration  float64       `yaml:"eject_acceleration"`
	AccelerationScale  float64       `yaml:"acceleration_scale"`
	MinStep            float64       `yaml:"min_step"`
	AccelerationDecay  float64       `yaml:"acceleration_decay"`
	CapsuleSpeed       float64       `yaml:"capsule_speed"`
	RotateTurns        float64       `yaml:"rotate_turns"`
	InitialTurns       float64       `yaml:"initial_turns"`
	CapsuleCount       int           `yaml:"capsule_count"`
	FirstCapsuleDelay  time.Duration `yaml:"first_capsule_delay"`
	CapsuleInterval    time.Duration `yaml:"capsule_interval"`
}

type Sequencer struct {
	Notes        []string   `yaml:"notes"`
	HighNotes    []string   `yaml:"high_notes"`
	Sizes        [4]float64 `yaml:"sizes"`
	HighChance   float64    `yaml:"high_chance"`
	SilentChance float64    `yaml:"silent_chance"`
	Tolerance    float64    `yaml:"tolerance"`
}

type Voice struct {
	Detune float64 `yaml:"detune"`
	Gain   float64 `yaml:"gain"`
}

type Audio struct {
	Sink     string        `yaml:"sink"`
	BPM      float64       `yaml:"bpm"`
	Lead     time.Duration `yaml:"lead"`
	MIDIPort string        `yaml:"midi_port"`
	Synth    Voice         `yaml:"synth"`
	Beat     Voice         `yaml:"beat"`
}

type Serial struct {
	Device       string        `yaml:"device"`
	Baud         int           `yaml:"baud"`
	Debounce     time.Duration `yaml:"debounce"`
	ReleaseHold  time.Duration `yaml:"release_hold"`
	Timeout      time.Duration `yaml:"timeout"`
	Settle       time.Duration `yaml:"settle"`
	PotThreshold uint16        `yaml:"pot_threshold"`
}

// Default returns the embedded configuration.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultYAML, cfg); err != nil {
		panic("config: embedded default.yaml: " + err.Error())
	}
	return cfg
}

// Load overlays the file at path (if not empty) and the environment on top
// of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv reads .env style files into the process environment. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

type envVar struct {
	name string
	set  func(c *Config, v string) error
}

var envVars = []envVar{
	{"CAPSYNTH_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"CAPSYNTH_SERIAL_DEVICE", func(c *Config, v string) error { c.Serial.Device = v; return nil }},
	{"CAPSYNTH_SERIAL_BAUD", func(c *Config, v string) (err error) { c.Serial.Baud, err = strconv.Atoi(v); return }},
	{"CAPSYNTH_AUDIO_SINK", func(c *Config, v string) error { c.Audio.Sink = v; return nil }},
	{"CAPSYNTH_MIDI_PORT", func(c *Config, v string) error { c.Audio.MIDIPort = v; return nil }},
	{"CAPSYNTH_BPM", func(c *Config, v string) (err error) { c.Audio.BPM, err = strconv.ParseFloat(v, 64); return }},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(c, v); err != nil {
			return fmt.Errorf("config: %s=%q: %w", ev.name, v, err)
		}
	}
	return nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := c.LogLevel(); err != nil {
		bad("log.level %q", c.Log.Level)
	}

	p := c.Physics
	if p.PlayerRadius <= 0 || p.CapsuleRadius <= 0 || p.WallRadius <= 0 {
		bad("physics radii must be positive")
	}
	if p.AccelerationDecay < 0 || p.CapsuleSpeed < 0 || p.MinStep < 0 {
		bad("physics rates must not be negative")
	}
	if p.CapsuleCount < 0 {
		bad("physics.capsule_count %d", p.CapsuleCount)
	}
	if p.CapsuleInterval <= 0 {
		bad("physics.capsule_interval %s", p.CapsuleInterval)
	}

	s := c.Sequencer
	if len(s.Notes) == 0 {
		bad("sequencer.notes is empty")
	}
	for _, n := range append(append([]string{}, s.Notes...), s.HighNotes...) {
		if _, err := audio.Pitch(n).MIDIKey(); err != nil {
			bad("sequencer note %q", n)
		}
	}
	if s.HighChance < 0 || s.SilentChance < 0 || s.HighChance+s.SilentChance > 1 {
		bad("sequencer chances %.2f/%.2f", s.HighChance, s.SilentChance)
	}
	if s.Tolerance <= 0 {
		bad("sequencer.tolerance %g", s.Tolerance)
	}
	for i, r := range s.Sizes {
		if r <= 0 {
			bad("sequencer.sizes[%d] %g", i, r)
		}
	}

	a := c.Audio
	switch a.Sink {
	case "synth", "midi", "none":
	default:
		bad("audio.sink %q", a.Sink)
	}
	if a.BPM <= 0 {
		bad("audio.bpm %g", a.BPM)
	}
	if a.Lead < 0 {
		bad("audio.lead %s", a.Lead)
	}

	if c.Serial.Baud <= 0 {
		bad("serial.baud %d", c.Serial.Baud)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		bad("window size %dx%d", c.Window.Width, c.Window.Height)
	}

	return errors.Join(errs...)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.Log.Level))
	return l, err
}

// Tuning converts the physics section.
func (c *Config) Tuning() game.Tuning {
	p := c.Physics
	return game.Tuning{
		PlayerRadius:       p.PlayerRadius,
		CapsuleRadius:      p.CapsuleRadius,
		WallRadius:         p.WallRadius,
		LaunchAcceleration: p.LaunchAcceleration,
		AccelerationScale:  p.AccelerationScale,
		MinStep:            p.MinStep,
		AccelerationDecay:  p.AccelerationDecay,
		CapsuleSpeed:       p.CapsuleSpeed,
		RotateStep:         p.RotateTurns * 2 * math.Pi,
		InitialRotation:    p.InitialTurns * 2 * math.Pi,
		EjectAcceleration:  p.EjectAcceleration,
		CapsuleCount:       p.CapsuleCount,
		FirstCapsuleDelay:  p.FirstCapsuleDelay,
		CapsuleInterval:    p.CapsuleInterval,
	}
}

// Palette converts the sequencer section.
func (c *Config) Palette() sequencer.Palette {
	s := c.Sequencer
	return sequencer.Palette{
		Notes:        pitches(s.Notes),
		HighNotes:    pitches(s.HighNotes),
		Sizes:        s.Sizes,
		HighChance:   s.HighChance,
		SilentChance: s.SilentChance,
		Tolerance:    s.Tolerance,
	}
}

// Timing converts the serial activation section.
func (c *Config) Timing() input.Timing {
	s := c.Serial
	return input.Timing{
		Debounce:     s.Debounce,
		ReleaseHold:  s.ReleaseHold,
		Timeout:      s.Timeout,
		Settle:       s.Settle,
		PotThreshold: s.PotThreshold,
	}
}

// Synth returns the beep sink setup with the configured voice levels.
func (c *Config) Synth() synth.Config {
	sc := synth.DefaultConfig()
	sc.Step = audio.StepInterval(c.Audio.BPM)
	for v, vc := range map[audio.Voice]Voice{audio.VoiceSynth: c.Audio.Synth, audio.VoiceBeat: c.Audio.Beat} {
		cur := sc.Voices[v]
		cur.Detune = vc.Detune
		cur.Gain = vc.Gain
		sc.Voices[v] = cur
	}
	return sc
}

// MIDI returns the MIDI sink setup. Detune is applied as whole semitones.
func (c *Config) MIDI() midiout.Config {
	mc := midiout.DefaultConfig()
	mc.Step = audio.StepInterval(c.Audio.BPM)
	mc.Transpose[audio.VoiceSynth] = int(math.Round(c.Audio.Synth.Detune / 100))
	mc.Transpose[audio.VoiceBeat] = int(math.Round(c.Audio.Beat.Detune / 100))
	return mc
}

func pitches(names []string) []audio.Pitch {
	out := make([]audio.Pitch, len(names))
	for i, n := range names {
		out[i] = audio.Pitch(n)
	}
	return out
}
