// Package synth renders dispatcher triggers with beep and plays them on the
// default audio device.
package synth

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/plus3/capsynth/audio"
)

const DefaultSampleRate = beep.SampleRate(48000)

// VoiceConfig shapes one synthesis voice.
type VoiceConfig struct {
	// Detune shifts every pitch, in cents.
	Detune float64
	// Gain is the output level in decibels.
	Gain float64
	// Attack and Release bound the envelope ramps.
	Attack  time.Duration
	Release time.Duration
	// Sweep is the starting pitch multiple of a membrane voice. Values <= 1
	// produce a plain tone.
	Sweep      float64
	SweepDecay time.Duration
}

// Config is the per-voice setup of a Synth.
type Config struct {
	SampleRate beep.SampleRate
	// Step is the audio tick interval used to turn lengths into durations.
	Step   time.Duration
	Voices map[audio.Voice]VoiceConfig
}

// DefaultConfig is a two octave down triangle lead and a three octave down
// membrane kick.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		Step:       audio.StepInterval(audio.DefaultBPM),
		Voices: map[audio.Voice]VoiceConfig{
			audio.VoiceSynth: {
				Detune:  -1200,
				Gain:    -8,
				Attack:  5 * time.Millisecond,
				Release: 40 * time.Millisecond,
			},
			audio.VoiceBeat: {
				Detune:     -3600,
				Gain:       -12,
				Attack:     time.Millisecond,
				Release:    60 * time.Millisecond,
				Sweep:      8,
				SweepDecay: 50 * time.Millisecond,
			},
		},
	}
}

// Synth is an audio.Sink that mixes one streamer per trigger.
type Synth struct {
	mu     sync.Mutex
	cfg    Config
	mixer  *beep.Mixer
	opened bool
}

// New creates a synth without touching the audio device.
func New(cfg Config) *Synth {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.Step <= 0 {
		cfg.Step = audio.StepInterval(audio.DefaultBPM)
	}
	return &Synth{cfg: cfg, mixer: &beep.Mixer{}}
}

// Open initializes the speaker and starts streaming the mixer.
func (s *Synth) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}
	if err := speaker.Init(s.cfg.SampleRate, s.cfg.SampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("synth: init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.opened = true
	return nil
}

// Close stops playback and releases the device.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.opened = false
}

// Mixer exposes the output mixer, mostly for offline rendering.
func (s *Synth) Mixer() *beep.Mixer {
	return s.mixer
}

// Pending is the number of streamers still in the mixer.
func (s *Synth) Pending() int {
	s.lock()
	defer s.unlock()
	return s.mixer.Len()
}

// Play schedules the trigger's chord after its lead.
func (s *Synth) Play(t audio.Trigger) error {
	st, err := s.Render(t)
	if err != nil {
		return err
	}

	s.lock()
	s.mixer.Add(st)
	s.unlock()
	return nil
}

// Render builds the streamer for a trigger: silence for the lead, then the
// chord.
func (s *Synth) Render(t audio.Trigger) (beep.Streamer, error) {
	vc, ok := s.cfg.Voices[t.Voice]
	if !ok {
		return nil, fmt.Errorf("synth: no configuration for voice %s", t.Voice)
	}
	if len(t.Pitches) == 0 {
		return nil, fmt.Errorf("synth: empty trigger for voice %s", t.Voice)
	}

	rate := s.cfg.SampleRate
	step := s.cfg.Step
	if t.Step > 0 {
		step = t.Step
	}
	dur := t.Length.Duration(step)

	tones := make([]beep.Streamer, 0, len(t.Pitches))
	for _, p := range t.Pitches {
		freq, err := p.Frequency()
		if err != nil {
			return nil, err
		}
		freq *= math.Pow(2, vc.Detune/1200)
		tones = append(tones, tone(freq, dur, vc, rate))
	}

	chord := beep.Mix(tones...)
	if n := len(tones); n > 1 {
		chord = gain(chord, 1/float64(n))
	}
	out := gain(chord, math.Pow(10, vc.Gain/20))

	if lead := t.At - t.Tick; lead > 0 {
		return beep.Seq(beep.Silence(rate.N(lead)), out), nil
	}
	return out, nil
}

func (s *Synth) lock() {
	s.mu.Lock()
	if s.opened {
		speaker.Lock()
	}
}

func (s *Synth) unlock() {
	if s.opened {
		speaker.Unlock()
	}
	s.mu.Unlock()
}

func tone(freq float64, dur time.Duration, vc VoiceConfig, rate beep.SampleRate) beep.Streamer {
	osc := &oscillator{
		freq:     freq,
		duration: rate.N(dur),
		rate:     rate,
	}
	if vc.Sweep > 1 {
		osc.wave = waveSine
		osc.sweep = vc.Sweep
		osc.sweepTau = float64(rate.N(vc.SweepDecay))
	} else {
		osc.wave = waveTriangle
	}
	return newEnvelope(osc, dur, vc.Attack, vc.Release, rate)
}

func gain(s beep.Streamer, g float64) beep.Streamer {
	if g <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(g)}
}
