// Package midiout plays dispatcher triggers on an external MIDI port.
package midiout

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/plus3/capsynth/audio"
)

const allNotesOff = 123

// Config maps voices to channels.
type Config struct {
	Channels map[audio.Voice]uint8
	Velocity uint8
	// Transpose is added to every key, in semitones.
	Transpose map[audio.Voice]int
	Step      time.Duration
}

// DefaultConfig sends the synth on channel 1 and the beat on the General
// MIDI drum channel, both shifted down like the built-in synth.
func DefaultConfig() Config {
	return Config{
		Channels: map[audio.Voice]uint8{
			audio.VoiceSynth: 0,
			audio.VoiceBeat:  9,
		},
		Transpose: map[audio.Voice]int{
			audio.VoiceSynth: -12,
			audio.VoiceBeat:  -36,
		},
		Velocity: 100,
		Step:     audio.StepInterval(audio.DefaultBPM),
	}
}

// Out is an audio.Sink writing note on/off pairs. Messages are sent from
// timer goroutines.
type Out struct {
	cfg    Config
	logger *slog.Logger

	mu    sync.Mutex
	send  func(midi.Message) error
	port  drivers.Out
	after func(time.Duration, func())
	sent  int
}

// Open connects to the first output port whose name contains name.
func Open(name string, cfg Config, logger *slog.Logger) (*Out, error) {
	port, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("midiout: find port %q: %w", name, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("midiout: open port %q: %w", port.String(), err)
	}
	o := New(send, cfg, logger)
	o.port = port
	return o, nil
}

// New creates a sink around an arbitrary send function.
func New(send func(midi.Message) error, cfg Config, logger *slog.Logger) *Out {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Step <= 0 {
		cfg.Step = audio.StepInterval(audio.DefaultBPM)
	}
	if cfg.Velocity == 0 {
		cfg.Velocity = 100
	}
	return &Out{
		cfg:    cfg,
		logger: logger,
		send:   send,
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// Ports lists the names of available output ports.
func Ports() []string {
	var names []string
	for _, p := range midi.GetOutPorts() {
		names = append(names, p.String())
	}
	return names
}

// Play sends note on after the trigger lead and note off after its length.
func (o *Out) Play(t audio.Trigger) error {
	ch, ok := o.cfg.Channels[t.Voice]
	if !ok {
		return fmt.Errorf("midiout: no channel for voice %s", t.Voice)
	}

	keys := make([]uint8, 0, len(t.Pitches))
	for _, p := range t.Pitches {
		k, err := p.MIDIKey()
		if err != nil {
			return err
		}
		k += o.cfg.Transpose[t.Voice]
		if k < 0 || k > 127 {
			return fmt.Errorf("midiout: pitch %s out of range on voice %s", p, t.Voice)
		}
		keys = append(keys, uint8(k))
	}

	lead := max(t.At-t.Tick, 0)
	step := o.cfg.Step
	if t.Step > 0 {
		step = t.Step
	}
	o.after(lead, func() {
		for _, k := range keys {
			o.write(midi.NoteOn(ch, k, o.cfg.Velocity))
		}
	})
	o.after(lead+t.Length.Duration(step), func() {
		for _, k := range keys {
			o.write(midi.NoteOff(ch, k))
		}
	})
	return nil
}

// Sent is the number of messages written successfully.
func (o *Out) Sent() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sent
}

// Close silences every channel in use and closes the port.
func (o *Out) Close() error {
	for _, ch := range o.cfg.Channels {
		o.write(midi.ControlChange(ch, allNotesOff, 0))
	}
	if o.port == nil {
		return nil
	}
	return o.port.Close()
}

func (o *Out) write(msg midi.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.send(msg); err != nil {
		o.logger.Warn("midi send failed", "msg", msg.String(), "error", err)
		return
	}
	o.sent++
}
