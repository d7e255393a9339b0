// Package audio turns due notes from path recorders into batched triggers for
// a synthesis sink. It owns the note vocabulary shared by the sequencer and
// the sinks.
package audio

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/plus3/capsynth/ecs"
)

// Voice selects the synthesis voice for a note.
type Voice uint8

const (
	VoiceBeat Voice = iota
	VoiceSynth
)

// Voices lists every voice in flush order.
var Voices = [...]Voice{VoiceSynth, VoiceBeat}

func (v Voice) String() string {
	switch v {
	case VoiceBeat:
		return "beat"
	case VoiceSynth:
		return "synth"
	default:
		return "voice(" + strconv.Itoa(int(v)) + ")"
	}
}

// ParseVoice parses the names produced by Voice.String.
func ParseVoice(s string) (Voice, error) {
	switch s {
	case "beat":
		return VoiceBeat, nil
	case "synth":
		return VoiceSynth, nil
	}
	return 0, fmt.Errorf("audio: unknown voice %q", s)
}

// Length is a quantized note length. The index doubles as the base-2 log of
// the number of audio ticks the note lasts.
type Length uint8

const (
	Sixteenth Length = iota
	Eighth
	Quarter
	Half
)

// Lengths lists every length from shortest to longest.
var Lengths = [...]Length{Sixteenth, Eighth, Quarter, Half}

// Index is the position of l in Lengths.
func (l Length) Index() int {
	return int(l)
}

// Ticks is how many audio ticks the note occupies.
func (l Length) Ticks() int {
	return 1 << l
}

// Duration is the note length for a given audio tick interval.
func (l Length) Duration(tick time.Duration) time.Duration {
	return tick * time.Duration(l.Ticks())
}

func (l Length) String() string {
	switch l {
	case Sixteenth:
		return "16n"
	case Eighth:
		return "8n"
	case Quarter:
		return "4n"
	case Half:
		return "2n"
	default:
		return "length(" + strconv.Itoa(int(l)) + ")"
	}
}

// Pitch is a scientific pitch name such as "D4". The empty pitch is silence.
type Pitch string

var semitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// MIDIKey returns the MIDI note number, C4 = 60.
func (p Pitch) MIDIKey() (int, error) {
	s := string(p)
	if len(s) < 2 {
		return 0, fmt.Errorf("audio: bad pitch %q", s)
	}

	base, ok := semitones[s[0]]
	if !ok {
		return 0, fmt.Errorf("audio: bad pitch %q", s)
	}

	rest := s[1:]
	switch rest[0] {
	case '#':
		base++
		rest = rest[1:]
	case 'b':
		base--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("audio: bad pitch %q: %w", s, err)
	}
	return (octave+1)*12 + base, nil
}

// Frequency returns the equal tempered frequency in Hz with A4 = 440.
func (p Pitch) Frequency() (float64, error) {
	key, err := p.MIDIKey()
	if err != nil {
		return 0, err
	}
	return 440 * math.Pow(2, float64(key-69)/12), nil
}

// Note is one due circle pulled from a recorder.
type Note struct {
	Pitch  Pitch
	Length Length
	Voice  Voice
	Source ecs.EntityId
}

// Silent reports whether the note carries no pitch.
func (n Note) Silent() bool {
	return n.Pitch == ""
}

// Source yields at most one due note per audio tick.
type Source interface {
	PullDueNote() (Note, bool)
}
