package sequencer

import "github.com/plus3/capsynth/audio"

// Palette is the note vocabulary used when generating circles.
type Palette struct {
	Notes     []audio.Pitch
	HighNotes []audio.Pitch
	// Sizes holds the circle radius in pixels per length index.
	Sizes [len(audio.Lengths)]float64
	// HighChance is the probability of a high note for the synth voice.
	HighChance float64
	// SilentChance is the probability of a silent circle.
	SilentChance float64
	// Tolerance is the path simplification tolerance in normalized units.
	Tolerance float64
}

// DefaultPalette returns the stock pentatonic-ish palette.
func DefaultPalette() Palette {
	return Palette{
		Notes:        []audio.Pitch{"D4", "F4", "A4", "C5", "E5"},
		HighNotes:    []audio.Pitch{"D7", "F7", "A7", "C7", "E7"},
		Sizes:        [len(audio.Lengths)]float64{16, 18, 22, 30},
		HighChance:   0.04,
		SilentChance: 0.2,
		Tolerance:    0.01,
	}
}

type noteKind uint8

const (
	kindNormal noteKind = iota
	kindSilent
	kindHigh
)

// pick maps one uniform draw to a note kind. High notes take the top of the
// range for the synth voice, silence the band below it.
func (p Palette) pick(voice audio.Voice, r float64) noteKind {
	if voice == audio.VoiceSynth && r > 1-p.HighChance {
		return kindHigh
	}
	if r > 1-p.SilentChance {
		return kindSilent
	}
	return kindNormal
}
