// Package sequencer converts a recorded capsule path into a loop of note
// circles and plays them back one audio tick at a time.
package sequencer

import (
	"math/rand/v2"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
)

// maxCircles bounds generation on degenerate input.
const maxCircles = 4096

// Circle is one note placed along the path.
type Circle struct {
	// Position is normalized.
	Position geom.Vector
	// Radius is in pixels.
	Radius      float64
	Length      audio.Length
	Pitch       audio.Pitch
	Voice       audio.Voice
	Active      bool
	Remaining   int
	MaxInterval int
}

// Note returns the audio note this circle plays.
func (c Circle) Note(source ecs.EntityId) audio.Note {
	return audio.Note{Pitch: c.Pitch, Length: c.Length, Voice: c.Voice, Source: source}
}

// Recorder captures the path of one capsule, turns it into circles once and
// plays them back in a loop.
type Recorder struct {
	source  ecs.EntityId
	voice   audio.Voice
	palette Palette
	rng     *rand.Rand

	raw      []geom.Vector
	points   []geom.Vector
	circles  []Circle
	cursor   int
	building bool
}

// New creates an empty recorder for the capsule source.
func New(source ecs.EntityId, voice audio.Voice, palette Palette, rng *rand.Rand) *Recorder {
	return &Recorder{
		source:  source,
		voice:   voice,
		palette: palette,
		rng:     rng,
	}
}

// Source returns the capsule this recorder follows.
func (r *Recorder) Source() ecs.EntityId {
	return r.source
}

// Voice returns the voice every circle is assigned.
func (r *Recorder) Voice() audio.Voice {
	return r.voice
}

// SetPalette replaces the palette used by the next build.
func (r *Recorder) SetPalette(p Palette) {
	r.palette = p
}

// RecordPoint appends a normalized position while not building.
func (r *Recorder) RecordPoint(pos geom.Vector) {
	if r.building {
		return
	}
	r.raw = append(r.raw, pos)
}

// BuildIfReady simplifies the raw path and generates circles. It only runs
// once per recording session and reports whether it ran.
func (r *Recorder) BuildIfReady(surface geom.Surface) bool {
	if r.building || len(r.raw) == 0 || len(r.points) > 0 {
		return false
	}

	r.building = true
	r.points = geom.Simplify(r.raw, r.palette.Tolerance, true)
	r.generate(surface)
	return true
}

func (r *Recorder) generate(surface geom.Surface) {
	if len(r.points) < 2 {
		return
	}

	next := 1
	p0 := surface.ToCanvas(r.points[0])
	p1 := surface.ToCanvas(r.points[next])

	for len(r.circles) < maxCircles {
		circle := r.nextCircle()

		pos := geom.Interpolate(p0, p1, step(circle.Radius, geom.Distance(p0, p1)))
		circle.Position = surface.FromCanvas(pos)
		r.circles = append(r.circles, circle)

		for geom.CirclesIntersect(p1, 1, pos, circle.Radius) {
			if next >= len(r.points)-1 {
				return
			}
			next++
			p1 = surface.ToCanvas(r.points[next])
		}

		p0 = geom.Interpolate(pos, p1, step(circle.Radius, geom.Distance(pos, p1)))
	}
}

// step is the interpolation fraction that moves radius pixels along a
// segment of length dist.
func step(radius, dist float64) float64 {
	if dist == 0 {
		return 0
	}
	return radius / dist
}

func (r *Recorder) nextCircle() Circle {
	kind := r.palette.pick(r.voice, r.rng.Float64())

	length := audio.Lengths[r.rng.IntN(len(audio.Lengths))]
	if kind == kindHigh {
		length = audio.Sixteenth
	}

	var pitch audio.Pitch
	switch kind {
	case kindHigh:
		pitch = r.palette.HighNotes[r.rng.IntN(len(r.palette.HighNotes))]
	case kindNormal:
		pitch = r.palette.Notes[r.rng.IntN(len(r.palette.Notes))]
	case kindSilent:
	}

	return Circle{
		Radius:      r.palette.Sizes[length.Index()],
		Length:      length,
		Pitch:       pitch,
		Voice:       r.voice,
		MaxInterval: length.Ticks(),
	}
}

// PullDueNote advances playback by one audio tick. While the previously
// activated circle still has ticks remaining nothing is due; otherwise the
// circle under the cursor is activated and returned.
func (r *Recorder) PullDueNote() (audio.Note, bool) {
	if len(r.circles) == 0 {
		return audio.Note{}, false
	}

	prev := &r.circles[(r.cursor-1+len(r.circles))%len(r.circles)]
	if prev.Active {
		prev.Remaining--
		if prev.Remaining > 0 {
			return audio.Note{}, false
		}
		prev.Active = false
	}

	current := &r.circles[r.cursor]
	current.Active = true
	current.Remaining = current.MaxInterval
	r.cursor = (r.cursor + 1) % len(r.circles)

	return current.Note(r.source), true
}

// ActiveCircle returns the circle currently sounding.
func (r *Recorder) ActiveCircle() (Circle, bool) {
	for _, c := range r.circles {
		if c.Active {
			return c, true
		}
	}
	return Circle{}, false
}

// Reset returns the recorder to the empty state for a new session.
func (r *Recorder) Reset() {
	r.raw = r.raw[:0]
	r.points = nil
	r.circles = nil
	r.cursor = 0
	r.building = false
}

// RawPoints returns the recorded path.
func (r *Recorder) RawPoints() []geom.Vector {
	return r.raw
}

// Points returns the simplified path.
func (r *Recorder) Points() []geom.Vector {
	return r.points
}

// Circles returns the generated circles.
func (r *Recorder) Circles() []Circle {
	return r.circles
}

// Cursor returns the index of the next circle to activate.
func (r *Recorder) Cursor() int {
	return r.cursor
}

// Building reports whether the recorder has been built this session.
func (r *Recorder) Building() bool {
	return r.building
}
