package audio

import (
	"log/slog"
	"slices"
	"time"

	"github.com/plus3/capsynth/ecs"
)

// DefaultLead is how far after the tick time triggers are scheduled.
const DefaultLead = 50 * time.Millisecond

// Trigger is one batched attack/release for a voice.
type Trigger struct {
	Voice   Voice
	Pitches []Pitch
	Length  Length
	// Tick is the audio clock time of the tick that produced the trigger.
	Tick time.Duration
	// At is the requested fire time, Tick plus the lead.
	At time.Duration
	// Step is the tick interval the lengths are counted in. Zero leaves the
	// sink's configured step in force.
	Step time.Duration
}

// Sink plays triggers.
type Sink interface {
	Play(Trigger) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Trigger) error

func (f SinkFunc) Play(t Trigger) error {
	return f(t)
}

type registeredSource struct {
	id     ecs.EntityId
	source Source
}

// Dispatcher polls every registered source once per audio tick, merges the
// due notes per voice and length and hands one trigger per populated bucket
// to the sink. A pitch already queued at an equal or longer length wins over
// a new shorter one, and a new longer note evicts shorter queued copies.
type Dispatcher struct {
	sink    Sink
	lead    time.Duration
	logger  *slog.Logger
	sources []registeredSource
	buckets map[Voice]*[len(Lengths)][]Pitch

	triggers int64
	notes    int64
}

// NewDispatcher creates a dispatcher writing to sink. A nil logger uses
// slog.Default.
func NewDispatcher(sink Sink, lead time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		sink:    sink,
		lead:    lead,
		logger:  logger,
		buckets: make(map[Voice]*[len(Lengths)][]Pitch),
	}
	for _, v := range Voices {
		d.buckets[v] = &[len(Lengths)][]Pitch{}
	}
	return d
}

// Register adds a source keyed by its owning entity. Sources are polled in
// registration order.
func (d *Dispatcher) Register(id ecs.EntityId, source Source) {
	d.Unregister(id)
	d.sources = append(d.sources, registeredSource{id: id, source: source})
}

// Unregister removes the source for id.
func (d *Dispatcher) Unregister(id ecs.EntityId) {
	d.sources = slices.DeleteFunc(d.sources, func(s registeredSource) bool {
		return s.id == id
	})
}

// Sources returns the number of registered sources.
func (d *Dispatcher) Sources() int {
	return len(d.sources)
}

// Execute runs one audio tick using the frame clock.
func (d *Dispatcher) Execute(frame *ecs.UpdateFrame) {
	d.Tick(frame.Elapsed, time.Duration(frame.DeltaTime*float64(time.Millisecond)))
}

// Tick pulls every source, dedupes and flushes. step is the current tick
// interval and travels with each trigger. It returns the triggers sent.
func (d *Dispatcher) Tick(now, step time.Duration) []Trigger {
	for _, src := range d.sources {
		note, ok := src.source.PullDueNote()
		if !ok || note.Silent() {
			continue
		}
		d.queue(note)
	}

	var sent []Trigger
	for _, voice := range Voices {
		buckets := d.buckets[voice]
		for i, length := range Lengths {
			if len(buckets[i]) == 0 {
				continue
			}

			trigger := Trigger{
				Voice:   voice,
				Pitches: slices.Clone(buckets[i]),
				Length:  length,
				Tick:    now,
				At:      now + d.lead,
				Step:    step,
			}
			buckets[i] = buckets[i][:0]

			if err := d.sink.Play(trigger); err != nil {
				d.logger.Warn("audio sink failed", "voice", voice, "length", length, "error", err)
				continue
			}
			d.triggers++
			d.notes += int64(len(trigger.Pitches))
			sent = append(sent, trigger)
		}
	}
	return sent
}

func (d *Dispatcher) queue(note Note) {
	buckets, ok := d.buckets[note.Voice]
	if !ok {
		d.logger.Warn("note for unknown voice dropped", "voice", note.Voice, "source", note.Source)
		return
	}

	target := note.Length.Index()
	for i := range buckets {
		at := slices.Index(buckets[i], note.Pitch)
		if at < 0 {
			continue
		}
		if i < target {
			buckets[i] = slices.Delete(buckets[i], at, at+1)
			continue
		}
		return
	}
	buckets[target] = append(buckets[target], note.Pitch)
}

// Counts returns how many triggers and pitches reached the sink.
func (d *Dispatcher) Counts() (triggers, notes int64) {
	return d.triggers, d.notes
}
