package audio_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
)

// queueSource returns its notes one per pull.
type queueSource struct {
	notes []audio.Note
}

func (q *queueSource) PullDueNote() (audio.Note, bool) {
	if len(q.notes) == 0 {
		return audio.Note{}, false
	}
	n := q.notes[0]
	q.notes = q.notes[1:]
	return n, true
}

type recordingSink struct {
	triggers []audio.Trigger
	err      error
}

func (r *recordingSink) Play(t audio.Trigger) error {
	if r.err != nil {
		return r.err
	}
	r.triggers = append(r.triggers, t)
	return nil
}

func note(p audio.Pitch, l audio.Length, v audio.Voice) audio.Note {
	return audio.Note{Pitch: p, Length: l, Voice: v}
}

func TestDispatcherDedupe(t *testing.T) {
	tests := []struct {
		name  string
		notes []audio.Note
		want  []audio.Trigger
	}{
		{
			name: "longer wins when it comes second",
			notes: []audio.Note{
				note("D4", audio.Sixteenth, audio.VoiceSynth),
				note("D4", audio.Eighth, audio.VoiceSynth),
			},
			want: []audio.Trigger{{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"D4"}, Length: audio.Eighth}},
		},
		{
			name: "longer wins when it comes first",
			notes: []audio.Note{
				note("D4", audio.Eighth, audio.VoiceSynth),
				note("D4", audio.Sixteenth, audio.VoiceSynth),
			},
			want: []audio.Trigger{{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"D4"}, Length: audio.Eighth}},
		},
		{
			name: "equal length is sent once",
			notes: []audio.Note{
				note("A4", audio.Quarter, audio.VoiceBeat),
				note("A4", audio.Quarter, audio.VoiceBeat),
			},
			want: []audio.Trigger{{Voice: audio.VoiceBeat, Pitches: []audio.Pitch{"A4"}, Length: audio.Quarter}},
		},
		{
			name: "voices do not interact",
			notes: []audio.Note{
				note("F4", audio.Half, audio.VoiceBeat),
				note("F4", audio.Sixteenth, audio.VoiceSynth),
			},
			want: []audio.Trigger{
				{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"F4"}, Length: audio.Sixteenth},
				{Voice: audio.VoiceBeat, Pitches: []audio.Pitch{"F4"}, Length: audio.Half},
			},
		},
		{
			name: "chords share a bucket",
			notes: []audio.Note{
				note("C5", audio.Eighth, audio.VoiceSynth),
				note("E5", audio.Eighth, audio.VoiceSynth),
				note("D7", audio.Sixteenth, audio.VoiceSynth),
			},
			want: []audio.Trigger{
				{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"D7"}, Length: audio.Sixteenth},
				{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"C5", "E5"}, Length: audio.Eighth},
			},
		},
		{
			name: "silence is dropped",
			notes: []audio.Note{
				note("", audio.Half, audio.VoiceSynth),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			d := audio.NewDispatcher(sink, audio.DefaultLead, nil)
			for i, n := range tt.notes {
				d.Register(ecs.EntityId(i+1), &queueSource{notes: []audio.Note{n}})
			}

			sent := d.Tick(time.Second, 125*time.Millisecond)

			for i := range tt.want {
				tt.want[i].Tick = time.Second
				tt.want[i].At = time.Second + audio.DefaultLead
				tt.want[i].Step = 125 * time.Millisecond
			}
			assert.Equal(t, tt.want, sink.triggers)
			assert.Equal(t, tt.want, sent)
		})
	}
}

func TestDispatcherFlushesEveryTick(t *testing.T) {
	sink := &recordingSink{}
	d := audio.NewDispatcher(sink, 0, nil)
	src := &queueSource{notes: []audio.Note{
		note("D4", audio.Sixteenth, audio.VoiceBeat),
		note("D4", audio.Sixteenth, audio.VoiceBeat),
	}}
	d.Register(1, src)

	d.Tick(0, 125*time.Millisecond)
	d.Tick(125*time.Millisecond, 125*time.Millisecond)
	d.Tick(250*time.Millisecond, 100*time.Millisecond)

	require.Len(t, sink.triggers, 2)
	assert.Equal(t, 125*time.Millisecond, sink.triggers[1].At)
	assert.Equal(t, 125*time.Millisecond, sink.triggers[1].Step)

	triggers, notes := d.Counts()
	assert.Equal(t, int64(2), triggers)
	assert.Equal(t, int64(2), notes)
}

func TestDispatcherStepFromScheduler(t *testing.T) {
	sink := &recordingSink{}
	d := audio.NewDispatcher(sink, 0, nil)
	d.Register(1, &queueSource{notes: []audio.Note{
		note("D4", audio.Sixteenth, audio.VoiceSynth),
		note("F4", audio.Sixteenth, audio.VoiceSynth),
	}})

	scheduler := ecs.NewScheduler("audio", nil)
	scheduler.Register(d)
	surface := geom.Surface{Width: 100, Height: 100}

	scheduler.Once(125, surface)
	scheduler.Once(100, surface)

	require.Len(t, sink.triggers, 2)
	assert.Equal(t, 125*time.Millisecond, sink.triggers[0].Step)
	assert.Equal(t, 100*time.Millisecond, sink.triggers[1].Step, "tempo change reaches the sink")
}

func TestDispatcherRegistration(t *testing.T) {
	sink := &recordingSink{}
	d := audio.NewDispatcher(sink, 0, nil)

	d.Register(1, &queueSource{notes: []audio.Note{note("D4", audio.Half, audio.VoiceSynth)}})
	d.Register(1, &queueSource{notes: []audio.Note{note("E5", audio.Half, audio.VoiceSynth)}})
	d.Register(2, &queueSource{})
	assert.Equal(t, 2, d.Sources())

	d.Tick(0, 0)
	require.Len(t, sink.triggers, 1)
	assert.Equal(t, []audio.Pitch{"E5"}, sink.triggers[0].Pitches)

	d.Unregister(1)
	d.Unregister(2)
	assert.Equal(t, 0, d.Sources())
}

func TestDispatcherSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("port closed")}
	d := audio.NewDispatcher(sink, 0, nil)
	d.Register(1, &queueSource{notes: []audio.Note{note("D4", audio.Half, audio.VoiceSynth)}})

	assert.NotPanics(t, func() { d.Tick(0, 0) })
	triggers, _ := d.Counts()
	assert.Equal(t, int64(0), triggers)
}

func TestPitch(t *testing.T) {
	tests := []struct {
		pitch audio.Pitch
		key   int
		freq  float64
	}{
		{"A4", 69, 440},
		{"C4", 60, 261.6256},
		{"D4", 62, 293.6648},
		{"E5", 76, 659.2551},
		{"C7", 96, 2093.0045},
		{"F#3", 54, 184.9972},
		{"Bb2", 46, 116.5409},
	}
	for _, tt := range tests {
		t.Run(string(tt.pitch), func(t *testing.T) {
			key, err := tt.pitch.MIDIKey()
			require.NoError(t, err)
			assert.Equal(t, tt.key, key)

			freq, err := tt.pitch.Frequency()
			require.NoError(t, err)
			assert.InDelta(t, tt.freq, freq, 1e-3)
		})
	}

	for _, bad := range []audio.Pitch{"", "H4", "D", "Dx"} {
		_, err := bad.MIDIKey()
		assert.Error(t, err, "pitch %q", bad)
	}
}

func TestLength(t *testing.T) {
	assert.Equal(t, []int{1, 2, 4, 8}, []int{
		audio.Sixteenth.Ticks(), audio.Eighth.Ticks(), audio.Quarter.Ticks(), audio.Half.Ticks(),
	})
	assert.Equal(t, "8n", audio.Eighth.String())
	assert.Equal(t, 500*time.Millisecond, audio.Quarter.Duration(125*time.Millisecond))

	v, err := audio.ParseVoice("synth")
	require.NoError(t, err)
	assert.Equal(t, audio.VoiceSynth, v)
	_, err = audio.ParseVoice("bass")
	assert.Error(t, err)
}

func TestClock(t *testing.T) {
	assert.Equal(t, 125*time.Millisecond, audio.StepInterval(120))
	assert.Equal(t, 125*time.Millisecond, audio.StepInterval(0))

	clock := audio.NewClock(120)
	ticks := 0
	for range 60 {
		ticks += clock.Advance(16667 * time.Microsecond)
	}
	assert.Equal(t, 8, ticks)

	assert.Equal(t, 0, clock.Advance(-time.Second))
	assert.Equal(t, 4, clock.Advance(10*time.Second))
	assert.Equal(t, 0, clock.Advance(time.Millisecond))

	clock.SetTempo(60)
	assert.Equal(t, 250*time.Millisecond, clock.Interval())
}
