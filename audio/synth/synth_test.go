package synth

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/capsynth/audio"
)

func drain(t *testing.T, s beep.Streamer) [][2]float64 {
	t.Helper()
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
		require.Less(t, len(out), 10*int(DefaultSampleRate), "streamer never ended")
	}
	require.NoError(t, s.Err())
	return out
}

func peak(samples [][2]float64) float64 {
	m := 0.0
	for _, s := range samples {
		m = math.Max(m, math.Abs(s[0]))
	}
	return m
}

func TestOscillator(t *testing.T) {
	rate := beep.SampleRate(44100)

	t.Run("triangle stays in range", func(t *testing.T) {
		osc := &oscillator{freq: 220, duration: rate.N(50 * time.Millisecond), wave: waveTriangle, rate: rate}
		samples := drain(t, osc)
		assert.Len(t, samples, rate.N(50*time.Millisecond))
		for i, s := range samples {
			assert.LessOrEqual(t, math.Abs(s[0]), 1.0, "sample %d", i)
			assert.Equal(t, s[0], s[1])
		}
	})

	t.Run("finished oscillator streams nothing", func(t *testing.T) {
		osc := &oscillator{freq: 440, duration: 10, wave: waveSine, rate: rate}
		drain(t, osc)
		n, ok := osc.Stream(make([][2]float64, 4))
		assert.Zero(t, n)
		assert.False(t, ok)
	})

	t.Run("sweep starts high", func(t *testing.T) {
		plain := &oscillator{freq: 50, duration: 200, wave: waveSine, rate: rate}
		swept := &oscillator{freq: 50, duration: 200, wave: waveSine, rate: rate, sweep: 8, sweepTau: 1000}
		drain(t, plain)
		drain(t, swept)
		assert.NotEqual(t, plain.phase, swept.phase)
	})
}

func TestEnvelope(t *testing.T) {
	rate := beep.SampleRate(44100)
	dur := 100 * time.Millisecond
	osc := &oscillator{freq: 100, duration: rate.N(dur), wave: waveTriangle, rate: rate}
	env := newEnvelope(osc, dur, 20*time.Millisecond, 20*time.Millisecond, rate)

	samples := drain(t, env)
	require.Len(t, samples, rate.N(dur))
	assert.Zero(t, samples[0][0])

	tail := samples[len(samples)-rate.N(2*time.Millisecond):]
	assert.Less(t, peak(tail), 0.15)
}

func TestRender(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRate = 8000
	s := New(cfg)
	step := cfg.Step

	t.Run("lead then note", func(t *testing.T) {
		st, err := s.Render(audio.Trigger{
			Voice:   audio.VoiceSynth,
			Pitches: []audio.Pitch{"D4"},
			Length:  audio.Eighth,
			Tick:    time.Second,
			At:      time.Second + audio.DefaultLead,
		})
		require.NoError(t, err)

		samples := drain(t, st)
		lead := cfg.SampleRate.N(audio.DefaultLead)
		assert.Len(t, samples, lead+cfg.SampleRate.N(audio.Eighth.Duration(step)))
		assert.Zero(t, peak(samples[:lead]))
		assert.Greater(t, peak(samples[lead:]), 0.0)
	})

	t.Run("trigger step overrides the configured one", func(t *testing.T) {
		st, err := s.Render(audio.Trigger{
			Voice:   audio.VoiceSynth,
			Pitches: []audio.Pitch{"D4"},
			Length:  audio.Quarter,
			Step:    100 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Len(t, drain(t, st), cfg.SampleRate.N(400*time.Millisecond))
	})

	t.Run("chord is normalized", func(t *testing.T) {
		st, err := s.Render(audio.Trigger{
			Voice:   audio.VoiceBeat,
			Pitches: []audio.Pitch{"D4", "F4", "A4"},
			Length:  audio.Quarter,
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, peak(drain(t, st)), 1.0)
	})

	t.Run("bad pitch", func(t *testing.T) {
		_, err := s.Render(audio.Trigger{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"H9"}})
		assert.Error(t, err)
	})

	t.Run("empty trigger", func(t *testing.T) {
		_, err := s.Render(audio.Trigger{Voice: audio.VoiceSynth})
		assert.Error(t, err)
	})

	t.Run("unknown voice", func(t *testing.T) {
		_, err := s.Render(audio.Trigger{Voice: audio.Voice(9), Pitches: []audio.Pitch{"D4"}})
		assert.Error(t, err)
	})
}

func TestPlayWithoutDevice(t *testing.T) {
	s := New(DefaultConfig())

	var sink audio.Sink = s
	require.NoError(t, sink.Play(audio.Trigger{Voice: audio.VoiceSynth, Pitches: []audio.Pitch{"A4"}, Length: audio.Sixteenth}))
	require.NoError(t, sink.Play(audio.Trigger{Voice: audio.VoiceBeat, Pitches: []audio.Pitch{"C5"}, Length: audio.Half}))
	assert.Equal(t, 2, s.Pending())

	// The mixer drops streamers once they finish.
	buf := make([][2]float64, DefaultSampleRate.N(2*time.Second))
	s.Mixer().Stream(buf)
	assert.Equal(t, 0, s.Pending())
}
