package input_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/geom"
	"github.com/plus3/capsynth/input"
)

func TestKeyboard(t *testing.T) {
	board := input.NewBoard()
	kb := input.NewKeyboard(board)

	intent, ok := board.Intent(input.KeyboardID)
	require.True(t, ok)
	assert.Equal(t, input.Intent{}, intent)

	kb.Apply(input.ThrustOn)
	kb.Apply(input.RotateLeft)
	intent, _ = board.Intent(input.KeyboardID)
	assert.Equal(t, input.Intent{Thrust: true, Turn: -1}, intent)

	kb.Apply(input.RotateRight)
	kb.Apply(input.ThrustOff)
	assert.Equal(t, input.Intent{Turn: 1}, kb.Intent())

	kb.Apply(input.RotateStop)
	intent, _ = board.Intent(input.KeyboardID)
	assert.Equal(t, input.Intent{}, intent)
	assert.Equal(t, "rotate-stop", input.RotateStop.String())
}

func TestBoard(t *testing.T) {
	board := input.NewBoard()
	board.Publish("a", input.Intent{Thrust: true})

	snap := board.Snapshot()
	board.Publish("b", input.Intent{Turn: 1})
	assert.Len(t, snap, 1, "snapshots are copies")
	assert.Len(t, board.Snapshot(), 2)

	intent, ok := board.Intent("a")
	assert.True(t, ok)
	assert.True(t, intent.Thrust)
	_, ok = board.Intent("c")
	assert.False(t, ok)

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				board.Publish(input.SlotID(i), input.Intent{Turn: float64(i)})
			}
		}()
	}
	wg.Wait()
	assert.Len(t, board.Snapshot(), 6)
}

type lobby struct {
	players []string
	started int
}

func (l *lobby) AddPlayer(id string) { l.players = append(l.players, id) }
func (l *lobby) Start()              { l.started++ }

type feeder struct {
	a     *input.Activation
	start time.Time
	now   time.Duration
}

// hold feeds frames every 20ms until the clock reaches until.
func (f *feeder) hold(until time.Duration, frame input.Frame) {
	for ; f.now <= until; f.now += 20 * time.Millisecond {
		f.a.Step(f.start.Add(f.now), frame)
	}
}

var (
	idle    = input.Frame{}
	pressed = input.Frame{{Pressed: true}}
)

func TestActivation(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("press release hold joins the slot", func(t *testing.T) {
		l := &lobby{}
		board := input.NewBoard()
		a := input.NewActivation(input.DefaultTiming(), l, board, nil)
		assert.Equal(t, input.StateInit, a.State())

		a.Begin(start)
		f := &feeder{a: a, start: start}

		f.hold(200*time.Millisecond, idle)
		f.hold(400*time.Millisecond, pressed)
		f.hold(1000*time.Millisecond, idle)
		assert.Empty(t, l.players, "release hold not reached yet")

		f.hold(1100*time.Millisecond, idle)
		assert.Equal(t, []string{"serial-0"}, l.players)
		assert.True(t, a.Joined(0))
		assert.False(t, a.Joined(1))
		assert.Equal(t, input.StateActivating, a.State())

		f.hold(4000*time.Millisecond, idle)
		assert.Equal(t, input.StateActivating, a.State())
		f.hold(4100*time.Millisecond, idle)
		assert.Equal(t, input.StateReady, a.State())
		assert.Equal(t, 1, l.started)

		f.hold(5000*time.Millisecond, idle)
		assert.Equal(t, 1, l.started)
	})

	t.Run("short presses are ignored", func(t *testing.T) {
		l := &lobby{}
		a := input.NewActivation(input.DefaultTiming(), l, input.NewBoard(), nil)
		a.Begin(start)
		f := &feeder{a: a, start: start}

		f.hold(200*time.Millisecond, idle)
		for range 5 {
			f.hold(f.now+40*time.Millisecond, pressed)
			f.hold(f.now+40*time.Millisecond, idle)
		}
		f.hold(f.now+time.Second, idle)

		assert.Empty(t, l.players)
	})

	t.Run("timeout returns to init", func(t *testing.T) {
		l := &lobby{}
		a := input.NewActivation(input.DefaultTiming(), l, input.NewBoard(), nil)
		a.Begin(start)

		a.Tick(start.Add(9 * time.Second))
		assert.Equal(t, input.StateActivating, a.State())
		a.Tick(start.Add(10 * time.Second))
		assert.Equal(t, input.StateInit, a.State())

		a.Step(start.Add(11*time.Second), pressed)
		assert.Equal(t, input.StateInit, a.State(), "frames are ignored until Begin")
		assert.Zero(t, l.started)
	})

	t.Run("button held at start must be released first", func(t *testing.T) {
		l := &lobby{}
		a := input.NewActivation(input.DefaultTiming(), l, input.NewBoard(), nil)
		a.Begin(start)
		f := &feeder{a: a, start: start}

		f.hold(2*time.Second, pressed)
		f.hold(3*time.Second, idle)
		assert.Empty(t, l.players)

		f.hold(3200*time.Millisecond, pressed)
		f.hold(4000*time.Millisecond, idle)
		assert.Equal(t, []string{"serial-0"}, l.players)
	})

	t.Run("ready publishes debounced intents", func(t *testing.T) {
		l := &lobby{}
		board := input.NewBoard()
		a := input.NewActivation(input.DefaultTiming(), l, board, nil)
		a.Begin(start)
		f := &feeder{a: a, start: start}

		f.hold(200*time.Millisecond, idle)
		f.hold(400*time.Millisecond, pressed)
		f.hold(4200*time.Millisecond, idle)
		require.Equal(t, input.StateReady, a.State())

		f.hold(4300*time.Millisecond, input.Frame{{Pot: 1000}})
		intent, ok := board.Intent("serial-0")
		require.True(t, ok)
		assert.Equal(t, input.Intent{Heading: 1, HasHeading: true}, intent)

		f.hold(4400*time.Millisecond, input.Frame{{Pot: 1040}})
		intent, _ = board.Intent("serial-0")
		assert.Equal(t, 1.0, intent.Heading, "pot jitter is ignored")

		f.hold(4600*time.Millisecond, input.Frame{{Pressed: true, Pot: 1500}})
		intent, _ = board.Intent("serial-0")
		assert.True(t, intent.Thrust)
		assert.Equal(t, 1.5, intent.Heading)

		_, ok = board.Intent("serial-1")
		assert.False(t, ok, "slots that never joined get no intent")
	})

	t.Run("device failure", func(t *testing.T) {
		a := input.NewActivation(input.DefaultTiming(), &lobby{}, input.NewBoard(), nil)
		a.Begin(start)
		a.Fail(errors.New("unplugged"))
		assert.Equal(t, input.StateError, a.State())

		a.Begin(start.Add(time.Second))
		assert.Equal(t, input.StateActivating, a.State())
	})

	t.Run("retry during play keeps joined players", func(t *testing.T) {
		l := &lobby{}
		board := input.NewBoard()
		a := input.NewActivation(input.DefaultTiming(), l, board, nil)
		a.Begin(start)
		f := &feeder{a: a, start: start}

		f.hold(200*time.Millisecond, idle)
		f.hold(400*time.Millisecond, pressed)
		f.hold(4200*time.Millisecond, idle)
		require.Equal(t, input.StateReady, a.State())

		f.hold(4500*time.Millisecond, pressed)
		intent, _ := board.Intent("serial-0")
		require.True(t, intent.Thrust)

		a.Fail(errors.New("unplugged"))
		assert.Equal(t, input.StateError, a.State())
		intent, _ = board.Intent("serial-0")
		assert.False(t, intent.Thrust, "failure clears stale thrust")

		a.Begin(start.Add(f.now))
		assert.Equal(t, input.StateReady, a.State())
		assert.True(t, a.Joined(0))
		assert.Equal(t, 1, a.Confirmed())

		f.hold(5000*time.Millisecond, idle)
		f.hold(5300*time.Millisecond, pressed)
		f.hold(6500*time.Millisecond, idle)
		assert.Equal(t, []string{"serial-0"}, l.players)
		assert.Equal(t, 1, l.started)

		f.hold(6800*time.Millisecond, pressed)
		intent, _ = board.Intent("serial-0")
		assert.True(t, intent.Thrust, "intents flow again after reconnect")
	})

	t.Run("retry during registration resumes it", func(t *testing.T) {
		l := &lobby{}
		a := input.NewActivation(input.DefaultTiming(), l, input.NewBoard(), nil)
		a.Begin(start)
		f := &feeder{a: a, start: start}

		f.hold(200*time.Millisecond, idle)
		f.hold(400*time.Millisecond, pressed)
		f.hold(1100*time.Millisecond, idle)
		require.Equal(t, []string{"serial-0"}, l.players)

		a.Fail(errors.New("unplugged"))
		a.Begin(start.Add(2 * time.Second))
		assert.Equal(t, input.StateActivating, a.State())
		assert.Equal(t, 1, a.Confirmed())

		a.Tick(start.Add(4900 * time.Millisecond))
		assert.Equal(t, input.StateActivating, a.State(), "settle restarts at Begin")
		a.Tick(start.Add(5 * time.Second))
		assert.Equal(t, input.StateReady, a.State())
		assert.Equal(t, []string{"serial-0"}, l.players)
		assert.Equal(t, 1, l.started)
	})
}

type scriptedDevice struct {
	mu     sync.Mutex
	chunks [][]byte
	err    error
	closed bool
}

func (d *scriptedDevice) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.chunks) == 0 {
		if d.err != nil {
			return 0, d.err
		}
		return 0, nil
	}
	n := copy(p, d.chunks[0])
	d.chunks = d.chunks[1:]
	return n, nil
}

func (d *scriptedDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func TestReader(t *testing.T) {
	frame := input.Frame{{Pressed: true, Pot: 42}}
	stream := append([]byte{0x00}, input.AppendFrame(nil, frame)...)

	t.Run("device error stops the reader", func(t *testing.T) {
		dev := &scriptedDevice{chunks: [][]byte{stream[:5], stream[5:]}, err: errors.New("hangup")}
		r := input.NewReader("test", dev, nil)

		err := r.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "hangup")
		assert.True(t, dev.closed)

		sample, ok := r.Samples().Get()
		require.True(t, ok)
		assert.Equal(t, frame, sample.Frame)

		failure, ok := r.Failure().Get()
		require.True(t, ok)
		assert.ErrorContains(t, failure, "read test")
	})

	t.Run("cancellation", func(t *testing.T) {
		dev := &scriptedDevice{}
		r := input.NewReader("test", dev, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, r.Run(ctx))
		assert.True(t, dev.closed)
	})
}

func TestSerialSystem(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := start
	l := &lobby{}
	a := input.NewActivation(input.DefaultTiming(), l, input.NewBoard(), nil)
	samples := ecs.NewSingleton[input.Sample]()
	failure := ecs.NewSingleton[error]()
	sys := input.NewSerialSystem(a, samples, failure, func() time.Time { return clock })

	scheduler := ecs.NewScheduler("serial", nil)
	scheduler.Register(sys)
	a.Begin(start)

	push := func(at time.Duration, f input.Frame) {
		samples.Set(input.Sample{Frame: f, At: start.Add(at)})
		scheduler.Once(20, geom.Surface{})
	}
	for at := time.Duration(0); at <= 200*time.Millisecond; at += 20 * time.Millisecond {
		push(at, idle)
	}
	for at := 220 * time.Millisecond; at <= 400*time.Millisecond; at += 20 * time.Millisecond {
		push(at, pressed)
	}
	for at := 420 * time.Millisecond; at <= 1100*time.Millisecond; at += 20 * time.Millisecond {
		push(at, idle)
	}
	assert.Equal(t, []string{"serial-0"}, l.players)

	clock = start.Add(5 * time.Second)
	scheduler.Once(20, geom.Surface{})
	assert.Equal(t, input.StateReady, a.State())
	assert.Equal(t, 1, l.started)

	failure.Set(errors.New("unplugged"))
	scheduler.Once(20, geom.Surface{})
	assert.Equal(t, input.StateError, a.State())
}
