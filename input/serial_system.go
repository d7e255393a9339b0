package input

import (
	"time"

	"github.com/plus3/capsynth/ecs"
)

// SerialSystem feeds the newest serial sample into the activation protocol
// once per simulation tick.
type SerialSystem struct {
	activation *Activation
	samples    *ecs.Singleton[Sample]
	failure    *ecs.Singleton[error]
	now        func() time.Time

	seen       uint64
	seenFailed uint64
}

// NewSerialSystem creates the system. now may be nil for time.Now.
func NewSerialSystem(activation *Activation, samples *ecs.Singleton[Sample], failure *ecs.Singleton[error], now func() time.Time) *SerialSystem {
	if now == nil {
		now = time.Now
	}
	return &SerialSystem{
		activation: activation,
		samples:    samples,
		failure:    failure,
		now:        now,
	}
}

// Rebind points the system at a new reader's cells, used after a retry.
func (s *SerialSystem) Rebind(samples *ecs.Singleton[Sample], failure *ecs.Singleton[error]) {
	s.samples = samples
	s.failure = failure
	s.seen = 0
	s.seenFailed = 0
}

func (s *SerialSystem) Execute(frame *ecs.UpdateFrame) {
	if s.failure != nil && s.failure.Version() != s.seenFailed {
		s.seenFailed = s.failure.Version()
		if err, ok := s.failure.Get(); ok && err != nil {
			s.activation.Fail(err)
		}
	}

	if s.samples != nil && s.samples.Version() != s.seen {
		s.seen = s.samples.Version()
		if sample, ok := s.samples.Get(); ok {
			s.activation.Step(sample.At, sample.Frame)
			return
		}
	}
	s.activation.Tick(s.now())
}
