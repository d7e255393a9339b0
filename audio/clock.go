package audio

import "time"

// DefaultBPM is the tempo of the audio clock.
const DefaultBPM = 120

// StepInterval is the length of one sixteenth note at bpm.
func StepInterval(bpm float64) time.Duration {
	if bpm <= 0 {
		bpm = DefaultBPM
	}
	return time.Duration(float64(time.Minute) / bpm / 4)
}

// Clock converts variable frame deltas into a fixed rate of audio ticks. The
// game loop feeds it elapsed time and runs one audio pass per returned tick,
// which keeps audio polling on the simulation goroutine.
type Clock struct {
	interval time.Duration
	pending  time.Duration
	maxBurst int
}

// NewClock creates a clock ticking every sixteenth note at bpm.
func NewClock(bpm float64) *Clock {
	return &Clock{interval: StepInterval(bpm), maxBurst: 4}
}

// Interval returns the tick spacing.
func (c *Clock) Interval() time.Duration {
	return c.interval
}

// SetTempo changes the tick spacing. Time already accumulated is kept.
func (c *Clock) SetTempo(bpm float64) {
	c.interval = StepInterval(bpm)
}

// Advance adds dt and returns how many ticks are due. After a long stall at
// most a few ticks are returned and the backlog is dropped.
func (c *Clock) Advance(dt time.Duration) int {
	if dt < 0 {
		return 0
	}
	c.pending += dt

	due := int(c.pending / c.interval)
	c.pending -= time.Duration(due) * c.interval
	if due > c.maxBurst {
		due = c.maxBurst
	}
	return due
}
