package input

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// State is the controller session state.
type State uint8

const (
	// StateInit waits for Begin.
	StateInit State = iota
	// StateActivating accepts controller confirmations.
	StateActivating
	// StateReady means registration is closed and play runs.
	StateReady
	// StateError means the device failed. Begin retries, keeping the slots
	// that already joined.
	StateError
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateActivating:
		return "activating"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Timing holds the activation protocol constants.
type Timing struct {
	// Debounce is how long a button level must hold before it counts.
	Debounce time.Duration
	// ReleaseHold is how long the button must stay up after the press.
	ReleaseHold time.Duration
	// Timeout aborts activation when nobody confirms.
	Timeout time.Duration
	// Settle keeps registration open after the first confirmation.
	Settle time.Duration
	// PotThreshold ignores pot changes smaller than this many units.
	PotThreshold uint16
}

// DefaultTiming returns the stock protocol constants.
func DefaultTiming() Timing {
	return Timing{
		Debounce:     100 * time.Millisecond,
		ReleaseHold:  500 * time.Millisecond,
		Timeout:      10 * time.Second,
		Settle:       3 * time.Second,
		PotThreshold: 50,
	}
}

// Lobby is told about joining controllers and the start of play.
type Lobby interface {
	AddPlayer(inputID string)
	Start()
}

// SlotID is the input id of a serial controller slot.
func SlotID(slot int) string {
	return "serial-" + strconv.Itoa(slot)
}

type slotPhase uint8

const (
	phaseUnknown slotPhase = iota
	phaseArmed
	phasePressed
	phaseReleased
	phaseConfirmed
)

type slot struct {
	raw        bool
	rawSince   time.Time
	stable     bool
	seen       bool
	phase      slotPhase
	releasedAt time.Time
	pot        uint16
	potSeen    bool
}

// debounce feeds one raw sample and reports whether the stable level changed.
func (s *slot) debounce(now time.Time, pressed bool, window time.Duration) bool {
	if !s.seen {
		s.seen = true
		s.raw = pressed
		s.rawSince = now
		return false
	}
	if pressed != s.raw {
		s.raw = pressed
		s.rawSince = now
		return false
	}
	if s.raw != s.stable && now.Sub(s.rawSince) >= window {
		s.stable = s.raw
		return true
	}
	return false
}

// Activation runs the controller registration protocol. A slot joins after
// its button is seen up, pressed and released (each level held for the
// debounce window) and then left up for ReleaseHold. Nobody joining within
// Timeout aborts back to StateInit; Settle after the first join the
// registration closes and Lobby.Start is called.
type Activation struct {
	timing Timing
	lobby  Lobby
	board  *Board
	logger *slog.Logger

	state        State
	playing      bool
	began        time.Time
	firstConfirm time.Time
	confirmed    int
	slots        [Slots]slot
}

// NewActivation creates the protocol in StateInit.
func NewActivation(timing Timing, lobby Lobby, board *Board, logger *slog.Logger) *Activation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Activation{timing: timing, lobby: lobby, board: board, logger: logger}
}

// State returns the current state.
func (a *Activation) State() State {
	return a.state
}

// Confirmed returns how many slots have joined.
func (a *Activation) Confirmed() int {
	return a.confirmed
}

// Joined reports whether slot i has joined.
func (a *Activation) Joined(i int) bool {
	return i >= 0 && i < Slots && a.slots[i].phase == phaseConfirmed
}

// SetTiming replaces the protocol constants.
func (a *Activation) SetTiming(t Timing) {
	a.timing = t
}

// Begin opens registration. It is ignored once play runs. After a device
// failure joined slots stay joined: a session that was playing returns to
// StateReady, one that was registering reopens with a fresh settle window.
func (a *Activation) Begin(now time.Time) {
	switch {
	case a.state == StateReady || a.state == StateActivating:
		return
	case a.state == StateError && a.confirmed > 0:
		a.rearm()
		if a.playing {
			a.state = StateReady
			a.logger.Info("controller device reconnected", "players", a.confirmed)
			return
		}
		a.state = StateActivating
		a.began = now
		a.firstConfirm = now
		a.logger.Info("controller activation resumed", "players", a.confirmed)
		return
	}
	a.reset()
	a.state = StateActivating
	a.began = now
	a.logger.Info("controller activation started")
}

// Fail moves to StateError after a device problem. Joined controllers get a
// neutral intent so nobody keeps thrusting on a stale frame.
func (a *Activation) Fail(err error) {
	if a.state == StateError {
		return
	}
	a.state = StateError
	a.logger.Error("controller device failed", "error", err)
	for i := range a.slots {
		if a.slots[i].phase == phaseConfirmed {
			a.board.Publish(SlotID(i), Intent{})
		}
	}
}

func (a *Activation) reset() {
	a.slots = [Slots]slot{}
	a.confirmed = 0
	a.firstConfirm = time.Time{}
	a.playing = false
}

// rearm drops the sampled levels of every slot but keeps joined slots joined.
func (a *Activation) rearm() {
	for i := range a.slots {
		joined := a.slots[i].phase == phaseConfirmed
		a.slots[i] = slot{}
		if joined {
			a.slots[i].phase = phaseConfirmed
		}
	}
}

// Step feeds one frame sampled at now.
func (a *Activation) Step(now time.Time, frame Frame) {
	switch a.state {
	case StateInit, StateError:
		return
	case StateActivating:
		a.activate(now, frame)
	case StateReady:
		a.publish(now, frame)
	default:
		panic(fmt.Sprintf("input: unknown activation state %d", a.state))
	}
}

// Tick advances the timers without a new frame.
func (a *Activation) Tick(now time.Time) {
	if a.state != StateActivating {
		return
	}
	a.checkTimers(now)
}

func (a *Activation) activate(now time.Time, frame Frame) {
	for i := range a.slots {
		s := &a.slots[i]
		changed := s.debounce(now, frame[i].Pressed, a.timing.Debounce)
		a.advanceSlot(i, s, now, changed)
	}
	a.checkTimers(now)
}

func (a *Activation) advanceSlot(i int, s *slot, now time.Time, changed bool) {
	switch s.phase {
	case phaseUnknown:
		if !s.stable && now.Sub(s.rawSince) >= a.timing.Debounce && !s.raw {
			s.phase = phaseArmed
		}
	case phaseArmed:
		if changed && s.stable {
			s.phase = phasePressed
		}
	case phasePressed:
		if changed && !s.stable {
			s.phase = phaseReleased
			s.releasedAt = now
		}
	case phaseReleased:
		if s.stable {
			s.phase = phasePressed
			return
		}
		if !s.raw {
			if now.Sub(s.releasedAt) >= a.timing.ReleaseHold {
				a.confirm(i, now)
			}
		}
	case phaseConfirmed:
	}
}

func (a *Activation) confirm(i int, now time.Time) {
	a.slots[i].phase = phaseConfirmed
	a.confirmed++
	if a.firstConfirm.IsZero() {
		a.firstConfirm = now
	}

	id := SlotID(i)
	a.logger.Info("controller joined", "input", id)
	a.board.Publish(id, Intent{})
	a.lobby.AddPlayer(id)
}

func (a *Activation) checkTimers(now time.Time) {
	if a.confirmed == 0 {
		if now.Sub(a.began) >= a.timing.Timeout {
			a.logger.Warn("controller activation timed out", "after", a.timing.Timeout)
			a.reset()
			a.state = StateInit
		}
		return
	}
	if now.Sub(a.firstConfirm) >= a.timing.Settle {
		a.state = StateReady
		a.playing = true
		a.logger.Info("controller registration closed", "players", a.confirmed)
		a.lobby.Start()
	}
}

// publish turns frames into intents for joined slots.
func (a *Activation) publish(now time.Time, frame Frame) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.phase != phaseConfirmed {
			continue
		}
		s.debounce(now, frame[i].Pressed, a.timing.Debounce)

		pot := frame[i].Pot
		if !s.potSeen || absDiff(pot, s.pot) >= a.timing.PotThreshold {
			s.pot = pot
			s.potSeen = true
		}

		a.board.Publish(SlotID(i), Intent{
			Thrust:     s.stable,
			Heading:    Reading{Pot: s.pot}.Heading(),
			HasHeading: true,
		})
	}
}

func absDiff(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}
