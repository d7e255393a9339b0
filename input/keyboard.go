package input

import "strconv"

// KeyboardID is the input id of the single keyboard player.
const KeyboardID = "keyboard"

// KeyEvent is a discrete keyboard signal.
type KeyEvent uint8

const (
	ThrustOn KeyEvent = iota
	ThrustOff
	RotateLeft
	RotateRight
	RotateStop
)

func (e KeyEvent) String() string {
	switch e {
	case ThrustOn:
		return "thrust-on"
	case ThrustOff:
		return "thrust-off"
	case RotateLeft:
		return "rotate-left"
	case RotateRight:
		return "rotate-right"
	case RotateStop:
		return "rotate-stop"
	default:
		return "key(" + strconv.Itoa(int(e)) + ")"
	}
}

// Keyboard folds key events into an intent and publishes it.
type Keyboard struct {
	id     string
	board  *Board
	intent Intent
}

// NewKeyboard creates a keyboard publishing to board under KeyboardID.
func NewKeyboard(board *Board) *Keyboard {
	k := &Keyboard{id: KeyboardID, board: board}
	board.Publish(k.id, k.intent)
	return k
}

// Apply updates the intent with one event.
func (k *Keyboard) Apply(ev KeyEvent) {
	switch ev {
	case ThrustOn:
		k.intent.Thrust = true
	case ThrustOff:
		k.intent.Thrust = false
	case RotateLeft:
		k.intent.Turn = -1
	case RotateRight:
		k.intent.Turn = 1
	case RotateStop:
		k.intent.Turn = 0
	}
	k.board.Publish(k.id, k.intent)
}

// Intent returns the current intent.
func (k *Keyboard) Intent() Intent {
	return k.intent
}
