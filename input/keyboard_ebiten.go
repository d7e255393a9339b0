package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PollKeys turns arrow key edges into events. Call it once per ebiten
// Update.
func (k *Keyboard) PollKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		k.Apply(ThrustOn)
	}
	if inpututil.IsKeyJustReleased(ebiten.KeyArrowUp) {
		k.Apply(ThrustOff)
	}

	left := ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	switch {
	case left && !right && k.intent.Turn >= 0:
		k.Apply(RotateLeft)
	case right && !left && k.intent.Turn <= 0:
		k.Apply(RotateRight)
	case left == right && k.intent.Turn != 0:
		k.Apply(RotateStop)
	}
}
