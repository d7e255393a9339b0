package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	strokeWidth = 2
	hudLine     = 16
)

// Draw paints sc onto screen.
func Draw(screen *ebiten.Image, sc Scene) {
	screen.Fill(Background)

	for _, seg := range sc.Segments {
		if seg.Width > 1 {
			continue
		}
		vector.StrokeLine(screen,
			float32(seg.From.X()), float32(seg.From.Y()),
			float32(seg.To.X()), float32(seg.To.Y()),
			float32(seg.Width), seg.Color, true)
	}

	for _, d := range sc.Discs {
		cx, cy, r := float32(d.Center.X()), float32(d.Center.Y()), float32(d.Radius)
		if d.Filled {
			vector.DrawFilledCircle(screen, cx, cy, r, d.Color, true)
		} else {
			vector.StrokeCircle(screen, cx, cy, r, strokeWidth, d.Color, true)
		}
	}

	// Heading indicators go over the bodies.
	for _, seg := range sc.Segments {
		if seg.Width <= 1 {
			continue
		}
		vector.StrokeLine(screen,
			float32(seg.From.X()), float32(seg.From.Y()),
			float32(seg.To.X()), float32(seg.To.Y()),
			float32(seg.Width), seg.Color, true)
	}

	for i, line := range sc.HUD {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+i*hudLine)
	}
}
