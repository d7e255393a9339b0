// Package render turns the simulation into flat draw lists and paints them
// with ebiten.
package render

import (
	"image/color"

	"golang.org/x/image/colornames"

	"github.com/plus3/capsynth/audio"
	"github.com/plus3/capsynth/ecs"
	"github.com/plus3/capsynth/game"
	"github.com/plus3/capsynth/geom"
)

// Disc is a circle in canvas pixels.
type Disc struct {
	Center geom.Vector
	Radius float64
	Filled bool
	Color  color.RGBA
}

// Segment is a line in canvas pixels.
type Segment struct {
	From, To geom.Vector
	Width    float64
	Color    color.RGBA
}

// Scene is everything drawn for one frame, back to front.
type Scene struct {
	Discs    []Disc
	Segments []Segment
	HUD      []string
}

var (
	Background = colornames.Black
	wallColor  = colornames.Dimgray
	pathColor  = colornames.Lightgrey
	playerTint = colornames.White
	headTint   = colornames.Yellow

	voiceColors = map[audio.Voice]color.RGBA{
		audio.VoiceSynth: colornames.Mediumpurple,
		audio.VoiceBeat:  colornames.Darkorange,
	}
	phaseColors = map[game.Phase]color.RGBA{
		game.PhasePre:      colornames.Steelblue,
		game.PhaseActive:   colornames.Crimson,
		game.PhaseEnd:      colornames.Gold,
		game.PhaseSequence: colornames.Seagreen,
	}
)

// headingLength is the heading indicator length as a multiple of the player
// radius.
const headingLength = 1.8

// Build collects the draw list for sim on surface. Walls come first, then
// recorder paths and circles, then capsules and finally players.
func Build(sim *game.Sim, surface geom.Surface, hud ...string) Scene {
	var sc Scene
	sc.HUD = hud
	if !surface.Valid() {
		return sc
	}

	w := sim.World
	at := func(id ecs.EntityId) (geom.Vector, bool) {
		pos, ok := sim.Physical.PositionOf(id)
		if !ok {
			return geom.Vector{}, false
		}
		return surface.ToCanvas(pos), true
	}

	for id, wall := range w.Walls.Iter() {
		if c, ok := at(id); ok {
			sc.Discs = append(sc.Discs, Disc{Center: c, Radius: wall.Radius, Filled: true, Color: wallColor})
		}
	}

	for _, rec := range w.Recorders.Iter() {
		r := *rec
		raw := r.RawPoints()
		if len(r.Circles()) == 0 {
			for i := 1; i < len(raw); i++ {
				sc.Segments = append(sc.Segments, Segment{
					From:  surface.ToCanvas(raw[i-1]),
					To:    surface.ToCanvas(raw[i]),
					Width: 1,
					Color: pathColor,
				})
			}
			continue
		}
		for _, c := range r.Circles() {
			col := voiceColors[c.Voice]
			if c.Pitch == "" {
				col = pathColor
			}
			sc.Discs = append(sc.Discs, Disc{
				Center: surface.ToCanvas(c.Position),
				Radius: c.Radius,
				Filled: c.Active,
				Color:  col,
			})
		}
	}

	for id, capsule := range w.Capsules.Iter() {
		if c, ok := at(id); ok {
			sc.Discs = append(sc.Discs, Disc{Center: c, Radius: capsule.Radius, Color: phaseColors[capsule.Phase]})
		}
	}

	for id, player := range w.Players.Iter() {
		c, ok := at(id)
		if !ok {
			continue
		}
		sc.Discs = append(sc.Discs, Disc{Center: c, Radius: player.Radius, Filled: !player.Docked(), Color: playerTint})

		tip := c.Add(geom.Heading(player.Rotation).Mul(player.Radius * headingLength))
		sc.Segments = append(sc.Segments, Segment{From: c, To: tip, Width: 2, Color: headTint})
	}

	return sc
}
