package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Simplify reduces a polyline with the Douglas-Peucker algorithm. Without
// highQuality a radial distance pass runs first, which is faster and coarser.
// The first and last points are always kept and the input is never modified.
func Simplify(points []Vector, tolerance float64, highQuality bool) []Vector {
	if len(points) <= 2 {
		return append([]Vector(nil), points...)
	}

	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = orb.Point{p.X(), p.Y()}
	}

	if !highQuality {
		ls = simplify.Radial(planar.Distance, tolerance).LineString(ls)
	}
	ls = simplify.DouglasPeucker(tolerance).LineString(ls)

	out := make([]Vector, len(ls))
	for i, p := range ls {
		out[i] = Vec(p[0], p[1])
	}
	return out
}
