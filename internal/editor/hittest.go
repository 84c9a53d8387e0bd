package editor

import "github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"

// HitRadius is the base pickup distance in canvas pixels.
const HitRadius = 10.0

// ActiveRadiusBonus widens the radius for the point that is already
// hovered or dragged, so the hit state does not flicker at the boundary.
const ActiveRadiusBonus = 4.0

// Nearest returns the index of the closest point within radius of p, or
// -1 and false when no point is close enough. Distances are Euclidean in
// canvas space. Ties keep the first point in iteration order, so results
// are deterministic given insertion order. This is the single predicate
// used for hover detection, click-to-delete targeting, and drag pickup.
func Nearest(p geometry.Point, points geometry.Polygon, radius float64) (int, bool) {
	best := -1
	bestDist := radius
	for i, q := range points {
		d := p.DistanceTo(q)
		if d < bestDist || (best == -1 && d == bestDist) {
			best = i
			bestDist = d
		}
	}
	return best, best != -1
}
