package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Polygon is an ordered sequence of points. Insertion order is significant:
// it defines edge connectivity and the vertex numbering shown to the user.
// The wire format is an array of [x,y] pairs; in persisted zones the pairs
// are normalized to [0,1].
type Polygon []Point

// Closed reports whether the polygon has enough vertices to form a closed
// shape. Self-intersection is deliberately not checked.
func (pg Polygon) Closed() bool {
	return len(pg) >= 3
}

// SignedArea returns the signed area via the shoelace formula. Positive for
// counterclockwise winding.
func (pg Polygon) SignedArea() float64 {
	n := len(pg)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pg[i].X * pg[j].Y
		area -= pg[j].X * pg[i].Y
	}
	return area / 2
}

// Area returns the unsigned area.
func (pg Polygon) Area() float64 {
	return math.Abs(pg.SignedArea())
}

// Centroid returns the vertex average. Good enough for placing labels.
func (pg Polygon) Centroid() Point {
	if len(pg) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range pg {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(pg))
	c.Y /= float64(len(pg))
	return c
}

// Contains reports whether p lies inside the polygon (even-odd rule).
func (pg Polygon) Contains(p Point) bool {
	n := len(pg)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		if (pg[i].Y > p.Y) != (pg[j].Y > p.Y) &&
			p.X < (pg[j].X-pg[i].X)*(p.Y-pg[i].Y)/(pg[j].Y-pg[i].Y)+pg[i].X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Clone returns a copy that shares no storage with the receiver.
func (pg Polygon) Clone() Polygon {
	out := make(Polygon, len(pg))
	copy(out, pg)
	return out
}

// Pairs returns the polygon as [x,y] pairs, the canonical wire format.
func (pg Polygon) Pairs() [][2]float64 {
	pairs := make([][2]float64, len(pg))
	for i, p := range pg {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	return pairs
}

// FromPairs builds a polygon from [x,y] pairs.
func FromPairs(pairs [][2]float64) Polygon {
	pg := make(Polygon, len(pairs))
	for i, pr := range pairs {
		pg[i] = Point{X: pr[0], Y: pr[1]}
	}
	return pg
}

// MarshalJSON encodes the polygon as an array of [x,y] pairs.
func (pg Polygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(pg.Pairs())
}

// UnmarshalJSON accepts an array of [x,y] pairs.
func (pg *Polygon) UnmarshalJSON(data []byte) error {
	var pairs [][]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("polygon must be an array of [x,y] pairs: %w", err)
	}
	out := make(Polygon, 0, len(pairs))
	for i, pr := range pairs {
		if len(pr) != 2 {
			return fmt.Errorf("polygon point %d has %d coordinates, want 2", i, len(pr))
		}
		out = append(out, Point{X: pr[0], Y: pr[1]})
	}
	*pg = out
	return nil
}

// ValidateNormalized checks that every coordinate lies in [0,1].
func (pg Polygon) ValidateNormalized() error {
	for i, p := range pg {
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return fmt.Errorf("point %d (%g, %g) is outside the normalized range [0,1]", i, p.X, p.Y)
		}
	}
	return nil
}
