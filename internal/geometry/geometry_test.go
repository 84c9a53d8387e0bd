package geometry

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMapperToCanvas(t *testing.T) {
	m := NewMapper(640, 480)

	// Canvas displayed at half size: pointer coords double into logical space.
	p := m.ToCanvas(160, 120, 320, 240)
	if p.X != 320 || p.Y != 240 {
		t.Errorf("expected (320, 240), got (%g, %g)", p.X, p.Y)
	}

	// Zero rect means no CSS scaling.
	p = m.ToCanvas(100, 100, 0, 0)
	if p.X != 100 || p.Y != 100 {
		t.Errorf("expected (100, 100), got (%g, %g)", p.X, p.Y)
	}
}

func TestNormalizedRoundTrip(t *testing.T) {
	m := NewMapper(640, 480)
	points := []Point{
		{X: 0, Y: 0},
		{X: 640, Y: 480},
		{X: 100.5, Y: 333.33},
		{X: 1, Y: 479},
	}
	for _, p := range points {
		got := m.FromNormalized(m.ToNormalized(p))
		if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
			t.Errorf("round trip of (%g, %g) gave (%g, %g)", p.X, p.Y, got.X, got.Y)
		}
	}
}

func TestFromNormalizedKnownZone(t *testing.T) {
	// Loading a persisted zone into a 640x480 canvas.
	m := NewMapper(640, 480)
	normalized := FromPairs([][2]float64{{0.1, 0.1}, {0.5, 0.1}, {0.5, 0.5}})
	want := []Point{{X: 64, Y: 48}, {X: 320, Y: 48}, {X: 320, Y: 240}}

	for i, n := range normalized {
		got := m.FromNormalized(n)
		if math.Abs(got.X-want[i].X) > 1e-9 || math.Abs(got.Y-want[i].Y) > 1e-9 {
			t.Errorf("point %d: expected (%g, %g), got (%g, %g)", i, want[i].X, want[i].Y, got.X, got.Y)
		}
	}
}

func TestPolygonArea(t *testing.T) {
	// Unit square.
	pg := Polygon{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	if a := pg.Area(); math.Abs(a-1) > 1e-12 {
		t.Errorf("expected area 1, got %g", a)
	}

	// Degenerate polygons have no area.
	if a := (Polygon{{0, 0}, {1, 1}}).Area(); a != 0 {
		t.Errorf("expected area 0 for 2 points, got %g", a)
	}
}

func TestPolygonCentroid(t *testing.T) {
	pg := Polygon{{X: 0, Y: 0}, {X: 6, Y: 0}, {X: 6, Y: 6}, {X: 0, Y: 6}}
	c := pg.Centroid()
	if c.X != 3 || c.Y != 3 {
		t.Errorf("expected centroid (3,3), got %+v", c)
	}

	if c := (Polygon{}).Centroid(); c.X != 0 || c.Y != 0 {
		t.Errorf("expected zero centroid for empty polygon, got %+v", c)
	}
}

func TestPolygonContains(t *testing.T) {
	pg := Polygon{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if !pg.Contains(Point{5, 5}) {
		t.Error("expected (5,5) inside")
	}
	if pg.Contains(Point{15, 5}) {
		t.Error("expected (15,5) outside")
	}
}

func TestPolygonJSON(t *testing.T) {
	pg := Polygon{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}

	data, err := json.Marshal(pg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[[0.1,0.2],[0.3,0.4],[0.5,0.6]]` {
		t.Errorf("unexpected wire format: %s", data)
	}

	var back Polygon
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back) != 3 || back[1] != (Point{0.3, 0.4}) {
		t.Errorf("unexpected round trip: %+v", back)
	}

	// Malformed pairs are rejected.
	if err := json.Unmarshal([]byte(`[[0.1,0.2,0.3]]`), &back); err == nil {
		t.Error("expected error for 3-coordinate point")
	}
}

func TestValidateNormalized(t *testing.T) {
	if err := (Polygon{{0.1, 0.1}, {0.9, 0.9}}).ValidateNormalized(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (Polygon{{1.2, 0.5}}).ValidateNormalized(); err == nil {
		t.Error("expected error for coordinate > 1")
	}
}
