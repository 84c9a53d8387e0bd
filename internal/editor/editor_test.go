package editor

import (
	"math"
	"testing"
	"time"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/models"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	m := NewManager(640, 480)
	s, err := m.Open(nil, nil)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}

func click(s *Session, x, y float64) State {
	return s.Pointer(PointerEvent{Type: PointerClick, X: x, Y: y})
}

func TestAppendPreservesOrder(t *testing.T) {
	store := NewPointStore(nil)
	input := []geometry.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}, {X: 7, Y: 8}}
	for _, p := range input {
		store.Append(p)
	}

	if store.Len() != len(input) {
		t.Fatalf("expected %d points, got %d", len(input), store.Len())
	}
	for i, p := range input {
		if store.At(i) != p {
			t.Errorf("point %d: expected %+v, got %+v", i, p, store.At(i))
		}
	}
}

func TestRemoveThenAppend(t *testing.T) {
	store := NewPointStore(geometry.Polygon{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}})
	before := store.Len()

	store.RemoveAt(1)
	last := geometry.Point{X: 99, Y: 99}
	store.Append(last)

	if store.Len() != before {
		t.Errorf("expected length %d, got %d", before, store.Len())
	}
	if store.At(store.Len()-1) != last {
		t.Errorf("expected appended point last, got %+v", store.At(store.Len()-1))
	}
}

func TestRemoveAtOutOfRangeIsNoop(t *testing.T) {
	store := NewPointStore(geometry.Polygon{{X: 1, Y: 1}})
	store.RemoveAt(-1)
	store.RemoveAt(5)
	if store.Len() != 1 {
		t.Errorf("expected 1 point, got %d", store.Len())
	}
}

func TestNearestExactAndMiss(t *testing.T) {
	poly := geometry.Polygon{{X: 100, Y: 100}, {X: 200, Y: 100}, {X: 200, Y: 200}}

	// A query exactly at a point always hits that point.
	for i, p := range poly {
		got, ok := Nearest(p, poly, HitRadius)
		if !ok || got != i {
			t.Errorf("query at point %d: got (%d, %v)", i, got, ok)
		}
	}

	// Farther than the radius from everything: no hit.
	if _, ok := Nearest(geometry.Point{X: 500, Y: 400}, poly, HitRadius); ok {
		t.Error("expected no hit far from all points")
	}
}

func TestNearestTieBreakFirstWins(t *testing.T) {
	// Two points equidistant from the query; the earlier index wins.
	poly := geometry.Polygon{{X: 95, Y: 100}, {X: 105, Y: 100}}
	got, ok := Nearest(geometry.Point{X: 100, Y: 100}, poly, HitRadius)
	if !ok || got != 0 {
		t.Errorf("expected index 0, got (%d, %v)", got, ok)
	}
}

func TestValidationMessages(t *testing.T) {
	tests := []struct {
		count  int
		valid  bool
		status string
	}{
		{0, false, "need 3 more points"},
		{1, false, "need 2 more points"},
		{2, false, "need 1 more point"},
		{3, true, "valid polygon with 3 points"},
		{7, true, "valid polygon with 7 points"},
	}
	for _, tt := range tests {
		v := Validate(tt.count)
		if v.Valid != tt.valid || v.Status != tt.status || v.PointCount != tt.count {
			t.Errorf("Validate(%d) = %+v", tt.count, v)
		}
	}
}

func TestSavableNeedsName(t *testing.T) {
	v := Validate(3)
	if Savable(v, "") || Savable(v, "   ") {
		t.Error("blank names must block save")
	}
	if !Savable(v, "entrance") {
		t.Error("expected savable with valid polygon and name")
	}
	if Savable(Validate(2), "entrance") {
		t.Error("invalid polygon must block save")
	}
}

func TestClickAppendsOnlyOnEmptySpace(t *testing.T) {
	s := newTestSession(t)

	st := click(s, 100, 100)
	if len(st.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(st.Points))
	}

	// Clicking on top of the existing point must not append another.
	st = click(s, 102, 101)
	if len(st.Points) != 1 {
		t.Errorf("expected click on a point to be ignored, got %d points", len(st.Points))
	}
}

func TestDragChangesOnlyPickedPoint(t *testing.T) {
	s := newTestSession(t)
	click(s, 100, 100)
	click(s, 200, 100)
	click(s, 200, 200)

	// Hover point 1, pick it up, drag it around.
	s.Pointer(PointerEvent{Type: PointerMove, X: 200, Y: 100})
	st := s.Pointer(PointerEvent{Type: PointerDown, X: 200, Y: 100})
	if st.Interaction.Phase != PhaseDragging || st.Interaction.Index != 1 {
		t.Fatalf("expected dragging index 1, got %+v", st.Interaction)
	}

	for _, target := range []geometry.Point{{X: 250, Y: 120}, {X: 300, Y: 160}, {X: 310, Y: 90}} {
		st = s.Pointer(PointerEvent{Type: PointerMove, X: target.X, Y: target.Y})
		if len(st.Points) != 3 {
			t.Fatalf("length changed during drag: %d", len(st.Points))
		}
		if st.Points[1] != target {
			t.Errorf("expected dragged point at %+v, got %+v", target, st.Points[1])
		}
		if st.Points[0] != (geometry.Point{X: 100, Y: 100}) || st.Points[2] != (geometry.Point{X: 200, Y: 200}) {
			t.Errorf("untouched points moved: %+v", st.Points)
		}
	}

	st = s.Pointer(PointerEvent{Type: PointerUp, X: 310, Y: 90})
	if st.Interaction.Phase == PhaseDragging {
		t.Errorf("expected drag to end on pointer up, got %+v", st.Interaction)
	}
}

func TestHoverTransitions(t *testing.T) {
	s := newTestSession(t)
	click(s, 100, 100)

	st := s.Pointer(PointerEvent{Type: PointerMove, X: 104, Y: 103})
	if st.Interaction.Phase != PhaseHovering || st.Interaction.Index != 0 {
		t.Fatalf("expected hovering index 0, got %+v", st.Interaction)
	}

	// Just past the base radius but inside the widened one: hover sticks.
	st = s.Pointer(PointerEvent{Type: PointerMove, X: 100, Y: 112})
	if st.Interaction.Phase != PhaseHovering {
		t.Errorf("expected hover to persist inside widened radius, got %+v", st.Interaction)
	}

	st = s.Pointer(PointerEvent{Type: PointerMove, X: 300, Y: 300})
	if st.Interaction.Phase != PhaseIdle {
		t.Errorf("expected idle far from points, got %+v", st.Interaction)
	}
}

func TestFreshSessionStartsIdle(t *testing.T) {
	s := newTestSession(t)

	if st := s.State(); st.Interaction.Phase != PhaseIdle {
		t.Fatalf("expected new session idle, got %q", st.Interaction.Phase)
	}

	// The first click must land without any prior pointer movement.
	if st := click(s, 100, 100); len(st.Points) != 1 {
		t.Fatalf("expected first click to add a point, got %d", len(st.Points))
	}
}

func TestEndToEndDrawAndDelete(t *testing.T) {
	s := newTestSession(t)

	click(s, 100, 100)
	click(s, 200, 100)
	st := click(s, 200, 200)

	if len(st.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(st.Points))
	}
	if !st.Validity.Valid || st.Validity.Status != "valid polygon with 3 points" {
		t.Errorf("unexpected validity: %+v", st.Validity)
	}

	// Right-click near the second point deletes it and emits a notice.
	st = s.Pointer(PointerEvent{Type: PointerContextMenu, X: 203, Y: 102})
	if len(st.Points) != 2 {
		t.Fatalf("expected 2 points after delete, got %d", len(st.Points))
	}
	if st.Validity.Valid {
		t.Error("expected polygon invalid after dropping to 2 points")
	}
	if st.Notice == "" {
		t.Error("expected a removal notice")
	}

	// Right-click on empty space is a no-op.
	st = s.Pointer(PointerEvent{Type: PointerContextMenu, X: 400, Y: 400})
	if len(st.Points) != 2 {
		t.Errorf("expected miss to leave points untouched, got %d", len(st.Points))
	}
}

func TestEditModeProjectsNormalizedZone(t *testing.T) {
	zone := &models.Zone{
		ID:     "z1",
		Name:   "dock",
		Mode:   models.ZoneModeCounting,
		Points: geometry.FromPairs([][2]float64{{0.1, 0.1}, {0.5, 0.1}, {0.5, 0.5}}),
	}

	m := NewManager(640, 480)
	s, err := m.Open(zone, nil)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	st := s.State()
	want := []geometry.Point{{X: 64, Y: 48}, {X: 320, Y: 48}, {X: 320, Y: 240}}
	if len(st.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(st.Points))
	}
	for i, w := range want {
		if math.Abs(st.Points[i].X-w.X) > 1e-9 || math.Abs(st.Points[i].Y-w.Y) > 1e-9 {
			t.Errorf("point %d: expected %+v, got %+v", i, w, st.Points[i])
		}
	}
	if st.Mode != ModeEdit || st.Draft.Name != "dock" {
		t.Errorf("draft not pre-populated: %+v", st.Draft)
	}
}

func TestSaveNormalizesAndSerializes(t *testing.T) {
	s := newTestSession(t)
	click(s, 64, 48)
	click(s, 320, 48)
	click(s, 320, 240)
	s.SetDraft(Draft{Name: "gate", Mode: models.ZoneModeIntrusion, Confidence: 0.6, AlertCount: 1, Enabled: true})

	zone, err := s.BeginSave()
	if err != nil {
		t.Fatalf("begin save: %v", err)
	}

	want := geometry.FromPairs([][2]float64{{0.1, 0.1}, {0.5, 0.1}, {0.5, 0.5}})
	for i, p := range zone.Points {
		if math.Abs(p.X-want[i].X) > 1e-9 || math.Abs(p.Y-want[i].Y) > 1e-9 {
			t.Errorf("normalized point %d: expected %+v, got %+v", i, want[i], p)
		}
	}

	// A second save while the first is in flight is refused.
	if _, err := s.BeginSave(); err == nil {
		t.Error("expected concurrent save to be refused")
	}
	s.EndSave()
	if _, err := s.BeginSave(); err != nil {
		t.Errorf("save after EndSave should work: %v", err)
	}
}

func TestSaveBlockedWhenInvalid(t *testing.T) {
	s := newTestSession(t)
	click(s, 100, 100)
	click(s, 200, 100)
	s.SetDraft(Draft{Name: "gate"})

	if _, err := s.BeginSave(); err == nil {
		t.Error("expected save refusal with 2 points")
	}
}

func TestClearPoints(t *testing.T) {
	s := newTestSession(t)
	click(s, 100, 100)
	click(s, 200, 100)
	st := s.ClearPoints()
	if len(st.Points) != 0 || st.Validity.Valid {
		t.Errorf("expected empty invalid polygon, got %+v", st)
	}
}

func TestRenderProducesFrames(t *testing.T) {
	s := newTestSession(t)
	if len(s.Frame()) == 0 {
		t.Fatal("expected an initial frame")
	}

	_, ch := s.Subscribe()
	click(s, 100, 100)

	select {
	case frame := <-ch:
		if len(frame) == 0 {
			t.Error("expected a non-empty frame")
		}
	default:
		t.Error("expected a frame pushed to the subscriber")
	}
}

func TestRenderDrawsNameAtCentroid(t *testing.T) {
	r := &renderer{width: 640, height: 480}
	pg := geometry.Polygon{{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 200, Y: 300}}
	img := r.render(pg, InteractionState{Phase: PhaseIdle}, "dock", "#00c853")

	// Label glyphs are white; the vertex markers are too far away to
	// land inside this window.
	c := pg.Centroid()
	found := false
	for y := int(c.Y) - 14; y <= int(c.Y)+2 && !found; y++ {
		for x := int(c.X) - 30; x <= int(c.X)+30; x++ {
			if px := img.RGBAAt(x, y); px.R == 255 && px.G == 255 && px.B == 255 {
				found = true
				break
			}
		}
	}
	if !found {
		t.Error("expected name label pixels near the centroid")
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(640, 480)
	s, err := m.Open(nil, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, ok := m.Get(s.ID); !ok {
		t.Error("expected session retrievable")
	}
	if !m.Close(s.ID) {
		t.Error("expected close to succeed")
	}
	if _, ok := m.Get(s.ID); ok {
		t.Error("expected session gone after close")
	}

	// Cleanup removes idle sessions.
	s2, _ := m.Open(nil, nil)
	s2.mu.Lock()
	s2.lastAccessed = s2.lastAccessed.Add(-time.Hour)
	s2.mu.Unlock()
	if n := m.CleanupIdleSessions(SessionMaxAge); n != 1 {
		t.Errorf("expected 1 expired session, got %d", n)
	}
}
