// Package editor implements the interactive polygon zone editor: an
// ordered point store, proximity hit testing, the pointer-driven
// interaction state machine, save validation, and the render loop that
// rasterizes the draft over the latest video frame.
package editor

import "github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"

// PointStore holds the ordered polygon for one editing session. It lives
// only for the lifetime of the session and is never shared between
// sessions. All operations are synchronous; the owning session triggers
// re-render and validation after each mutation.
type PointStore struct {
	points geometry.Polygon
}

// NewPointStore returns a store pre-populated with the given points
// (canvas space). Pass nil for a fresh create-mode store.
func NewPointStore(initial geometry.Polygon) *PointStore {
	return &PointStore{points: initial.Clone()}
}

// Append adds a point at the end. Point count is unbounded.
func (s *PointStore) Append(p geometry.Point) {
	s.points = append(s.points, p)
}

// RemoveAt removes exactly one point. No-op if the index is out of range.
func (s *PointStore) RemoveAt(i int) {
	if i < 0 || i >= len(s.points) {
		return
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
}

// ReplaceAt updates a point's position without changing its ordinal
// position, preserving edge topology during drags. No-op out of range.
func (s *PointStore) ReplaceAt(i int, p geometry.Point) {
	if i < 0 || i >= len(s.points) {
		return
	}
	s.points[i] = p
}

// Clear empties the polygon.
func (s *PointStore) Clear() {
	s.points = s.points[:0]
}

// Len returns the current point count.
func (s *PointStore) Len() int {
	return len(s.points)
}

// At returns the point at index i.
func (s *PointStore) At(i int) geometry.Point {
	return s.points[i]
}

// Points returns a copy of the polygon in insertion order.
func (s *PointStore) Points() geometry.Polygon {
	return s.points.Clone()
}
