// Package geometry provides the point and polygon math used by the zone
// editor and the zone API: conversion between on-screen pixel space, the
// fixed logical canvas, and the normalized [0,1] representation zones are
// persisted in.
package geometry

import "math"

// Point is a 2D point. The same type carries canvas-space (pixel units,
// bounded by the logical canvas) and normalized-space ([0,1]) coordinates;
// the Mapper is the only place conversions happen.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance to q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Mapper converts pointer positions into the fixed logical canvas space and
// logical points to/from the normalized representation. The canvas element
// may be displayed at a different size than its logical resolution, so
// pointer mapping needs the rendered bounding rect.
type Mapper struct {
	Width  float64
	Height float64
}

// NewMapper returns a mapper for a logical canvas of the given size.
func NewMapper(width, height int) Mapper {
	return Mapper{Width: float64(width), Height: float64(height)}
}

// ToCanvas scales a pointer position from the rendered element's bounding
// rect into logical canvas coordinates. Zero rect dimensions mean the
// element is displayed at its logical size.
func (m Mapper) ToCanvas(pointerX, pointerY, rectW, rectH float64) Point {
	if rectW <= 0 {
		rectW = m.Width
	}
	if rectH <= 0 {
		rectH = m.Height
	}
	return Point{
		X: pointerX * m.Width / rectW,
		Y: pointerY * m.Height / rectH,
	}
}

// ToNormalized converts a canvas-space point to [0,1] coordinates.
func (m Mapper) ToNormalized(p Point) Point {
	return Point{X: p.X / m.Width, Y: p.Y / m.Height}
}

// FromNormalized converts a normalized point back to canvas space. Used
// when loading an existing zone for editing.
func (m Mapper) FromNormalized(p Point) Point {
	return Point{X: p.X * m.Width, Y: p.Y * m.Height}
}
