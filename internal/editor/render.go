package editor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jonatansouza2k11/Ark-Vision-sub000/internal/geometry"
)

// Marker radii by interaction state.
const (
	markerRadius        = 6
	markerRadiusHovered = 8
	markerRadiusDragged = 9
)

var (
	backdropColor = color.RGBA{R: 24, G: 24, B: 28, A: 255}
	markerBorder  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	hoverColor    = color.RGBA{R: 255, G: 200, B: 0, A: 255}
	dragColor     = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	labelColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// renderer redraws the editor frame whenever the point store, interaction
// state, or style changes. It owns no state besides the canvas size and
// the optional background reference frame.
type renderer struct {
	width      int
	height     int
	background image.Image // nil until the reference frame has loaded
}

// setBackground decodes a JPEG reference frame. A decode failure degrades
// to drawing the polygon without a background, matching the editor's
// behavior when the frame has not loaded.
func (r *renderer) setBackground(jpegData []byte) error {
	if len(jpegData) == 0 {
		return nil
	}
	img, err := jpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return fmt.Errorf("decoding reference frame: %w", err)
	}
	r.background = img
	return nil
}

// render draws the full frame: background, closed polygon with translucent
// fill and its name at the centroid, edges, and numbered state-styled
// vertex markers.
func (r *renderer) render(points geometry.Polygon, state InteractionState, name, strokeHex string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))

	if r.background != nil {
		xdraw.ApproxBiLinear.Scale(img, img.Bounds(), r.background, r.background.Bounds(), xdraw.Src, nil)
	} else {
		// Reference frame not available for this draw; keep going.
		fillRect(img, img.Bounds(), backdropColor)
	}

	stroke := parseHexColor(strokeHex, color.RGBA{R: 0, G: 220, B: 120, A: 255})

	if points.Closed() {
		fillPolygon(img, points, stroke, 64)
		if name != "" {
			c := points.Centroid()
			drawLabel(img, int(c.X)-len(name)*basicfont.Face7x13.Advance/2, int(c.Y), name)
		}
	}

	for i := 0; i < len(points); i++ {
		a := points[i]
		// The outline closes only once the polygon has three points.
		if i == len(points)-1 && !points.Closed() {
			break
		}
		b := points[(i+1)%len(points)]
		drawLine(img, int(a.X), int(a.Y), int(b.X), int(b.Y), stroke)
	}

	for i, p := range points {
		radius, fill := markerRadius, stroke
		switch {
		case state.Phase == PhaseDragging && state.Index == i:
			radius, fill = markerRadiusDragged, dragColor
		case state.Phase == PhaseHovering && state.Index == i:
			radius, fill = markerRadiusHovered, hoverColor
		}
		fillCircle(img, int(p.X), int(p.Y), radius, fill)
		drawCircle(img, int(p.X), int(p.Y), radius, markerBorder)
		drawLabel(img, int(p.X)+radius+3, int(p.Y)-radius, strconv.Itoa(i+1))
	}

	return img
}

// encodeJPEG encodes a rendered frame for the preview stream.
func encodeJPEG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fillRect(img *image.RGBA, rect image.Rectangle, c color.RGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// fillPolygon blends a translucent fill over the polygon interior
// (even-odd rule, scanning the bounding box).
func fillPolygon(img *image.RGBA, pg geometry.Polygon, c color.RGBA, alpha uint8) {
	minX, minY := pg[0].X, pg[0].Y
	maxX, maxY := minX, minY
	for _, p := range pg[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	bounds := img.Bounds()
	x0, y0 := clamp(int(minX), bounds.Min.X, bounds.Max.X-1), clamp(int(minY), bounds.Min.Y, bounds.Max.Y-1)
	x1, y1 := clamp(int(maxX)+1, bounds.Min.X, bounds.Max.X-1), clamp(int(maxY)+1, bounds.Min.Y, bounds.Max.Y-1)

	a := float64(alpha) / 255
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !pg.Contains(geometry.Point{X: float64(x), Y: float64(y)}) {
				continue
			}
			dst := img.RGBAAt(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: blend(c.R, dst.R, a),
				G: blend(c.G, dst.G, a),
				B: blend(c.B, dst.B, a),
				A: 255,
			})
		}
	}
}

func blend(src, dst uint8, a float64) uint8 {
	return uint8(float64(src)*a + float64(dst)*(1-a))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawLine draws a line using Bresenham's algorithm.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, c color.RGBA) {
	bounds := img.Bounds()
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy
	for {
		if x1 >= bounds.Min.X && x1 < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			img.SetRGBA(x1, y1, c)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	for y := cy - r; y <= cy+r; y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := cx - r; x <= cx+r; x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// drawCircle draws a circle outline using Bresenham's algorithm.
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, c)
		}
	}

	x, y, err := r, 0, 0
	for x >= y {
		set(cx+x, cy+y)
		set(cx+y, cy+x)
		set(cx-y, cy+x)
		set(cx-x, cy+y)
		set(cx-x, cy-y)
		set(cx-y, cy-x)
		set(cx+y, cy-x)
		set(cx+x, cy-y)

		y++
		if err <= 0 {
			err += 2*y + 1
		}
		if err > 0 {
			x--
			err -= 2*x + 1
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// parseHexColor parses "#RRGGBB" (or "RRGGBB"), falling back to def.
func parseHexColor(s string, def color.RGBA) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
