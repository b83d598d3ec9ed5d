package segment

import (
	"math"

	"nanomeasurer/pkg/geometry"
)

// Stroke is one operator-painted cut: an ordered polyline in full-image
// pixel coordinates with a brush radius.
type Stroke struct {
	Points []geometry.Point2D
	Radius float64
}

// CutLayer accumulates cut strokes into a subtractive mask that is applied
// to the similarity mask before component extraction. The mask is always
// the union of the surviving strokes: undo pops the last stroke and
// rebuilds from scratch instead of subtracting in place, so repeated
// undo/redo cycles cannot drift.
type CutLayer struct {
	w, h    int
	strokes []Stroke
	mask    *Mask
}

// NewCutLayer creates an empty cut layer for a w×h image.
func NewCutLayer(w, h int) *CutLayer {
	return &CutLayer{w: w, h: h, mask: NewMask(w, h)}
}

// Mask returns the accumulated cut mask. Callers must not mutate it.
func (c *CutLayer) Mask() *Mask {
	return c.mask
}

// Empty reports whether any strokes exist.
func (c *CutLayer) Empty() bool {
	return len(c.strokes) == 0
}

// StrokeCount returns the number of surviving strokes.
func (c *CutLayer) StrokeCount() int {
	return len(c.strokes)
}

// Paint rasterizes a stroke into the cut mask and appends it to the stroke
// list. The radius is clamped to at least 1 pixel. Strokes with no points
// are ignored; a single point paints a dot.
func (c *CutLayer) Paint(points []geometry.Point2D, radius float64) {
	if len(points) == 0 {
		return
	}
	if radius < 1 {
		radius = 1
	}

	s := Stroke{Points: make([]geometry.Point2D, len(points)), Radius: radius}
	copy(s.Points, points)
	c.strokes = append(c.strokes, s)
	c.rasterize(c.mask, s)
}

// Undo removes the most recent stroke and rebuilds the mask as the union
// of the remaining strokes. It reports whether a stroke was removed.
func (c *CutLayer) Undo() bool {
	if len(c.strokes) == 0 {
		return false
	}
	c.strokes = c.strokes[:len(c.strokes)-1]
	c.rebuild()
	return true
}

// Clear removes all strokes and empties the mask.
func (c *CutLayer) Clear() {
	c.strokes = c.strokes[:0]
	c.mask.Clear()
}

func (c *CutLayer) rebuild() {
	c.mask.Clear()
	for _, s := range c.strokes {
		c.rasterize(c.mask, s)
	}
}

// rasterize marks every cell within the stroke radius of the polyline: a
// capsule per consecutive point pair. Only cells inside the segment's
// bounding box grown by the radius are tested, and the box is clipped to
// the image extents.
func (c *CutLayer) rasterize(m *Mask, s Stroke) {
	if len(s.Points) == 1 {
		c.rasterizeSegment(m, s.Points[0], s.Points[0], s.Radius)
		return
	}
	for i := 0; i+1 < len(s.Points); i++ {
		c.rasterizeSegment(m, s.Points[i], s.Points[i+1], s.Radius)
	}
}

func (c *CutLayer) rasterizeSegment(m *Mask, a, b geometry.Point2D, radius float64) {
	x0 := int(math.Floor(math.Min(a.X, b.X)-radius)) - 1
	y0 := int(math.Floor(math.Min(a.Y, b.Y)-radius)) - 1
	x1 := int(math.Ceil(math.Max(a.X, b.X)+radius)) + 2
	y1 := int(math.Ceil(math.Max(a.Y, b.Y)+radius)) + 2

	box := geometry.RectInt{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}.Clip(c.w, c.h)
	if box.Empty() {
		return
	}

	r2 := radius * radius
	for y := box.Y; y < box.Y+box.Height; y++ {
		for x := box.X; x < box.X+box.Width; x++ {
			p := geometry.Point2D{X: float64(x), Y: float64(y)}
			if geometry.SegmentDistanceSq(p, a, b) <= r2 {
				m.Bits[y*c.w+x] = true
			}
		}
	}
}
