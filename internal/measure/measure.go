// Package measure implements measurement bookkeeping around the
// segmentation engine: line-segment measurements, rectangular grouping
// regions, length-unit conversion, summary statistics, and CSV export.
package measure

import (
	"math"

	"nanomeasurer/pkg/geometry"
)

// Measurement is one operator-drawn line measurement in image
// coordinates. The calibrated distance is fixed at creation time from the
// scale then in effect; a scale of 0 leaves it at 0 (uncalibrated).
type Measurement struct {
	X1, Y1, X2, Y2 float64
	PixelDist      float64 // endpoint distance in pixels
	Dist           float64 // PixelDist · scale, in the calibration unit
}

// NewMeasurement records a measurement between two image points.
func NewMeasurement(x1, y1, x2, y2, scale float64) Measurement {
	px := math.Hypot(x2-x1, y2-y1)
	d := 0.0
	if scale > 0 {
		d = px * scale
	}
	return Measurement{X1: x1, Y1: y1, X2: x2, Y2: y2, PixelDist: px, Dist: d}
}

// Mid returns the measurement's midpoint.
func (m Measurement) Mid() geometry.Point2D {
	return geometry.Point2D{X: (m.X1 + m.X2) / 2, Y: (m.Y1 + m.Y2) / 2}
}

// Group is a named rectangular grouping region. Corner order is
// normalized at construction so callers may pass any two opposite
// corners.
type Group struct {
	Name           string
	X1, Y1, X2, Y2 float64
}

// NewGroup creates a group from any two opposite corners.
func NewGroup(name string, x1, y1, x2, y2 float64) Group {
	return Group{
		Name: name,
		X1:   math.Min(x1, x2),
		Y1:   math.Min(y1, y2),
		X2:   math.Max(x1, x2),
		Y2:   math.Max(y1, y2),
	}
}

// Contains reports whether the measurement's midpoint lies inside the
// group rectangle, boundary inclusive.
func (g Group) Contains(m Measurement) bool {
	mid := m.Mid()
	return mid.X >= g.X1 && mid.X <= g.X2 && mid.Y >= g.Y1 && mid.Y <= g.Y2
}

// AssignGroups returns one label per measurement: the name of the first
// group (in slice order) containing its midpoint, or "" when none does.
func AssignGroups(measurements []Measurement, groups []Group) []string {
	labels := make([]string, len(measurements))
	for i, m := range measurements {
		for _, g := range groups {
			if g.Contains(m) {
				labels[i] = g.Name
				break
			}
		}
	}
	return labels
}
