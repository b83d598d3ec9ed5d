// Package colorutil provides shared color math for the particle analyzer:
// RGB to HSV conversion in the half-range hue convention, circular hue
// arithmetic, and the overlay palette used to colorize labeled regions.
package colorutil

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0 // V in 0-255

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0 // S in 0-255
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // 0-360 → 0-180 half range

	return h, s, v
}

// HueDistance returns the circular distance between two hues in the 0-180
// half range, so HueDistance(5, 175) is 10, not 170.
func HueDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 180-d {
		d = 180 - d
	}
	return d
}

// NormalizeHue wraps a hue into [0, 180).
func NormalizeHue(h float64) float64 {
	h = math.Mod(h, 180)
	if h < 0 {
		h += 180
	}
	return h
}

// CircularHueMean computes the circular mean of hues in the 0-180 half
// range. Hues near the wrap point average correctly: the mean of 10 and
// 170 is near 0, not 90. An empty input returns 0.
func CircularHueMean(hues []float64) float64 {
	if len(hues) == 0 {
		return 0
	}
	var sumSin, sumCos float64
	for _, h := range hues {
		rad := h * (math.Pi / 90) // 0-180 → 0-2π
		sumSin += math.Sin(rad)
		sumCos += math.Cos(rad)
	}
	n := float64(len(hues))
	mean := math.Atan2(sumSin/n, sumCos/n) * (90 / math.Pi)
	return NormalizeHue(mean)
}

// Hex formats an 8-bit RGB triple as a #rrggbb string for swatch display.
func Hex(r, g, b uint8) string {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	return c.Hex()
}

// OverlayPalette holds the region colors cycled by rank when colorizing a
// label map. The entries are chosen for mutual contrast on top of
// microscopy imagery.
var OverlayPalette = []color.RGBA{
	{230, 25, 75, 255}, {60, 180, 75, 255}, {255, 225, 25, 255}, {0, 130, 200, 255},
	{245, 130, 48, 255}, {145, 30, 180, 255}, {70, 240, 240, 255}, {240, 50, 230, 255},
	{210, 245, 60, 255}, {250, 190, 212, 255}, {0, 128, 128, 255}, {220, 190, 255, 255},
	{170, 110, 40, 255}, {255, 250, 200, 255}, {128, 0, 0, 255}, {170, 255, 195, 255},
	{128, 128, 0, 255}, {255, 215, 180, 255}, {0, 0, 128, 255}, {128, 128, 128, 255},
}

// PaletteColor returns the overlay color for a 1-based region rank,
// cycling through the palette for ranks beyond its length.
func PaletteColor(rank int) color.RGBA {
	if rank < 1 {
		return OverlayPalette[0]
	}
	return OverlayPalette[(rank-1)%len(OverlayPalette)]
}
