package segment

import (
	"math"

	"nanomeasurer/pkg/colorutil"
)

// RGB is an 8-bit color sample captured at a pixel.
type RGB struct {
	R, G, B uint8
}

// Hex formats the sample as #rrggbb for swatch display.
func (c RGB) Hex() string {
	return colorutil.Hex(c.R, c.G, c.B)
}

// Center is the aggregate reference color of a sample set: the circular
// hue mean plus arithmetic saturation/value means, and the plain RGB
// channel average kept separately for swatch rendering.
type Center struct {
	H, S, V float64
	Avg     RGB
}

// SampleSet holds the operator's reference color samples: the seed points
// fixed when the session opened and the points added afterwards. Only
// added points are undoable; all statistics run over the concatenation.
type SampleSet struct {
	seed  []RGB
	added []RGB
}

// NewSampleSet creates a sample set from the session's seed points.
func NewSampleSet(seed []RGB) *SampleSet {
	s := &SampleSet{seed: make([]RGB, len(seed))}
	copy(s.seed, seed)
	return s
}

// Add appends an operator-picked sample.
func (s *SampleSet) Add(c RGB) {
	s.added = append(s.added, c)
}

// Undo removes the most recently added sample. Seed samples are never
// removed. It reports whether a sample was removed.
func (s *SampleSet) Undo() bool {
	if len(s.added) == 0 {
		return false
	}
	s.added = s.added[:len(s.added)-1]
	return true
}

// Len returns the total number of samples.
func (s *SampleSet) Len() int {
	return len(s.seed) + len(s.added)
}

// All returns seed samples followed by added samples.
func (s *SampleSet) All() []RGB {
	out := make([]RGB, 0, s.Len())
	out = append(out, s.seed...)
	out = append(out, s.added...)
	return out
}

// Center computes the aggregate center color. ok is false when the set is
// empty, in which case the center is undefined and callers should skip
// matching entirely.
func (s *SampleSet) Center() (c Center, ok bool) {
	all := s.All()
	n := len(all)
	if n == 0 {
		return Center{}, false
	}

	hues := make([]float64, n)
	var sumS, sumV float64
	var sumR, sumG, sumB int
	for i, p := range all {
		h, sat, val := colorutil.RGBToHSV(float64(p.R), float64(p.G), float64(p.B))
		hues[i] = h
		sumS += sat
		sumV += val
		sumR += int(p.R)
		sumG += int(p.G)
		sumB += int(p.B)
	}

	fn := float64(n)
	return Center{
		H: colorutil.CircularHueMean(hues),
		S: sumS / fn,
		V: sumV / fn,
		Avg: RGB{
			R: uint8(math.Round(float64(sumR) / fn)),
			G: uint8(math.Round(float64(sumG) / fn)),
			B: uint8(math.Round(float64(sumB) / fn)),
		},
	}, true
}

// AutoTolerances derives per-channel tolerances from the spread of the
// samples around the center: 1.5× the maximum deviation plus a margin,
// clamped into [5,90] for hue and [10,128] for saturation and value. Hue
// deviation uses the circular distance. With fewer than two samples the
// spread carries no information and the fixed defaults are returned. The
// minimum-area threshold is not derived from color and passes through
// unchanged from cur.
func (s *SampleSet) AutoTolerances(c Center, cur Tolerances) Tolerances {
	all := s.All()
	if len(all) < 2 {
		def := DefaultTolerances()
		def.MinArea = cur.MinArea
		return def
	}

	var maxH, maxS, maxV float64
	for _, p := range all {
		h, sat, val := colorutil.RGBToHSV(float64(p.R), float64(p.G), float64(p.B))
		if d := colorutil.HueDistance(h, c.H); d > maxH {
			maxH = d
		}
		if d := math.Abs(sat - c.S); d > maxS {
			maxS = d
		}
		if d := math.Abs(val - c.V); d > maxV {
			maxV = d
		}
	}

	return Tolerances{
		Hue:     clamp(math.Floor(maxH*1.5+5), 5, 90),
		Sat:     clamp(math.Floor(maxS*1.5+10), 10, 128),
		Val:     clamp(math.Floor(maxV*1.5+10), 10, 128),
		MinArea: cur.MinArea,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
