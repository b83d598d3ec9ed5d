package segment

// Mask is a W×H boolean grid stored row-major.
type Mask struct {
	W, H int
	Bits []bool
}

// NewMask returns an all-false mask of the given size.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Bits: make([]bool, w*h)}
}

// At reports the value at (x, y). Out-of-range coordinates are false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return false
	}
	return m.Bits[y*m.W+x]
}

// Set writes the value at (x, y). Out-of-range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || x >= m.W || y < 0 || y >= m.H {
		return
	}
	m.Bits[y*m.W+x] = v
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	c := &Mask{W: m.W, H: m.H, Bits: make([]bool, len(m.Bits))}
	copy(c.Bits, m.Bits)
	return c
}

// Clear resets every cell to false.
func (m *Mask) Clear() {
	for i := range m.Bits {
		m.Bits[i] = false
	}
}

// Or merges another mask into this one.
func (m *Mask) Or(other *Mask) {
	for i, b := range other.Bits {
		if b {
			m.Bits[i] = true
		}
	}
}

// AndNot clears every cell that is set in other.
func (m *Mask) AndNot(other *Mask) {
	for i, b := range other.Bits {
		if b {
			m.Bits[i] = false
		}
	}
}

// Tolerances holds the per-channel match bounds around the center color
// plus the minimum component area, the knobs the operator drives with
// continuous controls.
type Tolerances struct {
	Hue     float64
	Sat     float64
	Val     float64
	MinArea int
}

// DefaultTolerances returns the fixed fallback used when fewer than two
// color samples exist.
func DefaultTolerances() Tolerances {
	return Tolerances{Hue: 15, Sat: 50, Val: 50, MinArea: 10}
}

// MatchHSV produces the similarity mask for a center color: a pixel
// matches iff its hue lies within tol.Hue of the center hue under the
// circular 0-180 metric and its saturation and value lie within plain
// absolute tolerances. Matching always runs on the full-resolution planes
// so downstream areas and centroids stay accurate.
func MatchHSV(hsv *HSVImage, centerH, centerS, centerV float64, tol Tolerances) *Mask {
	m := NewMask(hsv.W, hsv.H)
	for i := range m.Bits {
		h := float64(hsv.Hue[i])
		d := h - centerH
		if d < 0 {
			d = -d
		}
		if d > 180-d {
			d = 180 - d
		}
		if d > tol.Hue {
			continue
		}

		s := float64(hsv.Sat[i]) - centerS
		if s < 0 {
			s = -s
		}
		if s > tol.Sat {
			continue
		}

		v := float64(hsv.Val[i]) - centerV
		if v < 0 {
			v = -v
		}
		if v > tol.Val {
			continue
		}

		m.Bits[i] = true
	}
	return m
}
