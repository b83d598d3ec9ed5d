package segment

import (
	"image"
	"testing"
)

func solidImage(w, h int, r, g, b uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*img.Stride + x*4
			img.Pix[off] = r
			img.Pix[off+1] = g
			img.Pix[off+2] = b
			img.Pix[off+3] = 255
		}
	}
	return img
}

func setPixel(img *image.NRGBA, x, y int, r, g, b uint8) {
	off := y*img.Stride + x*4
	img.Pix[off] = r
	img.Pix[off+1] = g
	img.Pix[off+2] = b
	img.Pix[off+3] = 255
}

func TestMatchHSVExact(t *testing.T) {
	img := solidImage(4, 4, 0, 255, 0)
	setPixel(img, 2, 1, 255, 0, 0)
	hsv, err := ConvertHSV(img)
	if err != nil {
		t.Fatal(err)
	}

	// Center on pure red with tight tolerances: only the red pixel matches.
	m := MatchHSV(hsv, 0, 255, 255, Tolerances{Hue: 5, Sat: 20, Val: 20})
	if got := m.Count(); got != 1 {
		t.Fatalf("match count = %d, want 1", got)
	}
	if !m.At(2, 1) {
		t.Error("red pixel not matched")
	}
}

func TestMatchHSVHueWraparound(t *testing.T) {
	// Hue 178 vs center hue 2: circular distance 4, linear distance 176.
	hsv := &HSVImage{W: 2, H: 2,
		Hue: []float32{178, 2, 90, 0},
		Sat: []float32{200, 200, 200, 200},
		Val: []float32{200, 200, 200, 200},
	}

	m := MatchHSV(hsv, 2, 200, 200, Tolerances{Hue: 5, Sat: 10, Val: 10})
	if !m.At(0, 0) {
		t.Error("hue 178 should match center 2 with tolerance 5 (wraps)")
	}
	if !m.At(1, 0) {
		t.Error("hue 2 should match center 2")
	}
	if m.At(0, 1) {
		t.Error("hue 90 should not match center 2")
	}
	if !m.At(1, 1) {
		t.Error("hue 0 should match center 2 with tolerance 5")
	}
}

func TestMatchHSVAllChannelsMustHold(t *testing.T) {
	hsv := &HSVImage{W: 3, H: 1,
		Hue: []float32{10, 10, 10},
		Sat: []float32{100, 250, 100},
		Val: []float32{100, 100, 250},
	}
	m := MatchHSV(hsv, 10, 100, 100, Tolerances{Hue: 5, Sat: 30, Val: 30})
	if !m.At(0, 0) {
		t.Error("pixel within all tolerances should match")
	}
	if m.At(1, 0) {
		t.Error("saturation outside tolerance should reject")
	}
	if m.At(2, 0) {
		t.Error("value outside tolerance should reject")
	}
}

func TestMaskAndNot(t *testing.T) {
	a := NewMask(3, 1)
	a.Bits = []bool{true, true, false}
	b := NewMask(3, 1)
	b.Bits = []bool{false, true, true}
	a.AndNot(b)
	want := []bool{true, false, false}
	for i := range want {
		if a.Bits[i] != want[i] {
			t.Errorf("bit %d = %v, want %v", i, a.Bits[i], want[i])
		}
	}
}

func TestConvertHSVBlackImage(t *testing.T) {
	img := solidImage(2, 2, 0, 0, 0)
	hsv, err := ConvertHSV(img)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if hsv.Hue[i] != 0 || hsv.Sat[i] != 0 || hsv.Val[i] != 0 {
			t.Fatalf("black pixel %d converted to (%v,%v,%v), want zeros",
				i, hsv.Hue[i], hsv.Sat[i], hsv.Val[i])
		}
	}
}

func TestConvertHSVNilImage(t *testing.T) {
	if _, err := ConvertHSV(nil); err == nil {
		t.Error("expected error for nil image")
	}
}
