// Package segment implements the interactive color-based particle
// segmentation engine: HSV similarity matching over a cached conversion of
// the source image, manual cut strokes, connected-component extraction and
// ranking, color sample aggregation, and the debounced session that ties
// them together.
package segment

import (
	"fmt"
	"image"
	"image/draw"

	"nanomeasurer/pkg/colorutil"
)

// HSVImage holds the per-channel HSV planes of a source image as flat
// row-major float32 buffers. Hue is in the 0-180 half range, saturation
// and value in 0-255. It is computed once per loaded image and shared
// read-only for the lifetime of the analysis session.
type HSVImage struct {
	W, H int
	Hue  []float32
	Sat  []float32
	Val  []float32
}

// ToNRGBA returns the image as *image.NRGBA with bounds anchored at the
// origin, copying only when the input is not already in that form.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == image.Pt(0, 0) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// ConvertHSV converts a full image to cached HSV planes.
func ConvertHSV(src *image.NRGBA) (*HSVImage, error) {
	if src == nil {
		return nil, fmt.Errorf("convert hsv: nil image")
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("convert hsv: empty image %dx%d", w, h)
	}

	out := &HSVImage{
		W:   w,
		H:   h,
		Hue: make([]float32, w*h),
		Sat: make([]float32, w*h),
		Val: make([]float32, w*h),
	}

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3 : x*4+3]
			hh, ss, vv := colorutil.RGBToHSV(float64(p[0]), float64(p[1]), float64(p[2]))
			idx := y*w + x
			out.Hue[idx] = float32(hh)
			out.Sat[idx] = float32(ss)
			out.Val[idx] = float32(vv)
		}
	}
	return out, nil
}
