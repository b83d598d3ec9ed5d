package preview

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"nanomeasurer/pkg/geometry"
)

// Zoom limits for the preview.
const (
	MinZoom = 0.5
	MaxZoom = 20.0
)

// nearestAboveZoom is the zoom level above which upscaling switches from
// bilinear to nearest neighbor so individual pixels stay crisp.
const nearestAboveZoom = 3.0

// labelMargin is how far outside the viewport a centroid may sit and
// still get its rank label drawn, in canvas pixels.
const labelMargin = 20.0

// ViewState is the preview's pan/zoom state against the base fit-to-
// viewport scale. It is purely a rendering concern: changing it never
// touches the mask or label map.
type ViewState struct {
	Zoom    float64
	OffsetX float64
	OffsetY float64
}

// NewViewState returns the reset view: fit to viewport, centered.
func NewViewState() ViewState {
	return ViewState{Zoom: 1}
}

// ZoomAt zooms by factor keeping the image point under the cursor
// (cx, cy) fixed, for a viewport of the given size. The resulting zoom is
// clamped into [MinZoom, MaxZoom].
func (v *ViewState) ZoomAt(cx, cy, factor float64, vpW, vpH int) {
	old := v.Zoom
	next := old * factor
	if next < MinZoom {
		next = MinZoom
	}
	if next > MaxZoom {
		next = MaxZoom
	}
	v.Zoom = next

	r := next / old
	v.OffsetX = (1-r)*(cx-float64(vpW)/2) + r*v.OffsetX
	v.OffsetY = (1-r)*(cy-float64(vpH)/2) + r*v.OffsetY
}

// Pan shifts the view by a canvas-space delta.
func (v *ViewState) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// Reset restores the fit-to-viewport view.
func (v *ViewState) Reset() {
	*v = NewViewState()
}

// placement describes where the thumbnail lands on the canvas for a given
// view state and viewport.
type placement struct {
	scale float64 // canvas pixels per thumbnail pixel
	x, y  float64 // canvas position of the thumbnail origin
}

func (t *Thumbnail) place(v ViewState, vpW, vpH int) placement {
	baseX := float64(vpW) / float64(t.W)
	baseY := float64(vpH) / float64(t.H)
	base := baseX
	if baseY < baseX {
		base = baseY
	}
	scale := base * v.Zoom
	return placement{
		scale: scale,
		x:     (float64(vpW)-float64(t.W)*scale)/2 + v.OffsetX,
		y:     (float64(vpH)-float64(t.H)*scale)/2 + v.OffsetY,
	}
}

// ImageAt maps a canvas point to full-image pixel coordinates. ok is
// false when the point falls outside the image.
func (t *Thumbnail) ImageAt(cx, cy float64, v ViewState, vpW, vpH int) (geometry.PointInt, bool) {
	pl := t.place(v, vpW, vpH)
	tx := (cx - pl.x) / pl.scale
	ty := (cy - pl.y) / pl.scale
	if tx < 0 || tx >= float64(t.W) || ty < 0 || ty >= float64(t.H) {
		return geometry.PointInt{}, false
	}
	ix := int(tx * float64(t.fullW) / float64(t.W))
	iy := int(ty * float64(t.fullH) / float64(t.H))
	if ix > t.fullW-1 {
		ix = t.fullW - 1
	}
	if iy > t.fullH-1 {
		iy = t.fullH - 1
	}
	return geometry.PointInt{X: ix, Y: iy}, true
}

// CanvasToImagePath maps a canvas-space stroke to full-image coordinates
// without discarding out-of-range points; the cut rasterizer clips them.
func (t *Thumbnail) CanvasToImagePath(pts []geometry.Point2D, v ViewState, vpW, vpH int) []geometry.Point2D {
	pl := t.place(v, vpW, vpH)
	sx := float64(t.fullW) / float64(t.W)
	sy := float64(t.fullH) / float64(t.H)
	out := make([]geometry.Point2D, len(pts))
	for i, p := range pts {
		out[i] = geometry.Point2D{
			X: (p.X - pl.x) / pl.scale * sx,
			Y: (p.Y - pl.y) / pl.scale * sy,
		}
	}
	return out
}

// BrushCanvasWidth converts a brush width in full-image pixels to canvas
// pixels for stroke feedback drawing, never thinner than 2.
func (t *Thumbnail) BrushCanvasWidth(brush float64, v ViewState, vpW, vpH int) float64 {
	pl := t.place(v, vpW, vpH)
	w := brush * pl.scale * float64(t.W) / float64(t.fullW)
	if w < 2 {
		w = 2
	}
	return w
}

// Render draws the overlay into a viewport-sized buffer for the given
// view state. Only the visible thumbnail sub-rectangle is resized, and
// rank labels are drawn for centroids projected within (or just outside)
// the viewport. Call Update before the first Render.
func (t *Thumbnail) Render(v ViewState, vpW, vpH int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, vpW, vpH))
	bg := color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if t.Overlay == nil || vpW < 2 || vpH < 2 {
		return dst
	}

	pl := t.place(v, vpW, vpH)

	// Visible sub-rectangle of the thumbnail.
	tx0 := int(-pl.x / pl.scale)
	ty0 := int(-pl.y / pl.scale)
	tx1 := int((float64(vpW)-pl.x)/pl.scale) + 1
	ty1 := int((float64(vpH)-pl.y)/pl.scale) + 1
	vis := geometry.RectInt{X: tx0, Y: ty0, Width: tx1 - tx0, Height: ty1 - ty0}.Clip(t.W, t.H)
	if vis.Empty() {
		return dst
	}

	crop := t.Overlay.SubImage(image.Rect(vis.X, vis.Y, vis.X+vis.Width, vis.Y+vis.Height))
	dx0 := int(pl.x + float64(vis.X)*pl.scale)
	dy0 := int(pl.y + float64(vis.Y)*pl.scale)
	dw := int(float64(vis.Width) * pl.scale)
	dh := int(float64(vis.Height) * pl.scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dstRect := image.Rect(dx0, dy0, dx0+dw, dy0+dh)

	scaler := xdraw.Interpolator(xdraw.BiLinear)
	if v.Zoom > nearestAboveZoom {
		scaler = xdraw.NearestNeighbor
	}
	scaler.Scale(dst, dstRect, crop, crop.Bounds(), draw.Src, nil)

	t.drawRankLabels(dst, pl, vpW, vpH)
	return dst
}

// drawRankLabels draws each visible particle's rank number at its
// centroid, white over a 1px black shadow so it reads on any region color.
func (t *Thumbnail) drawRankLabels(dst *image.NRGBA, pl placement, vpW, vpH int) {
	face := basicfont.Face7x13
	for i, c := range t.Centroids {
		cx := pl.x + c.X*pl.scale
		cy := pl.y + c.Y*pl.scale
		if cx < -labelMargin || cx > float64(vpW)+labelMargin ||
			cy < -labelMargin || cy > float64(vpH)+labelMargin {
			continue
		}

		s := strconv.Itoa(i + 1)
		drawText(dst, face, s, int(cx)+1, int(cy)+1, color.NRGBA{A: 0xff})
		drawText(dst, face, s, int(cx), int(cy), color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	}
}

func drawText(dst *image.NRGBA, face font.Face, s string, x, y int, c color.NRGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
