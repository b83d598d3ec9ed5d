// Package preview renders the color-coded segmentation overlay. The
// overlay is built once per recompute at a capped thumbnail resolution;
// viewport rendering then crops to the visible sub-rectangle before the
// final resize so render cost stays bounded regardless of zoom level.
package preview

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"nanomeasurer/internal/segment"
	"nanomeasurer/pkg/colorutil"
	"nanomeasurer/pkg/geometry"
)

// DefaultMaxSide is the default cap on the thumbnail's longest side.
const DefaultMaxSide = 600

// BlendRatio is the palette weight when colorizing labeled regions; the
// remaining weight keeps the underlying image visible.
const BlendRatio = 0.6

// Thumbnail is the downsampled, colorized overlay for one recompute,
// together with the mapping back to full-image coordinates.
type Thumbnail struct {
	W, H int
	// Base is the downsampled source image, reused across recomputes.
	Base *image.NRGBA
	// Overlay is Base with palette colors blended over labeled regions.
	Overlay *image.NRGBA
	// Centroids are particle centroids in thumbnail coordinates, indexed
	// by rank-1.
	Centroids []geometry.Point2D

	fullW, fullH int
}

// MakeThumbnail downsamples the source image so its longest side is at
// most maxSide, preserving aspect ratio. Images already within the cap
// keep their size.
func MakeThumbnail(src *image.NRGBA, maxSide int) *Thumbnail {
	if maxSide <= 0 {
		maxSide = DefaultMaxSide
	}
	fw, fh := src.Bounds().Dx(), src.Bounds().Dy()

	scale := 1.0
	if fw > maxSide || fh > maxSide {
		sx := float64(maxSide) / float64(fw)
		sy := float64(maxSide) / float64(fh)
		scale = sx
		if sy < sx {
			scale = sy
		}
	}
	tw := int(float64(fw) * scale)
	th := int(float64(fh) * scale)
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	base := image.NewNRGBA(image.Rect(0, 0, tw, th))
	xdraw.BiLinear.Scale(base, base.Bounds(), src, src.Bounds(), draw.Src, nil)

	return &Thumbnail{W: tw, H: th, Base: base, fullW: fw, fullH: fh}
}

// Update rebuilds the colorized overlay from a new label map and particle
// list: the label map is downsampled by nearest neighbor to the thumbnail
// size, each labeled cell gets its rank's palette color alpha-blended over
// the base image, and the centroids are projected into thumbnail
// coordinates.
func (t *Thumbnail) Update(labels *segment.LabelMap, particles []segment.Particle) {
	overlay := image.NewNRGBA(image.Rect(0, 0, t.W, t.H))
	copy(overlay.Pix, t.Base.Pix)

	if labels != nil && len(particles) > 0 {
		for y := 0; y < t.H; y++ {
			fy := y * labels.H / t.H
			for x := 0; x < t.W; x++ {
				fx := x * labels.W / t.W
				rank := labels.Labels[fy*labels.W+fx]
				if rank == 0 {
					continue
				}
				c := colorutil.PaletteColor(int(rank))
				off := y*overlay.Stride + x*4
				overlay.Pix[off] = blend(overlay.Pix[off], c.R)
				overlay.Pix[off+1] = blend(overlay.Pix[off+1], c.G)
				overlay.Pix[off+2] = blend(overlay.Pix[off+2], c.B)
			}
		}
	}
	t.Overlay = overlay

	sx := float64(t.W) / float64(t.fullW)
	sy := float64(t.H) / float64(t.fullH)
	t.Centroids = make([]geometry.Point2D, len(particles))
	for i, p := range particles {
		t.Centroids[i] = geometry.Point2D{X: p.Centroid.X * sx, Y: p.Centroid.Y * sy}
	}
}

// FullScale returns the thumbnail-to-full-image scale factors.
func (t *Thumbnail) FullScale() (sx, sy float64) {
	return float64(t.fullW) / float64(t.W), float64(t.fullH) / float64(t.H)
}

func blend(under, over uint8) uint8 {
	return uint8(float64(under)*(1-BlendRatio) + float64(over)*BlendRatio)
}
