package preview

import (
	"image"
	"sync"

	"nanomeasurer/internal/segment"
	"nanomeasurer/pkg/geometry"
)

// View couples a session to a thumbnail overlay and a pan/zoom state. It
// listens for recomputes and rebuilds the overlay, so callers only ever
// render the latest committed results.
type View struct {
	mu      sync.Mutex
	session *segment.Session
	thumb   *Thumbnail
	state   ViewState
}

// NewView builds the thumbnail for the session image, subscribes to
// recompute events, and primes the overlay from the session's current
// results.
func NewView(s *segment.Session, maxSide int) *View {
	v := &View{
		session: s,
		thumb:   MakeThumbnail(s.Image(), maxSide),
		state:   NewViewState(),
	}
	s.On(segment.EventRecomputed, func(interface{}) {
		v.mu.Lock()
		v.thumb.Update(s.Labels(), s.Particles())
		v.mu.Unlock()
	})
	v.thumb.Update(s.Labels(), s.Particles())
	return v
}

// Render produces the visible overlay buffer for the given viewport size.
func (v *View) Render(vpW, vpH int) *image.NRGBA {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.thumb.Render(v.state, vpW, vpH)
}

// ZoomAt zooms keeping the canvas point (cx, cy) fixed.
func (v *View) ZoomAt(cx, cy, factor float64, vpW, vpH int) {
	v.mu.Lock()
	v.state.ZoomAt(cx, cy, factor, vpW, vpH)
	v.mu.Unlock()
}

// Pan shifts the view by a canvas-space delta.
func (v *View) Pan(dx, dy float64) {
	v.mu.Lock()
	v.state.Pan(dx, dy)
	v.mu.Unlock()
}

// Reset restores the fit-to-viewport view.
func (v *View) Reset() {
	v.mu.Lock()
	v.state.Reset()
	v.mu.Unlock()
}

// State returns a copy of the current view state.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// PickSample forwards a canvas click to the session as a color sample
// pick, mapping through the current view. It reports whether the click
// landed on the image.
func (v *View) PickSample(cx, cy float64, vpW, vpH int) bool {
	v.mu.Lock()
	pt, ok := v.thumb.ImageAt(cx, cy, v.state, vpW, vpH)
	v.mu.Unlock()
	if !ok {
		return false
	}
	v.session.AddSampleAt(pt.X, pt.Y)
	return true
}

// PaintCut forwards a canvas-space stroke to the session's cut layer,
// mapping the path through the current view. The brush width is in
// full-image pixels; radius is half of it, at least 1.
func (v *View) PaintCut(canvasPts []geometry.Point2D, brushWidth float64, vpW, vpH int) {
	if len(canvasPts) < 2 {
		return
	}
	v.mu.Lock()
	pts := v.thumb.CanvasToImagePath(canvasPts, v.state, vpW, vpH)
	v.mu.Unlock()

	radius := brushWidth / 2
	if radius < 1 {
		radius = 1
	}
	v.session.PaintCut(pts, radius)
}
