package segment

import (
	"fmt"
	"image"
	"sync"
	"time"

	"nanomeasurer/pkg/geometry"
)

// EventType identifies session events.
type EventType int

const (
	// EventRecomputed fires after a full pipeline recompute; the payload
	// is the new Stats.
	EventRecomputed EventType = iota
	// EventCenterChanged fires when the sample set changes the aggregate
	// center color; the payload is the new Center.
	EventCenterChanged
	// EventTolerancesChanged fires when tolerances change, whether set by
	// the operator or auto-derived; the payload is the new Tolerances.
	EventTolerancesChanged
)

// EventListener is called when a session event occurs.
type EventListener func(data interface{})

// Stats summarizes one recompute for the caller.
type Stats struct {
	Count       int     // surviving particles
	TotalAreaPx int     // sum of particle areas in pixels
	Coverage    float64 // TotalAreaPx / image area, in percent
	ScaledArea  float64 // TotalAreaPx · scale², 0 when uncalibrated
}

// Session owns all segmentation state for one loaded image: the cached
// HSV conversion, the sample set, the cut layer, the current tolerances,
// and the latest pipeline outputs. All mutating operations are
// synchronous; the only deferred work is the debounced recompute, which a
// newer change always supersedes before it commits. State is discarded
// with the session when the image is closed or replaced.
type Session struct {
	mu sync.Mutex

	img  *image.NRGBA
	w, h int
	hsv  *HSVImage

	samples *SampleSet
	cuts    *CutLayer

	tol     Tolerances
	autoTol bool
	scale   float64 // calibrated length per pixel, 0 = uncalibrated

	// Latest recompute outputs. Rebuilt wholesale on every recompute;
	// never patched incrementally.
	mask      *Mask
	labels    *LabelMap
	particles []Particle
	stats     Stats

	debounce  *Debouncer
	listeners map[EventType][]EventListener
}

// Options configures a new session.
type Options struct {
	// DebounceDelay is how long after the last change the recompute
	// fires. Zero or negative makes every change recompute synchronously.
	DebounceDelay time.Duration
	// AutoTolerance enables deriving tolerances from the sample spread on
	// every sample change.
	AutoTolerance bool
	// Scale is the calibrated length per pixel, 0 when unknown.
	Scale float64
}

// DefaultOptions returns the options used by the interactive tool.
func DefaultOptions() Options {
	return Options{
		DebounceDelay: 80 * time.Millisecond,
		AutoTolerance: true,
	}
}

// NewSession builds a session for src with the given seed color samples,
// converts the full image to HSV once, derives the initial center and
// tolerances, and runs the first recompute synchronously so the session
// is never observed without results.
func NewSession(src image.Image, seeds []RGB, opts Options) (*Session, error) {
	if src == nil {
		return nil, fmt.Errorf("new session: nil image")
	}

	img := ToNRGBA(src)
	hsv, err := ConvertHSV(img)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		img:       img,
		w:         hsv.W,
		h:         hsv.H,
		hsv:       hsv,
		samples:   NewSampleSet(seeds),
		cuts:      NewCutLayer(hsv.W, hsv.H),
		autoTol:   opts.AutoTolerance,
		scale:     opts.Scale,
		listeners: make(map[EventType][]EventListener),
	}
	s.debounce = NewDebouncer(opts.DebounceDelay, s.Recompute)

	// Initial tolerances come from the seed spread when possible.
	s.tol = DefaultTolerances()
	if c, ok := s.samples.Center(); ok && len(seeds) > 1 {
		s.tol = s.samples.AutoTolerances(c, s.tol)
	}

	s.Recompute()
	return s, nil
}

// On registers an event listener.
func (s *Session) On(event EventType, listener EventListener) {
	s.mu.Lock()
	s.listeners[event] = append(s.listeners[event], listener)
	s.mu.Unlock()
}

func (s *Session) emit(event EventType, data interface{}) {
	s.mu.Lock()
	listeners := s.listeners[event]
	s.mu.Unlock()
	for _, l := range listeners {
		l(data)
	}
}

// Image returns the session's source image. Callers must treat it as
// read-only.
func (s *Session) Image() *image.NRGBA {
	return s.img
}

// Size returns the source image dimensions.
func (s *Session) Size() (w, h int) {
	return s.w, s.h
}

// Center returns the current aggregate sample color; ok is false when no
// samples exist.
func (s *Session) Center() (Center, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples.Center()
}

// Tolerances returns the current tolerance set.
func (s *Session) Tolerances() Tolerances {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tol
}

// SetTolerances updates the operator-controlled tolerances and schedules
// a recompute.
func (s *Session) SetTolerances(t Tolerances) {
	s.mu.Lock()
	s.tol = t
	s.mu.Unlock()
	s.emit(EventTolerancesChanged, t)
	s.debounce.Trigger()
}

// SetMinArea updates only the minimum-area threshold.
func (s *Session) SetMinArea(minArea int) {
	s.mu.Lock()
	s.tol.MinArea = minArea
	t := s.tol
	s.mu.Unlock()
	s.emit(EventTolerancesChanged, t)
	s.debounce.Trigger()
}

// SetAutoTolerance toggles auto-derived tolerances. Enabling it
// immediately re-derives from the current samples.
func (s *Session) SetAutoTolerance(enabled bool) {
	s.mu.Lock()
	s.autoTol = enabled
	s.mu.Unlock()
	if enabled {
		s.refreshCenter()
		s.debounce.Trigger()
	}
}

// SetScale updates the calibrated length per pixel and refreshes the
// scaled statistics without a full recompute.
func (s *Session) SetScale(scale float64) {
	s.mu.Lock()
	s.scale = scale
	s.stats.ScaledArea = float64(s.stats.TotalAreaPx) * scale * scale
	st := s.stats
	s.mu.Unlock()
	s.emit(EventRecomputed, st)
}

// AddSampleAt picks the pixel color at (x, y), clamped into the image,
// appends it to the sample set, refreshes the center (and tolerances when
// auto mode is on), and schedules a recompute. It returns the sampled
// color.
func (s *Session) AddSampleAt(x, y int) RGB {
	x = clampInt(x, 0, s.w-1)
	y = clampInt(y, 0, s.h-1)
	off := y*s.img.Stride + x*4
	c := RGB{R: s.img.Pix[off], G: s.img.Pix[off+1], B: s.img.Pix[off+2]}

	s.mu.Lock()
	s.samples.Add(c)
	s.mu.Unlock()

	s.refreshCenter()
	s.debounce.Trigger()
	return c
}

// UndoSample removes the most recently added sample and reports whether
// one was removed. Seed samples cannot be undone.
func (s *Session) UndoSample() bool {
	s.mu.Lock()
	ok := s.samples.Undo()
	s.mu.Unlock()
	if ok {
		s.refreshCenter()
		s.debounce.Trigger()
	}
	return ok
}

// Samples returns all current samples, seeds first.
func (s *Session) Samples() []RGB {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples.All()
}

// refreshCenter recomputes the aggregate center and, in auto mode, the
// tolerances, emitting change events for both.
func (s *Session) refreshCenter() {
	s.mu.Lock()
	c, ok := s.samples.Center()
	var tol Tolerances
	tolChanged := false
	if ok && s.autoTol {
		s.tol = s.samples.AutoTolerances(c, s.tol)
		tol = s.tol
		tolChanged = true
	}
	s.mu.Unlock()

	if ok {
		s.emit(EventCenterChanged, c)
	}
	if tolChanged {
		s.emit(EventTolerancesChanged, tol)
	}
}

// PaintCut rasterizes a cut stroke in full-image coordinates and
// schedules a recompute. Out-of-range stroke coordinates are fine; the
// rasterizer clips to the image extents.
func (s *Session) PaintCut(points []geometry.Point2D, radius float64) {
	s.mu.Lock()
	s.cuts.Paint(points, radius)
	s.mu.Unlock()
	s.debounce.Trigger()
}

// UndoCut removes the most recent cut stroke, rebuilding the cut mask
// from the survivors, and schedules a recompute when something changed.
func (s *Session) UndoCut() bool {
	s.mu.Lock()
	ok := s.cuts.Undo()
	s.mu.Unlock()
	if ok {
		s.debounce.Trigger()
	}
	return ok
}

// ClearCuts removes all cut strokes.
func (s *Session) ClearCuts() {
	s.mu.Lock()
	empty := s.cuts.Empty()
	s.cuts.Clear()
	s.mu.Unlock()
	if !empty {
		s.debounce.Trigger()
	}
}

// CutStrokes returns the number of surviving cut strokes.
func (s *Session) CutStrokes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cuts.StrokeCount()
}

// Recompute runs the full pipeline synchronously: similarity mask over
// the cached HSV planes, cut subtraction, component extraction with
// min-area erasure, ranking, centroids, statistics. With no samples the
// pipeline degenerates to an empty result rather than failing.
func (s *Session) Recompute() {
	s.mu.Lock()

	center, ok := s.samples.Center()
	var mask *Mask
	if ok {
		mask = MatchHSV(s.hsv, center.H, center.S, center.V, s.tol)
		if !s.cuts.Empty() {
			mask.AndNot(s.cuts.Mask())
		}
	} else {
		mask = NewMask(s.w, s.h)
	}

	labels, particles := Extract(mask, s.tol.MinArea)

	total := 0
	for _, p := range particles {
		total += p.Area
	}
	imgArea := s.w * s.h
	coverage := 0.0
	if imgArea > 0 {
		coverage = float64(total) / float64(imgArea) * 100
	}

	s.mask = mask
	s.labels = labels
	s.particles = particles
	s.stats = Stats{
		Count:       len(particles),
		TotalAreaPx: total,
		Coverage:    coverage,
		ScaledArea:  float64(total) * s.scale * s.scale,
	}
	st := s.stats
	s.mu.Unlock()

	s.emit(EventRecomputed, st)
}

// Flush forces a pending debounced recompute to run now.
func (s *Session) Flush() {
	s.debounce.Flush()
}

// Close cancels any pending recompute.
func (s *Session) Close() {
	s.debounce.Stop()
}

// Mask returns the latest similarity mask (after cut subtraction and
// min-area erasure). Callers must treat it as read-only.
func (s *Session) Mask() *Mask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mask
}

// Labels returns the latest rank label map.
func (s *Session) Labels() *LabelMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labels
}

// Particles returns the latest ranked particle list.
func (s *Session) Particles() []Particle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.particles
}

// Stats returns the latest summary statistics.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Scale returns the calibrated length per pixel, 0 when uncalibrated.
func (s *Session) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scale
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
