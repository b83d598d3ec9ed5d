package segment

import (
	"math"
	"sync"
	"testing"
	"time"

	"nanomeasurer/pkg/geometry"
)

func TestSessionEndToEnd(t *testing.T) {
	// 100×100 solid green with a 10×10 red square at (5,5).
	img := solidImage(100, 100, 0, 255, 0)
	for y := 5; y < 15; y++ {
		for x := 5; x < 15; x++ {
			setPixel(img, x, y, 255, 0, 0)
		}
	}

	s, err := NewSession(img, []RGB{{R: 255, G: 0, B: 0}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.SetTolerances(Tolerances{Hue: 5, Sat: 20, Val: 20, MinArea: 0})

	particles := s.Particles()
	if len(particles) != 1 {
		t.Fatalf("got %d particles, want 1", len(particles))
	}
	p := particles[0]
	if p.Area != 100 {
		t.Errorf("area = %d, want 100", p.Area)
	}
	if math.Abs(p.Centroid.X-9.5) > 0.01 || math.Abs(p.Centroid.Y-9.5) > 0.01 {
		t.Errorf("centroid = %+v, want (9.5, 9.5)", p.Centroid)
	}

	st := s.Stats()
	if st.Count != 1 || st.TotalAreaPx != 100 {
		t.Errorf("stats = %+v", st)
	}
	if math.Abs(st.Coverage-1.0) > 1e-9 {
		t.Errorf("coverage = %v%%, want 1%%", st.Coverage)
	}
}

func TestSessionNoSamplesMatchesNothing(t *testing.T) {
	s, err := NewSession(solidImage(10, 10, 50, 50, 50), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if st := s.Stats(); st.Count != 0 || st.TotalAreaPx != 0 || st.Coverage != 0 {
		t.Errorf("stats = %+v, want zeros", st)
	}
	if s.Mask().Count() != 0 {
		t.Error("mask should be empty with no samples")
	}
}

func TestSessionCutSplitsComponent(t *testing.T) {
	// One solid red bar; a vertical cut through the middle splits it in two.
	img := solidImage(30, 10, 0, 0, 0)
	for y := 4; y < 7; y++ {
		for x := 0; x < 30; x++ {
			setPixel(img, x, y, 255, 0, 0)
		}
	}

	s, err := NewSession(img, []RGB{{R: 255}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.SetTolerances(Tolerances{Hue: 5, Sat: 20, Val: 20})

	if got := len(s.Particles()); got != 1 {
		t.Fatalf("before cut: %d particles, want 1", got)
	}

	s.PaintCut([]geometry.Point2D{{X: 15, Y: 0}, {X: 15, Y: 9}}, 1)
	if got := len(s.Particles()); got != 2 {
		t.Fatalf("after cut: %d particles, want 2", got)
	}

	if !s.UndoCut() {
		t.Fatal("undo cut failed")
	}
	if got := len(s.Particles()); got != 1 {
		t.Errorf("after undo: %d particles, want 1", got)
	}
}

func TestSessionAddSampleClamps(t *testing.T) {
	img := solidImage(10, 10, 12, 34, 56)
	s, err := NewSession(img, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	c := s.AddSampleAt(-100, 500)
	if c != (RGB{R: 12, G: 34, B: 56}) {
		t.Errorf("clamped sample = %+v", c)
	}
	if got := len(s.Samples()); got != 1 {
		t.Errorf("sample count = %d, want 1", got)
	}
}

func TestSessionAutoToleranceOnSampleChange(t *testing.T) {
	img := solidImage(10, 10, 255, 0, 0)
	setPixel(img, 0, 0, 0, 0, 255)

	s, err := NewSession(img, []RGB{{R: 255}}, Options{AutoTolerance: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	before := s.Tolerances()
	s.AddSampleAt(0, 0) // blue, far from red
	after := s.Tolerances()
	if after.Hue <= before.Hue {
		t.Errorf("auto tolerance did not widen hue: %v -> %v", before.Hue, after.Hue)
	}

	s.UndoSample()
	restored := s.Tolerances()
	if restored.Hue != before.Hue {
		t.Errorf("tolerance after undo = %v, want %v", restored.Hue, before.Hue)
	}
}

func TestSessionManualToleranceSurvivesSampleChange(t *testing.T) {
	img := solidImage(10, 10, 255, 0, 0)
	s, err := NewSession(img, []RGB{{R: 255}}, Options{AutoTolerance: false})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SetTolerances(Tolerances{Hue: 33, Sat: 44, Val: 55, MinArea: 6})
	s.AddSampleAt(3, 3)
	if tol := s.Tolerances(); tol.Hue != 33 || tol.Sat != 44 || tol.Val != 55 {
		t.Errorf("manual tolerances changed by sample add: %+v", tol)
	}
}

func TestSessionScaledStats(t *testing.T) {
	img := solidImage(10, 10, 255, 0, 0)
	s, err := NewSession(img, []RGB{{R: 255}}, Options{Scale: 2.5})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.SetTolerances(Tolerances{Hue: 5, Sat: 20, Val: 20})

	st := s.Stats()
	if st.TotalAreaPx != 100 {
		t.Fatalf("total area = %d, want 100", st.TotalAreaPx)
	}
	if math.Abs(st.ScaledArea-100*2.5*2.5) > 1e-9 {
		t.Errorf("scaled area = %v, want 625", st.ScaledArea)
	}
}

func TestSessionDebounceCoalesces(t *testing.T) {
	img := solidImage(20, 20, 255, 0, 0)

	var mu sync.Mutex
	recomputes := 0

	s, err := NewSession(img, []RGB{{R: 255}}, Options{DebounceDelay: 30 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.On(EventRecomputed, func(interface{}) {
		mu.Lock()
		recomputes++
		mu.Unlock()
	})

	// Rapid slider drags: only the last scheduled recompute may fire.
	for i := 0; i < 10; i++ {
		s.SetMinArea(i)
	}
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	n := recomputes
	mu.Unlock()
	if n != 1 {
		t.Errorf("recomputes = %d, want 1 (coalesced)", n)
	}
}

func TestSessionFlushRunsPending(t *testing.T) {
	img := solidImage(20, 20, 255, 0, 0)
	s, err := NewSession(img, []RGB{{R: 255}}, Options{DebounceDelay: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// The min-area change is pending behind an hour-long debounce, so the
	// results still reflect the session's initial synchronous compute.
	s.SetMinArea(1000)
	if got := len(s.Particles()); got != 1 {
		t.Fatalf("particles before flush = %d, want 1", got)
	}

	s.Flush()
	if got := len(s.Particles()); got != 0 {
		t.Errorf("particles after flush = %d, want 0 (min area exceeds image)", got)
	}
}
