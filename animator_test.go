package magnify

import (
	"math"
	"testing"
	"time"

	"github.com/tanema/gween/ease"
)

func transformNear(a, b Transform) bool {
	const eps = 1e-4
	return math.Abs(a.Scale-b.Scale) < eps &&
		math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps
}

// --- TransformTween ---

func TestTransformTweenReachesTarget(t *testing.T) {
	from := Transform{Scale: 1}
	to := Transform{Scale: 2, X: -100, Y: -50}
	tw := NewTransformTween(from, to, 200*time.Millisecond, ease.Linear)

	mid, done := tw.Update(0.1)
	if done {
		t.Fatal("tween done at the halfway point")
	}
	if !transformNear(mid, Transform{Scale: 1.5, X: -50, Y: -25}) {
		t.Errorf("halfway = %+v, want linear midpoint", mid)
	}

	end, done := tw.Update(0.1)
	if !done {
		t.Fatal("tween not done after full duration")
	}
	if !transformNear(end, to) {
		t.Errorf("end = %+v, want %+v", end, to)
	}
}

func TestTransformTweenAfterDoneNoOp(t *testing.T) {
	to := Transform{Scale: 3, X: 10, Y: 20}
	tw := NewTransformTween(Transform{Scale: 1}, to, 100*time.Millisecond, ease.Linear)

	tw.Update(1) // overshoot well past the duration
	got, done := tw.Update(1)
	if !done || !transformNear(got, to) {
		t.Errorf("post-done Update = (%+v, %v), want final transform", got, done)
	}
}

// --- Smoother ---

func TestSmootherPassesImmediateUpdatesThrough(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxScale = 3
	opts.MinScaleForPan = 0
	e, err := NewEngine(standardGeometry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSmoother(e, ease.Linear)

	e.PanStart(0, 0)
	e.PanMove(10, 20)

	// No Update needed: pan steps are not animated.
	if got := s.Transform(); !transformNear(got, Transform{Scale: 1, X: 10, Y: 20}) {
		t.Errorf("transform = %+v, want immediate pan result", got)
	}
}

func TestSmootherEasesAnimatedUpdates(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxScale = 3
	e, err := NewEngine(standardGeometry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSmoother(e, ease.Linear)

	e.DoubleTap(100, 100) // animated jump to (2, -100, -100) over 200ms

	if got := s.Transform(); !transformNear(got, Transform{Scale: 1}) {
		t.Fatalf("transform = %+v, must not jump before Update", got)
	}

	if got := s.Update(0.1); !transformNear(got, Transform{Scale: 1.5, X: -50, Y: -50}) {
		t.Errorf("halfway = %+v, want linear midpoint", got)
	}
	if got := s.Update(0.2); !transformNear(got, Transform{Scale: 2, X: -100, Y: -100}) {
		t.Errorf("end = %+v, want target", got)
	}

	// Settled: further updates hold the target.
	if got := s.Update(1); !transformNear(got, Transform{Scale: 2, X: -100, Y: -100}) {
		t.Errorf("settled = %+v, want target held", got)
	}
}

func TestSmootherRetargetsMidFlight(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxScale = 3
	e, err := NewEngine(standardGeometry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSmoother(e, ease.Linear)

	e.DoubleTap(100, 100)
	s.Update(0.1) // mid-flight at (1.5, -50, -50)

	if err := e.ResetZoom(); err != nil {
		t.Fatal(err)
	}
	// The new tween starts from the in-flight transform, not the old target.
	if got := s.Update(0.1); !transformNear(got, Transform{Scale: 1.25, X: -25, Y: -25}) {
		t.Errorf("retargeted halfway = %+v, want midpoint from in-flight state", got)
	}
	if got := s.Update(0.1); !transformNear(got, Transform{Scale: 1}) {
		t.Errorf("retargeted end = %+v, want rest", got)
	}
}

func TestSmootherDetachStopsFollowing(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxScale = 3
	e, err := NewEngine(standardGeometry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	s := NewSmoother(e, ease.Linear)

	s.Detach()
	s.Detach() // idempotent

	e.DoubleTap(100, 100)
	if got := s.Update(1); !transformNear(got, Transform{Scale: 1}) {
		t.Errorf("transform = %+v, must not follow the engine after Detach", got)
	}
}
