package magnify

import "time"

// Vec2 is a 2D vector used for positions, offsets, and sizes.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin
// at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the rectangle's center point.
func (r Rect) Center() (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// GestureKind identifies the type of an active gesture session.
// At most one session is active at a time.
type GestureKind uint8

const (
	GestureNone      GestureKind = iota // no active session
	GesturePan                          // single-contact drag
	GesturePinch                        // two-contact scale gesture
	GestureDoubleTap                    // discrete toggle-zoom tap pair
	GestureWheel                        // discrete wheel tick
)

// String returns a human-readable name for the gesture kind.
func (k GestureKind) String() string {
	switch k {
	case GestureNone:
		return "none"
	case GesturePan:
		return "pan"
	case GesturePinch:
		return "pinch"
	case GestureDoubleTap:
		return "double-tap"
	case GestureWheel:
		return "wheel"
	default:
		return "unknown"
	}
}

// Options configures an Engine. Construct with DefaultOptions and
// override fields before passing to NewEngine; the engine reads the
// struct as-is.
type Options struct {
	// MinScale is the lower zoom bound. The default of 0 places no
	// practical lower limit beyond scale staying positive.
	MinScale float64
	// MaxScale is the upper zoom bound. Zero means fit-to-natural-
	// resolution: the bound is resolved to naturalWidth/renderedWidth
	// once the content's natural dimensions become known.
	MaxScale float64

	// PanEnabled allows pan gestures to move the content.
	PanEnabled bool
	// PanClampEnabled keeps the content from exposing empty container
	// space: smaller-than-container content is centered per axis,
	// larger content may not pull an edge past the container edge.
	PanClampEnabled bool
	// MinScaleForPan is the scale below which pan gestures are ignored.
	// The default sits just above 1.0 so content at rest cannot be
	// dragged.
	MinScaleForPan float64

	// DoubleTapEnabled allows double-tap toggle zoom.
	DoubleTapEnabled bool
	// DoubleTapScale is the magnification a double-tap from rest zooms to.
	DoubleTapScale float64

	// WheelEnabled allows wheel-tick zoom.
	WheelEnabled bool
	// WheelStep is the scale change per wheel tick.
	WheelStep float64

	// StepZoomScale is the magnification ToggleZoom jumps to from rest
	// (button-driven toggle, anchored at the container center).
	StepZoomScale float64

	// TransitionDuration is the suggested easing duration attached to
	// transform notifications flagged as animated.
	TransitionDuration time.Duration
}

// DefaultOptions returns the recommended configuration: pan enabled
// without clamping, fit-natural max zoom, 0.2 wheel step, double-tap to
// 2x, 200 ms transitions.
func DefaultOptions() Options {
	return Options{
		MinScale:           0,
		MaxScale:           0, // fit natural resolution
		PanEnabled:         true,
		PanClampEnabled:    false,
		MinScaleForPan:     1.0001,
		DoubleTapEnabled:   true,
		DoubleTapScale:     2.0,
		WheelEnabled:       true,
		WheelStep:          0.2,
		StepZoomScale:      1.0,
		TransitionDuration: 200 * time.Millisecond,
	}
}

// clamp constrains v into [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
