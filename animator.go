package magnify

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TransformTween interpolates scale and translate between two transforms
// over a duration. Call Update(dt) each frame. The engine itself only
// emits instantaneous targets; this is the ready-made easing for hosts
// that want the animated transitions the engine flags.
type TransformTween struct {
	tweens [3]*gween.Tween
	cur    Transform
	Done   bool
}

// NewTransformTween creates a tween from one transform to another over
// the given duration using the easing function.
func NewTransformTween(from, to Transform, duration time.Duration, fn ease.TweenFunc) *TransformTween {
	d := float32(duration.Seconds())
	tt := &TransformTween{cur: from}
	tt.tweens[0] = gween.New(float32(from.Scale), float32(to.Scale), d, fn)
	tt.tweens[1] = gween.New(float32(from.X), float32(to.X), d, fn)
	tt.tweens[2] = gween.New(float32(from.Y), float32(to.Y), d, fn)
	return tt
}

// Update advances the tween by dt seconds and returns the interpolated
// transform. Updates after completion are no-ops returning the final
// transform.
func (tt *TransformTween) Update(dt float32) (Transform, bool) {
	if tt.Done {
		return tt.cur, true
	}
	allDone := true
	sv, done := tt.tweens[0].Update(dt)
	allDone = allDone && done
	xv, done := tt.tweens[1].Update(dt)
	allDone = allDone && done
	yv, done := tt.tweens[2].Update(dt)
	allDone = allDone && done

	tt.cur = Transform{Scale: float64(sv), X: float64(xv), Y: float64(yv)}
	tt.Done = allDone
	return tt.cur, tt.Done
}

// Smoother subscribes to an engine's transform notifications and turns
// them into per-frame render transforms: immediate updates pass straight
// through, animated ones ease over their suggested duration.
type Smoother struct {
	cur    Transform
	tween  *TransformTween
	easeFn ease.TweenFunc
	handle NotifyHandle
}

// NewSmoother attaches a Smoother to the engine with the given easing
// function. Detach it before discarding to release the subscription.
func NewSmoother(e *Engine, fn ease.TweenFunc) *Smoother {
	s := &Smoother{cur: e.Transform(), easeFn: fn}
	s.handle = e.OnTransform(func(ctx TransformContext) {
		target := Transform{Scale: ctx.Scale, X: ctx.X, Y: ctx.Y}
		if ctx.Animated && ctx.Duration > 0 {
			s.tween = NewTransformTween(s.cur, target, ctx.Duration, s.easeFn)
			return
		}
		s.tween = nil
		s.cur = target
	})
	return s
}

// Update advances any active easing by dt seconds and returns the
// transform to render this frame.
func (s *Smoother) Update(dt float32) Transform {
	if s.tween != nil {
		t, done := s.tween.Update(dt)
		s.cur = t
		if done {
			s.tween = nil
		}
	}
	return s.cur
}

// Transform returns the most recent render transform without advancing.
func (s *Smoother) Transform() Transform {
	return s.cur
}

// Detach releases the engine subscription. Idempotent.
func (s *Smoother) Detach() {
	s.handle.Remove()
}
