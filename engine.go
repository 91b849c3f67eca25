package magnify

import (
	"errors"
	"math"
	"time"
)

// --- Errors ---

var (
	// ErrNoGeometry is returned when an engine is created without a
	// geometry provider.
	ErrNoGeometry = errors.New("magnify: engine requires a geometry provider")
	// ErrDetached is returned by programmatic operations called after
	// Detach. The operation is a no-op.
	ErrDetached = errors.New("magnify: engine is detached")
)

// --- Constants ---

const (
	// restScaleEpsilon is the tolerance for treating a scale as the
	// un-zoomed rest scale of 1.0.
	restScaleEpsilon = 1e-4
	// naturalPollInterval is how often Update re-checks for natural
	// content dimensions while the fit-natural max scale is unresolved.
	naturalPollInterval = float32(0.1) // seconds
	// minScaleFloor is the effective lower bound when Options.MinScale
	// is zero: scale must stay strictly positive or anchored zoom
	// ratios stop being defined.
	minScaleFloor = 1e-6
)

// --- Transform ---

// Transform is a (scale, translateX, translateY) tuple. The translate is
// the content origin's offset inside the container, in pixels.
type Transform struct {
	Scale float64
	X, Y  float64
}

// identityTransform is the rest state: unscaled, untranslated.
var identityTransform = Transform{Scale: 1}

// TransformContext carries a transform update to the host.
type TransformContext struct {
	// Scale, X, Y is the target transform to render.
	Scale, X, Y float64
	// Animated reports whether the host should ease toward the target
	// rather than applying it immediately.
	Animated bool
	// Duration is the suggested easing duration when Animated is set.
	Duration time.Duration
}

// --- Notification registry ---

type transformHandler struct {
	id uint32
	fn func(TransformContext)
}

type scaleHandler struct {
	id uint32
	fn func(float64)
}

type notifyRegistry struct {
	transform []transformHandler
	scale     []scaleHandler
	nextID    uint32
}

// NotifyHandle allows removing a registered engine notification callback.
type NotifyHandle struct {
	id    uint32
	reg   *notifyRegistry
	scale bool
}

// Remove unregisters this callback so it no longer fires.
func (h NotifyHandle) Remove() {
	if h.reg == nil {
		return
	}
	if h.scale {
		h.reg.scale = removeScaleHandler(h.reg.scale, h.id)
	} else {
		h.reg.transform = removeTransformHandler(h.reg.transform, h.id)
	}
}

func removeTransformHandler(s []transformHandler, id uint32) []transformHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = transformHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeScaleHandler(s []scaleHandler, id uint32) []scaleHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = scaleHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Engine ---

// Engine owns the authoritative pan/zoom transform of one content
// surface. It applies per-gesture update rules, clamps the result
// against the configured limits, and notifies the host on every change.
//
// The engine is synchronous and single-threaded: every operation runs to
// completion before returning, and independent engines share no state.
// Geometry is re-read from the provider on every step, never cached.
type Engine struct {
	geom Geometry
	opts Options

	cur       Transform
	committed Transform

	// Active gesture session. The engine mirrors the classifier: at
	// most one continuous gesture at a time.
	active           GestureKind
	panStartX        float64
	panStartY        float64
	pinchAnchorX     float64
	pinchAnchorY     float64
	pinchInitialDist float64

	// Fit-natural max scale, resolved once natural dimensions appear.
	maxScale         float64
	maxScaleResolved bool
	pollAccum        float32

	detached bool

	handlers notifyRegistry
}

// NewEngine creates an Engine at rest scale over the given geometry.
// With Options.MaxScale left at zero the upper zoom bound resolves to
// the content's natural resolution once its dimensions become known;
// drive [Engine.Update] each frame until then.
func NewEngine(geom Geometry, opts Options) (*Engine, error) {
	if geom == nil {
		return nil, ErrNoGeometry
	}
	e := &Engine{
		geom:      geom,
		opts:      opts,
		cur:       identityTransform,
		committed: identityTransform,
	}
	if opts.MaxScale > 0 {
		e.maxScale = opts.MaxScale
		e.maxScaleResolved = true
	} else {
		// Resolve immediately when dimensions are already available.
		e.resolveNaturalMaxScale()
	}
	return e, nil
}

// OnTransform registers a callback fired with the full transform tuple
// on every update, including mid-gesture steps and the settle after a
// gesture ends.
func (e *Engine) OnTransform(fn func(TransformContext)) NotifyHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.transform = append(e.handlers.transform, transformHandler{id: id, fn: fn})
	return NotifyHandle{id: id, reg: &e.handlers}
}

// OnScaleChanged registers a callback fired with the new scale on every
// committed scale change, including clamped ones.
func (e *Engine) OnScaleChanged(fn func(float64)) NotifyHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.scale = append(e.handlers.scale, scaleHandler{id: id, fn: fn})
	return NotifyHandle{id: id, reg: &e.handlers, scale: true}
}

// Transform returns the current transform tuple.
func (e *Engine) Transform() Transform {
	return e.cur
}

// Geometry returns the engine's geometry provider.
func (e *Engine) Geometry() Geometry {
	return e.geom
}

// Scale returns the current magnification.
func (e *Engine) Scale() float64 {
	return e.cur.Scale
}

// Dragging reports whether a pan gesture would currently move the
// content: panning is enabled and the scaled content exceeds the
// container on either axis. Hosts use this for cursor affordances.
func (e *Engine) Dragging() bool {
	if e.detached || !e.opts.PanEnabled {
		return false
	}
	cb := e.geom.ContainerBounds()
	w, h := e.geom.ContentSize()
	return w*e.cur.Scale > cb.Width || h*e.cur.Scale > cb.Height
}

// Update advances the engine's deferred work by dt seconds. The only
// deferred work is resolving the fit-natural max scale, re-checked at a
// fixed interval until the content's natural dimensions are non-zero.
// Call once per frame; a no-op after Detach or once resolved.
func (e *Engine) Update(dt float32) {
	if e.detached || e.maxScaleResolved {
		return
	}
	e.pollAccum += dt
	if e.pollAccum < naturalPollInterval {
		return
	}
	e.pollAccum = 0
	e.resolveNaturalMaxScale()
}

// Detach tears the engine down: notification callbacks are released and
// the natural-size poll stops. Programmatic operations return
// ErrDetached afterwards; gesture events are dropped. Idempotent.
func (e *Engine) Detach() {
	if e.detached {
		return
	}
	e.detached = true
	e.active = GestureNone
	e.handlers.transform = nil
	e.handlers.scale = nil
}

// Detached reports whether Detach has been called.
func (e *Engine) Detached() bool {
	return e.detached
}

// --- Pan ---

// PanStart opens a pan session at the given container-relative position.
func (e *Engine) PanStart(x, y float64) {
	if e.detached || e.active != GestureNone {
		return
	}
	e.active = GesturePan
	e.panStartX = x
	e.panStartY = y
}

// PanMove updates the translate from the movement since PanStart.
// Ignored while panning is disabled or the scale is below the pan
// threshold, so the transform stays put.
func (e *Engine) PanMove(x, y float64) {
	if e.detached || e.active != GesturePan {
		return
	}
	if !e.opts.PanEnabled || e.cur.Scale < e.opts.MinScaleForPan {
		return
	}
	t := e.cur
	t.X = e.committed.X + (x - e.panStartX)
	t.Y = e.committed.Y + (y - e.panStartY)
	if e.opts.PanClampEnabled {
		t = e.panClamp(t)
	}
	e.cur = t
	e.emitTransform(false)
}

// PanEnd closes the pan session and commits the result.
func (e *Engine) PanEnd() {
	if e.detached || e.active != GesturePan {
		return
	}
	e.active = GestureNone
	e.commit()
	e.emitTransform(false)
}

// --- Pinch ---

// PinchStart opens a pinch session. The anchor offset from the committed
// translate to the pinch midpoint is captured once, here; it is what
// keeps the midpoint visually fixed for the rest of the gesture.
func (e *Engine) PinchStart(centerX, centerY, distance float64) {
	if e.detached || e.active == GesturePinch {
		return
	}
	if e.active == GesturePan {
		// A pan superseded mid-session keeps its accumulated movement.
		e.active = GestureNone
		e.commit()
	}
	e.active = GesturePinch
	e.pinchAnchorX = centerX - e.committed.X
	e.pinchAnchorY = centerY - e.committed.Y
	e.pinchInitialDist = distance
}

// PinchMove recomputes scale and translate from the current contact
// separation. The scale is the committed scale times the separation
// ratio; the translate compensates so the anchor stays fixed, then both
// are clamped.
func (e *Engine) PinchMove(distance float64) {
	if e.detached || e.active != GesturePinch {
		return
	}
	if e.pinchInitialDist <= 0 || distance <= 0 {
		return
	}
	r := distance / e.pinchInitialDist
	t := Transform{
		Scale: e.committed.Scale * r,
		X:     e.committed.X - e.pinchAnchorX*(r-1),
		Y:     e.committed.Y - e.pinchAnchorY*(r-1),
	}
	e.cur = e.limitZoom(t)
	e.emitTransform(false)
}

// PinchEnd closes the pinch session, applies the pan clamp if enabled,
// and commits the result.
func (e *Engine) PinchEnd() {
	if e.detached || e.active != GesturePinch {
		return
	}
	e.active = GestureNone
	if e.opts.PanClampEnabled {
		e.cur = e.panClamp(e.cur)
	}
	e.commit()
	e.emitTransform(false)
}

// --- Wheel ---

// WheelZoom applies one wheel tick at the given cursor position.
// dir > 0 zooms in, dir < 0 zooms out. The anchor offset is computed
// fresh from the cursor each tick since wheel has no persistent session,
// and the result is committed immediately.
func (e *Engine) WheelZoom(cursorX, cursorY float64, dir int) {
	if e.detached || !e.opts.WheelEnabled || dir == 0 {
		return
	}
	step := e.opts.WheelStep
	target := e.committed.Scale + step*float64(sign(dir))

	// Snap to the rest scale when the tick moves toward it and lands
	// within one step, and to the max bound likewise, instead of
	// stopping just short or just past. Inclusive comparisons so the
	// boundary does not depend on the step's binary representation.
	minScale, maxScale := e.scaleBounds()
	towardRest := (e.committed.Scale > 1 && dir < 0) || (e.committed.Scale < 1 && dir > 0)
	if towardRest && math.Abs(target-1) <= step {
		target = 1
	}
	if dir > 0 && !math.IsInf(maxScale, 1) && maxScale-target <= step {
		target = maxScale
	}
	target = clamp(target, minScale, maxScale)
	if e.committed.Scale <= 0 || target == e.committed.Scale {
		return
	}

	r := target / e.committed.Scale
	anchorX := cursorX - e.committed.X
	anchorY := cursorY - e.committed.Y
	t := Transform{
		Scale: target,
		X:     e.committed.X - anchorX*(r-1),
		Y:     e.committed.Y - anchorY*(r-1),
	}
	if e.opts.PanClampEnabled {
		t = e.panClamp(t)
	}
	e.cur = t
	e.commit()
	e.emitTransform(false)
}

// --- Double-tap / programmatic zoom ---

// DoubleTap toggles between rest scale and DoubleTapScale, anchored at
// the tap point. Flagged as animated either way.
func (e *Engine) DoubleTap(x, y float64) {
	if e.detached || !e.opts.DoubleTapEnabled {
		return
	}
	if e.atRest() {
		e.zoomAnchored(e.opts.DoubleTapScale, x, y)
	} else {
		e.reset()
	}
}

// ToggleZoom toggles between rest scale and StepZoomScale, anchored at
// the container center. Intended for button-driven zoom where no pointer
// position exists.
func (e *Engine) ToggleZoom() error {
	if e.detached {
		return ErrDetached
	}
	if e.atRest() {
		cx, cy := e.geom.ContainerBounds().Center()
		e.zoomAnchored(e.opts.StepZoomScale, cx, cy)
	} else {
		e.reset()
	}
	return nil
}

// ZoomIn increases the scale by step, clamped exactly to the upper
// bound, anchored at the container center. The resulting scale is
// returned so callers can disable controls at the limit.
func (e *Engine) ZoomIn(step float64) (float64, error) {
	return e.stepZoom(step)
}

// ZoomOut decreases the scale by step, clamped exactly to the lower
// bound, anchored at the container center. The resulting scale is
// returned so callers can disable controls at the limit.
func (e *Engine) ZoomOut(step float64) (float64, error) {
	return e.stepZoom(-step)
}

func (e *Engine) stepZoom(delta float64) (float64, error) {
	if e.detached {
		return 0, ErrDetached
	}
	minScale, maxScale := e.scaleBounds()
	target := clamp(e.committed.Scale+delta, minScale, maxScale)
	if target == e.committed.Scale {
		return e.cur.Scale, nil
	}
	cx, cy := e.geom.ContainerBounds().Center()
	e.zoomAnchored(target, cx, cy)
	return e.cur.Scale, nil
}

// ZoomToPoint zooms directly to targetScale anchored at (x, y) — a
// binary precision zoom. If the view is already zoomed in at all, or
// already at or above the target, it resets to rest instead, so clicking
// toggles between rest and a fixed inspection scale.
func (e *Engine) ZoomToPoint(x, y, targetScale float64) error {
	if e.detached {
		return ErrDetached
	}
	if !e.atRest() || e.cur.Scale >= targetScale {
		e.reset()
		return nil
	}
	e.zoomAnchored(targetScale, x, y)
	return nil
}

// ResetZoom returns to rest: scale 1, translate (0, 0), animated.
// Idempotent regardless of prior state.
func (e *Engine) ResetZoom() error {
	if e.detached {
		return ErrDetached
	}
	e.reset()
	return nil
}

// zoomAnchored zooms to target (clamped) keeping the container-relative
// point (x, y) visually fixed, commits, and emits an animated update.
func (e *Engine) zoomAnchored(target, x, y float64) {
	minScale, maxScale := e.scaleBounds()
	target = clamp(target, minScale, maxScale)
	if e.committed.Scale <= 0 {
		return
	}
	r := target / e.committed.Scale
	anchorX := x - e.committed.X
	anchorY := y - e.committed.Y
	t := Transform{
		Scale: target,
		X:     e.committed.X - anchorX*(r-1),
		Y:     e.committed.Y - anchorY*(r-1),
	}
	if e.opts.PanClampEnabled {
		t = e.panClamp(t)
	}
	e.cur = t
	e.commit()
	e.emitTransform(true)
}

func (e *Engine) reset() {
	e.cur = identityTransform
	e.commit()
	e.emitTransform(true)
}

func (e *Engine) atRest() bool {
	return math.Abs(e.cur.Scale-1) <= restScaleEpsilon
}

// --- Constraints ---

// scaleBounds returns the effective [min, max] scale. While a
// fit-natural max is unresolved there is no upper constraint; a later
// resolution clamps retroactively.
func (e *Engine) scaleBounds() (minScale, maxScale float64) {
	minScale = e.opts.MinScale
	if minScale <= 0 {
		minScale = minScaleFloor
	}
	if e.maxScaleResolved {
		return minScale, e.maxScale
	}
	return minScale, math.Inf(1)
}

// limitZoom clamps the scale into bounds and re-derives the translate
// proportionally: the translate's ratio against the scaled-size overflow
// is captured before the clamp and reapplied after, preserving the
// content's position relative to its own scaled bounds. Clamping the
// absolute pixel offset instead would make the content jump the moment
// the limit engages mid-gesture.
func (e *Engine) limitZoom(t Transform) Transform {
	minScale, maxScale := e.scaleBounds()
	if t.Scale >= minScale && t.Scale <= maxScale {
		return t
	}
	clamped := clamp(t.Scale, minScale, maxScale)
	w, h := e.geom.ContentSize()
	t.X = rescaleOffset(t.X, w, t.Scale, clamped)
	t.Y = rescaleOffset(t.Y, h, t.Scale, clamped)
	t.Scale = clamped
	return t
}

// rescaleOffset maps offset from one scale's overflow band to another's.
// A zero-size denominator means no constraint change this step.
func rescaleOffset(offset, size, scale, newScale float64) float64 {
	excess := size*scale - size
	if size <= 0 || excess == 0 {
		return offset
	}
	ratio := offset / excess
	return ratio * (size*newScale - size)
}

// panClamp constrains the translate per axis, independently: content
// smaller than the container is centered on that axis; larger content
// may not pull an edge past the matching container edge.
func (e *Engine) panClamp(t Transform) Transform {
	cb := e.geom.ContainerBounds()
	w, h := e.geom.ContentSize()
	t.X = clampAxis(t.X, cb.Width, w*t.Scale)
	t.Y = clampAxis(t.Y, cb.Height, h*t.Scale)
	return t
}

// clampAxis clamps a single axis offset. Zero-size geometry (hidden
// container, unmeasured content) leaves the offset untouched.
func clampAxis(offset, container, scaled float64) float64 {
	if container <= 0 || scaled <= 0 {
		return offset
	}
	if scaled < container {
		return (container - scaled) / 2
	}
	return clamp(offset, container-scaled, 0)
}

// --- Commit & notify ---

// commit snapshots the current transform as the baseline for the next
// gesture's delta math. Runs at gesture end and after programmatic
// operations, never mid-gesture.
func (e *Engine) commit() {
	prev := e.committed.Scale
	e.committed = e.cur
	if e.committed.Scale != prev {
		for _, h := range e.handlers.scale {
			h.fn(e.committed.Scale)
		}
	}
}

func (e *Engine) emitTransform(animated bool) {
	ctx := TransformContext{
		Scale:    e.cur.Scale,
		X:        e.cur.X,
		Y:        e.cur.Y,
		Animated: animated,
	}
	if animated {
		ctx.Duration = e.opts.TransitionDuration
	}
	for _, h := range e.handlers.transform {
		h.fn(ctx)
	}
}

// resolveNaturalMaxScale computes maxScale = naturalWidth/renderedWidth
// once both are known, then clamps the current scale retroactively if it
// already exceeds the new bound.
func (e *Engine) resolveNaturalMaxScale() {
	nw, _ := e.geom.NaturalSize()
	rw, _ := e.geom.ContentSize()
	if nw <= 0 || rw <= 0 {
		return
	}
	e.maxScale = nw / rw
	e.maxScaleResolved = true

	if e.cur.Scale > e.maxScale {
		e.cur = e.limitZoom(e.cur)
		if e.active == GestureNone {
			e.commit()
		}
		e.emitTransform(false)
	}
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	return -1
}
