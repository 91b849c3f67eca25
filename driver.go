package magnify

import (
	"github.com/hajimehoshi/ebiten/v2"
)

const maxPointers = 10 // pointer 0 = mouse, 1-9 = touch

// --- Classifier/engine binding ---

// Binding connects a classifier's gesture events to an engine's update
// rules. Remove disconnects them.
type Binding struct {
	handles []CallbackHandle
}

// Remove unregisters every callback the binding installed. Safe to call
// more than once.
func (b Binding) Remove() {
	for _, h := range b.handles {
		h.Remove()
	}
}

// Bind routes classified gestures into engine operations: pan sessions
// to PanStart/PanMove/PanEnd, pinch sessions to the pinch rules,
// double-taps to the toggle zoom, and wheel ticks to wheel zoom with
// scroll-up mapped to zoom-in.
func Bind(c *Classifier, e *Engine) Binding {
	return Binding{handles: []CallbackHandle{
		c.OnPanStart(func(ctx PanContext) {
			e.PanStart(ctx.StartX, ctx.StartY)
		}),
		c.OnPan(func(ctx PanContext) {
			e.PanMove(ctx.X, ctx.Y)
		}),
		c.OnPanEnd(func(ctx PanContext) {
			e.PanEnd()
		}),
		c.OnPinchStart(func(ctx PinchContext) {
			e.PinchStart(ctx.CenterX, ctx.CenterY, ctx.Distance)
		}),
		c.OnPinch(func(ctx PinchContext) {
			e.PinchMove(ctx.Distance)
		}),
		c.OnPinchEnd(func(ctx PinchContext) {
			e.PinchEnd()
		}),
		c.OnDoubleTap(func(ctx TapContext) {
			e.DoubleTap(ctx.X, ctx.Y)
		}),
		c.OnWheel(func(ctx WheelContext) {
			dir := 0
			if ctx.DeltaY > 0 {
				dir = 1
			} else if ctx.DeltaY < 0 {
				dir = -1
			}
			e.WheelZoom(ctx.X, ctx.Y, dir)
		}),
	}}
}

// --- Ebitengine input driver ---

// Driver polls Ebitengine mouse, touch, and wheel state each frame and
// feeds the classifier with container-relative samples. It also advances
// the engine's deferred work, so a host needs exactly one
// [Driver.Update] call in its ebiten Update.
type Driver struct {
	classifier *Classifier
	engine     *Engine
	binding    Binding

	mouseDown       bool
	mouseX, mouseY  float64
	scratchTouchIDs []ebiten.TouchID
	touchUsed       [maxPointers]bool
	touchMap        [maxPointers]ebiten.TouchID
	touchX, touchY  [maxPointers]float64
	detached        bool
}

// NewDriver binds the classifier to the engine and returns a driver
// polling Ebitengine input for them.
func NewDriver(e *Engine, c *Classifier) *Driver {
	return &Driver{
		classifier: c,
		engine:     e,
		binding:    Bind(c, e),
	}
}

// Classifier returns the driven classifier, for registering additional
// gesture callbacks.
func (d *Driver) Classifier() *Classifier {
	return d.classifier
}

// Engine returns the driven engine.
func (d *Driver) Engine() *Engine {
	return d.engine
}

// Update polls input, feeds the classifier, and advances the engine by
// dt seconds. Call once per ebiten Update tick.
func (d *Driver) Update(dt float32) {
	if d.detached || d.engine.Detached() {
		return
	}

	cb := d.engine.Geometry().ContainerBounds()
	d.processMouse(cb)
	d.processWheel(cb)
	d.processTouches(cb)

	d.engine.Update(dt)
}

// Detach removes the binding and detaches the engine. Idempotent.
func (d *Driver) Detach() {
	if d.detached {
		return
	}
	d.detached = true
	d.binding.Remove()
	d.engine.Detach()
}

// processMouse feeds the mouse as pointer 0.
func (d *Driver) processMouse(cb Rect) {
	mx, my := ebiten.CursorPosition()
	x := float64(mx) - cb.X
	y := float64(my) - cb.Y
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	switch {
	case pressed && !d.mouseDown:
		d.classifier.Press(0, x, y)
	case !pressed && d.mouseDown:
		d.classifier.Release(0, x, y)
	case pressed && (x != d.mouseX || y != d.mouseY):
		d.classifier.Move(0, x, y)
	}
	d.mouseDown = pressed
	d.mouseX, d.mouseY = x, y
}

// processWheel feeds wheel samples at the current cursor position.
func (d *Driver) processWheel(cb Rect) {
	wx, wy := ebiten.Wheel()
	if wx == 0 && wy == 0 {
		return
	}
	mx, my := ebiten.CursorPosition()
	d.classifier.Wheel(float64(mx)-cb.X, float64(my)-cb.Y, wx, wy)
}

// processTouches feeds touches as pointers 1-9, mapping volatile touch
// IDs to stable slots for the classifier.
func (d *Driver) processTouches(cb Rect) {
	d.scratchTouchIDs = ebiten.AppendTouchIDs(d.scratchTouchIDs[:0])

	var activeSlots [maxPointers]bool
	for _, tid := range d.scratchTouchIDs {
		slot, fresh := d.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		x := float64(tx) - cb.X
		y := float64(ty) - cb.Y
		if fresh {
			d.classifier.Press(slot, x, y)
		} else if x != d.touchX[slot] || y != d.touchY[slot] {
			d.classifier.Move(slot, x, y)
		}
		d.touchX[slot] = x
		d.touchY[slot] = y
	}

	// Release slots whose touch disappeared this frame, at the last
	// known position.
	for i := 1; i < maxPointers; i++ {
		if d.touchUsed[i] && !activeSlots[i] {
			d.classifier.Release(i, d.touchX[i], d.touchY[i])
			d.touchUsed[i] = false
			d.touchMap[i] = 0
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9). Returns the
// existing slot, or allocates a new one and reports it fresh. Returns
// -1 if all slots are taken.
func (d *Driver) touchSlot(tid ebiten.TouchID) (slot int, fresh bool) {
	for i := 1; i < maxPointers; i++ {
		if d.touchUsed[i] && d.touchMap[i] == tid {
			return i, false
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !d.touchUsed[i] {
			d.touchUsed[i] = true
			d.touchMap[i] = tid
			return i, true
		}
	}
	return -1, false
}
