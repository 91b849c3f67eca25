package magnify

import (
	"math"
	"time"
)

// --- Constants ---

const (
	defaultDeadZone           = 4.0 // pixels of movement before a pan starts
	defaultDoubleTapWindow    = 300 * time.Millisecond
	defaultDoubleTapMaxOffset = 30.0 // pixels between the two taps
)

// --- Event types ---

// EventType identifies a kind of classified gesture event.
type EventType uint8

const (
	EventPanStart   EventType = iota // fires when movement exceeds the dead zone
	EventPan                         // fires on each move sample while panning
	EventPanEnd                      // fires when the panning contact releases
	EventPinchStart                  // fires on the first move with two contacts down
	EventPinch                       // fires on each move sample while pinching
	EventPinchEnd                    // fires when all contacts release
	EventTap                         // fires on press then release with no movement
	EventDoubleTap                   // fires on a second tap within the time+distance window
	EventWheel                       // fires once per wheel sample, in any state
)

// --- Gesture contexts ---

// TapContext carries the container-relative position of a tap or double-tap.
type TapContext struct {
	X, Y float64
}

// PanContext carries the state of a pan gesture sample.
type PanContext struct {
	// X, Y is the current contact position.
	X, Y float64
	// StartX, StartY is the contact position at press time.
	StartX, StartY float64
	// DeltaX, DeltaY is the total movement since press.
	DeltaX, DeltaY float64
}

// PinchContext carries the state of a pinch gesture sample.
type PinchContext struct {
	// CenterX, CenterY is the midpoint between the two contacts.
	CenterX, CenterY float64
	// Distance is the current separation of the two contacts.
	Distance float64
	// InitialDistance is the separation captured when the pinch started.
	InitialDistance float64
	// Ratio is Distance / InitialDistance (1.0 at pinch start).
	Ratio float64
}

// WheelContext carries a single wheel tick.
type WheelContext struct {
	// X, Y is the cursor position when the wheel moved.
	X, Y float64
	// DeltaX, DeltaY is the scroll offset. Positive DeltaY scrolls up.
	DeltaX, DeltaY float64
}

// --- Handler registry ---

type panHandler struct {
	id uint32
	fn func(PanContext)
}

type pinchHandler struct {
	id uint32
	fn func(PinchContext)
}

type tapHandler struct {
	id uint32
	fn func(TapContext)
}

type wheelHandler struct {
	id uint32
	fn func(WheelContext)
}

type gestureRegistry struct {
	panStart   []panHandler
	pan        []panHandler
	panEnd     []panHandler
	pinchStart []pinchHandler
	pinch      []pinchHandler
	pinchEnd   []pinchHandler
	tap        []tapHandler
	doubleTap  []tapHandler
	wheel      []wheelHandler
	nextID     uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *gestureRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
// The entry is removed from the slice to avoid nil iteration waste.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPanStart:
		h.reg.panStart = removePanHandler(h.reg.panStart, h.id)
	case EventPan:
		h.reg.pan = removePanHandler(h.reg.pan, h.id)
	case EventPanEnd:
		h.reg.panEnd = removePanHandler(h.reg.panEnd, h.id)
	case EventPinchStart:
		h.reg.pinchStart = removePinchHandler(h.reg.pinchStart, h.id)
	case EventPinch:
		h.reg.pinch = removePinchHandler(h.reg.pinch, h.id)
	case EventPinchEnd:
		h.reg.pinchEnd = removePinchHandler(h.reg.pinchEnd, h.id)
	case EventTap:
		h.reg.tap = removeTapHandler(h.reg.tap, h.id)
	case EventDoubleTap:
		h.reg.doubleTap = removeTapHandler(h.reg.doubleTap, h.id)
	case EventWheel:
		h.reg.wheel = removeWheelHandler(h.reg.wheel, h.id)
	}
}

func removePanHandler(s []panHandler, id uint32) []panHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = panHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removePinchHandler(s []pinchHandler, id uint32) []pinchHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = pinchHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeTapHandler(s []tapHandler, id uint32) []tapHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = tapHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

func removeWheelHandler(s []wheelHandler, id uint32) []wheelHandler {
	for i := range s {
		if s[i].id == id {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = wheelHandler{}
			return s[:len(s)-1]
		}
	}
	return s
}

// --- Classifier ---

type classifierPhase uint8

const (
	phaseIdle classifierPhase = iota
	phaseTouched
	phasePanning
	phasePinching
)

type contact struct {
	id             int
	x, y           float64
	startX, startY float64
}

// Classifier converts a stream of raw press/move/release/wheel samples
// into at most one active gesture session at a time. It is not safe for
// concurrent use; feed it from a single input callback or game loop.
//
// Malformed input — a move or release for an unknown contact, or a
// duplicate release with no contacts down — is dropped silently. Input is
// a live stream and the next valid sample self-corrects the state.
type Classifier struct {
	phase    classifierPhase
	contacts []contact
	deadZone float64

	// Highest simultaneous contact count of the current touch episode.
	// A tap only fires for single-contact episodes.
	episodePeak int

	// Pinch session. The two ids are fixed at session start; samples
	// from other contacts are ignored.
	pinchID0, pinchID1 int
	pinchInitialDist   float64
	pinchLastDist      float64
	pinchLastCX        float64
	pinchLastCY        float64

	// Double-tap tracking across episodes.
	doubleTapWindow    time.Duration
	doubleTapMaxOffset float64
	lastReleaseAt      time.Time
	lastReleaseX       float64
	lastReleaseY       float64
	haveLastRelease    bool
	doubleTapArmed     bool

	now func() time.Time

	handlers gestureRegistry
}

// NewClassifier creates a Classifier with default dead zone and
// double-tap window.
func NewClassifier() *Classifier {
	return &Classifier{
		deadZone:           defaultDeadZone,
		doubleTapWindow:    defaultDoubleTapWindow,
		doubleTapMaxOffset: defaultDoubleTapMaxOffset,
		now:                time.Now,
	}
}

// SetDeadZone sets the minimum movement in pixels before a pan starts.
func (c *Classifier) SetDeadZone(pixels float64) {
	c.deadZone = pixels
}

// SetDoubleTapWindow sets the maximum delay and spatial offset between
// two taps for them to register as a double-tap.
func (c *Classifier) SetDoubleTapWindow(window time.Duration, maxOffset float64) {
	c.doubleTapWindow = window
	c.doubleTapMaxOffset = maxOffset
}

// Session returns the kind of the currently active gesture session, or
// GestureNone. Discrete gestures (tap, double-tap, wheel) never appear
// here; they are emitted and done.
func (c *Classifier) Session() GestureKind {
	switch c.phase {
	case phasePanning:
		return GesturePan
	case phasePinching:
		return GesturePinch
	default:
		return GestureNone
	}
}

// ContactCount returns the number of contacts currently down.
func (c *Classifier) ContactCount() int {
	return len(c.contacts)
}

// --- Registration ---

// OnPanStart registers a callback fired when a pan session starts.
func (c *Classifier) OnPanStart(fn func(PanContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.panStart = append(c.handlers.panStart, panHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventPanStart}
}

// OnPan registers a callback fired on each move sample while panning.
func (c *Classifier) OnPan(fn func(PanContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.pan = append(c.handlers.pan, panHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventPan}
}

// OnPanEnd registers a callback fired when a pan session ends.
func (c *Classifier) OnPanEnd(fn func(PanContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.panEnd = append(c.handlers.panEnd, panHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventPanEnd}
}

// OnPinchStart registers a callback fired when a pinch session starts.
func (c *Classifier) OnPinchStart(fn func(PinchContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.pinchStart = append(c.handlers.pinchStart, pinchHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventPinchStart}
}

// OnPinch registers a callback fired on each move sample while pinching.
func (c *Classifier) OnPinch(fn func(PinchContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.pinch = append(c.handlers.pinch, pinchHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventPinch}
}

// OnPinchEnd registers a callback fired when a pinch session ends.
func (c *Classifier) OnPinchEnd(fn func(PinchContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.pinchEnd = append(c.handlers.pinchEnd, pinchHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventPinchEnd}
}

// OnTap registers a callback fired on a press-release with no movement.
func (c *Classifier) OnTap(fn func(TapContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.tap = append(c.handlers.tap, tapHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventTap}
}

// OnDoubleTap registers a callback fired on a qualifying second tap.
func (c *Classifier) OnDoubleTap(fn func(TapContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.doubleTap = append(c.handlers.doubleTap, tapHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventDoubleTap}
}

// OnWheel registers a callback fired once per wheel sample.
func (c *Classifier) OnWheel(fn func(WheelContext)) CallbackHandle {
	c.handlers.nextID++
	id := c.handlers.nextID
	c.handlers.wheel = append(c.handlers.wheel, wheelHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &c.handlers, event: EventWheel}
}

// --- Sample ingestion ---

// Press records a new contact going down at container-relative (x, y).
// A press for an already-down contact id updates its position.
func (c *Classifier) Press(id int, x, y float64) {
	if ct := c.findContact(id); ct != nil {
		ct.x, ct.y = x, y
		return
	}
	c.contacts = append(c.contacts, contact{id: id, x: x, y: y, startX: x, startY: y})
	n := len(c.contacts)

	switch {
	case n == 1:
		c.episodePeak = 1
		c.phase = phaseTouched
		c.doubleTapArmed = c.haveLastRelease &&
			c.now().Sub(c.lastReleaseAt) <= c.doubleTapWindow &&
			dist(x, y, c.lastReleaseX, c.lastReleaseY) <= c.doubleTapMaxOffset
		if !c.doubleTapArmed {
			// Out of window: this press restarts detection instead.
			c.haveLastRelease = false
		}
	case n == 2:
		if c.episodePeak < 2 {
			c.episodePeak = 2
		}
		// A second finger ends any pan in progress; the pinch session
		// itself starts on the first move sample with both contacts down.
		if c.phase == phasePanning {
			c.emitPanEnd(c.contacts[0])
		}
		if c.phase != phasePinching {
			c.phase = phaseTouched
		}
		c.doubleTapArmed = false
	default:
		if c.episodePeak < n {
			c.episodePeak = n
		}
	}
}

// Move records a contact moving to container-relative (x, y). Moves for
// unknown contacts are dropped. Moves whose contact count does not match
// the active session's expected count are ignored, not an error.
func (c *Classifier) Move(id int, x, y float64) {
	ct := c.findContact(id)
	if ct == nil {
		return
	}
	ct.x, ct.y = x, y

	switch c.phase {
	case phaseTouched:
		switch len(c.contacts) {
		case 1:
			if dist(x, y, ct.startX, ct.startY) > c.deadZone {
				c.phase = phasePanning
				c.doubleTapArmed = false
				c.emitPanStart(*ct)
				c.emitPan(*ct)
			}
		case 2:
			c.startPinch()
		}
	case phasePanning:
		if len(c.contacts) != 1 {
			return
		}
		c.emitPan(*ct)
	case phasePinching:
		if id != c.pinchID0 && id != c.pinchID1 {
			return
		}
		p0 := c.findContact(c.pinchID0)
		p1 := c.findContact(c.pinchID1)
		if p0 == nil || p1 == nil {
			return
		}
		c.emitPinch(c.handlers.pinch, *p0, *p1)
	}
}

// Release records a contact going up at container-relative (x, y).
// Releasing is idempotent: a release for an unknown contact, or with
// zero contacts down, is a no-op.
func (c *Classifier) Release(id int, x, y float64) {
	ct := c.findContact(id)
	if ct == nil {
		return
	}
	ct.x, ct.y = x, y
	released := *ct
	c.removeContact(id)

	if len(c.contacts) > 0 {
		// Sessions end only when the last contact lifts.
		return
	}

	switch c.phase {
	case phaseTouched:
		if c.episodePeak == 1 {
			if c.doubleTapArmed {
				c.doubleTapArmed = false
				c.haveLastRelease = false
				c.emitTap(c.handlers.doubleTap, x, y)
			} else {
				c.lastReleaseAt = c.now()
				c.lastReleaseX, c.lastReleaseY = x, y
				c.haveLastRelease = true
				c.emitTap(c.handlers.tap, x, y)
			}
		}
	case phasePanning:
		c.emitPanEnd(released)
	case phasePinching:
		c.emitPinchEnd()
	}
	c.phase = phaseIdle
	c.episodePeak = 0
}

// Wheel records a wheel sample at cursor position (x, y). Wheel is
// orthogonal to contact tracking: it fires in any state and alters none.
func (c *Classifier) Wheel(x, y, deltaX, deltaY float64) {
	ctx := WheelContext{X: x, Y: y, DeltaX: deltaX, DeltaY: deltaY}
	for _, h := range c.handlers.wheel {
		h.fn(ctx)
	}
}

// --- Internals ---

func (c *Classifier) findContact(id int) *contact {
	for i := range c.contacts {
		if c.contacts[i].id == id {
			return &c.contacts[i]
		}
	}
	return nil
}

func (c *Classifier) removeContact(id int) {
	for i := range c.contacts {
		if c.contacts[i].id == id {
			copy(c.contacts[i:], c.contacts[i+1:])
			c.contacts = c.contacts[:len(c.contacts)-1]
			return
		}
	}
}

// startPinch opens a pinch session on the first two contacts down.
func (c *Classifier) startPinch() {
	p0 := c.contacts[0]
	p1 := c.contacts[1]
	d := dist(p0.x, p0.y, p1.x, p1.y)
	if d <= 0 {
		return
	}
	c.phase = phasePinching
	c.pinchID0 = p0.id
	c.pinchID1 = p1.id
	c.pinchInitialDist = d
	c.emitPinch(c.handlers.pinchStart, p0, p1)
}

func dist(x0, y0, x1, y1 float64) float64 {
	dx := x1 - x0
	dy := y1 - y0
	return math.Sqrt(dx*dx + dy*dy)
}

// --- Emission ---

func (c *Classifier) panContext(ct contact) PanContext {
	return PanContext{
		X: ct.x, Y: ct.y,
		StartX: ct.startX, StartY: ct.startY,
		DeltaX: ct.x - ct.startX, DeltaY: ct.y - ct.startY,
	}
}

func (c *Classifier) emitPanStart(ct contact) {
	ctx := c.panContext(ct)
	for _, h := range c.handlers.panStart {
		h.fn(ctx)
	}
}

func (c *Classifier) emitPan(ct contact) {
	ctx := c.panContext(ct)
	for _, h := range c.handlers.pan {
		h.fn(ctx)
	}
}

func (c *Classifier) emitPanEnd(ct contact) {
	ctx := c.panContext(ct)
	for _, h := range c.handlers.panEnd {
		h.fn(ctx)
	}
}

func (c *Classifier) emitPinch(handlers []pinchHandler, p0, p1 contact) {
	d := dist(p0.x, p0.y, p1.x, p1.y)
	ratio := 1.0
	if c.pinchInitialDist > 0 {
		ratio = d / c.pinchInitialDist
	}
	ctx := PinchContext{
		CenterX:         (p0.x + p1.x) / 2,
		CenterY:         (p0.y + p1.y) / 2,
		Distance:        d,
		InitialDistance: c.pinchInitialDist,
		Ratio:           ratio,
	}
	c.pinchLastDist = d
	c.pinchLastCX = ctx.CenterX
	c.pinchLastCY = ctx.CenterY
	for _, h := range handlers {
		h.fn(ctx)
	}
}

// emitPinchEnd fires pinch-end carrying the last sampled distance and
// midpoint, since both contacts have already lifted.
func (c *Classifier) emitPinchEnd() {
	ratio := 1.0
	if c.pinchInitialDist > 0 {
		ratio = c.pinchLastDist / c.pinchInitialDist
	}
	ctx := PinchContext{
		CenterX:         c.pinchLastCX,
		CenterY:         c.pinchLastCY,
		Distance:        c.pinchLastDist,
		InitialDistance: c.pinchInitialDist,
		Ratio:           ratio,
	}
	for _, h := range c.handlers.pinchEnd {
		h.fn(ctx)
	}
}

func (c *Classifier) emitTap(handlers []tapHandler, x, y float64) {
	ctx := TapContext{X: x, Y: y}
	for _, h := range handlers {
		h.fn(ctx)
	}
}
