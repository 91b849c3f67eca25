package magnify

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// The polling half of the driver needs a live Ebitengine loop; these
// tests cover the pure halves: gesture-to-engine routing and touch slot
// bookkeeping.

func newBoundPair(t *testing.T) (*Classifier, *Engine) {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxScale = 3
	opts.MinScaleForPan = 0
	e, err := NewEngine(standardGeometry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClassifier()
	Bind(c, e)
	return c, e
}

func TestBindRoutesPanToEngine(t *testing.T) {
	c, e := newBoundPair(t)

	c.Press(0, 0, 0)
	c.Move(0, 10, 0)
	wantTransform(t, e.Transform(), 1, 10, 0)

	c.Move(0, 25, 5)
	wantTransform(t, e.Transform(), 1, 25, 5)

	c.Release(0, 25, 5)
	// Committed: the next pan continues from here.
	c.Press(0, 100, 100)
	c.Move(0, 110, 100)
	wantTransform(t, e.Transform(), 1, 35, 5)
}

func TestBindRoutesPinchToEngine(t *testing.T) {
	c, e := newBoundPair(t)

	c.Press(1, 100, 100)
	c.Press(2, 200, 100)
	c.Move(1, 100, 100) // pinch starts: center (150, 100), distance 100

	// Contact 1 moves out: distance 200, ratio 2, anchor stays at the
	// start midpoint.
	c.Move(1, 0, 100)
	wantTransform(t, e.Transform(), 2, -150, -100)

	c.Release(1, 0, 100)
	c.Release(2, 200, 100)
	if got := e.Scale(); got != 2 {
		t.Errorf("committed scale = %v, want 2", got)
	}
}

func TestBindRoutesDoubleTapToEngine(t *testing.T) {
	c, e := newBoundPair(t)

	c.Press(0, 50, 50)
	c.Release(0, 50, 50)
	c.Press(0, 52, 50)
	c.Release(0, 52, 50)

	got := e.Transform()
	if got.Scale != 2 {
		t.Errorf("scale = %v, want DoubleTapScale 2", got.Scale)
	}
	if got.X != -52 || got.Y != -50 {
		t.Errorf("translate = (%v, %v), want anchored at the tap point", got.X, got.Y)
	}
}

func TestBindWheelScrollUpZoomsIn(t *testing.T) {
	c, e := newBoundPair(t)

	c.Wheel(100, 100, 0, 1)
	if got := e.Scale(); got != 1.2 {
		t.Errorf("scale after scroll up = %v, want 1.2", got)
	}
	c.Wheel(100, 100, 0, -1)
	if got := e.Scale(); got != 1 {
		t.Errorf("scale after scroll down = %v, want 1", got)
	}
}

func TestBindWheelZeroDeltaIgnored(t *testing.T) {
	c, e := newBoundPair(t)

	c.Wheel(100, 100, 0, 0)
	wantTransform(t, e.Transform(), 1, 0, 0)
}

func TestBindingRemoveDisconnects(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxScale = 3
	opts.MinScaleForPan = 0
	e, err := NewEngine(standardGeometry(), opts)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClassifier()
	b := Bind(c, e)
	b.Remove()
	b.Remove() // safe to repeat

	c.Press(0, 0, 0)
	c.Move(0, 50, 50)
	c.Release(0, 50, 50)
	c.Wheel(0, 0, 0, 1)
	wantTransform(t, e.Transform(), 1, 0, 0)
}

func TestTouchSlotAllocation(t *testing.T) {
	e, err := NewEngine(standardGeometry(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	d := NewDriver(e, NewClassifier())

	slot, fresh := d.touchSlot(ebiten.TouchID(42))
	if slot != 1 || !fresh {
		t.Fatalf("first touch = (%d, %v), want fresh slot 1", slot, fresh)
	}
	if slot, fresh = d.touchSlot(ebiten.TouchID(42)); slot != 1 || fresh {
		t.Fatalf("repeat touch = (%d, %v), want existing slot 1", slot, fresh)
	}
	if slot, _ = d.touchSlot(ebiten.TouchID(7)); slot != 2 {
		t.Fatalf("second touch slot = %d, want 2", slot)
	}
}

func TestTouchSlotExhaustionAndReuse(t *testing.T) {
	e, err := NewEngine(standardGeometry(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	d := NewDriver(e, NewClassifier())

	for i := 0; i < maxPointers-1; i++ {
		if slot, _ := d.touchSlot(ebiten.TouchID(100 + i)); slot != i+1 {
			t.Fatalf("touch %d slot = %d, want %d", i, slot, i+1)
		}
	}
	if slot, _ := d.touchSlot(ebiten.TouchID(999)); slot != -1 {
		t.Fatalf("overflow touch slot = %d, want -1", slot)
	}

	// A released slot is reallocated to the next new touch.
	d.touchUsed[3] = false
	slot, fresh := d.touchSlot(ebiten.TouchID(999))
	if slot != 3 || !fresh {
		t.Errorf("reused slot = (%d, %v), want fresh slot 3", slot, fresh)
	}
}
