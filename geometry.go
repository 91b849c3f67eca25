package magnify

// Geometry supplies the container and content measurements the engine
// needs. The engine re-reads geometry on every gesture step rather than
// caching it, so implementations may return different values between
// calls (e.g. after a window resize).
type Geometry interface {
	// ContainerBounds returns the position and size of the viewport the
	// content is displayed in.
	ContainerBounds() Rect
	// ContentSize returns the rendered (unscaled) content size.
	ContentSize() (w, h float64)
	// NaturalSize returns the content's natural pixel dimensions, or
	// (0, 0) while they are not yet known (e.g. an image still loading).
	NaturalSize() (w, h float64)
}

// StaticGeometry is a fixed-measurement Geometry for hosts whose layout
// does not change, and for tests.
type StaticGeometry struct {
	Container          Rect
	ContentW, ContentH float64
	NaturalW, NaturalH float64
}

// ContainerBounds returns the configured container rectangle.
func (g StaticGeometry) ContainerBounds() Rect { return g.Container }

// ContentSize returns the configured rendered content size.
func (g StaticGeometry) ContentSize() (w, h float64) { return g.ContentW, g.ContentH }

// NaturalSize returns the configured natural content size.
func (g StaticGeometry) NaturalSize() (w, h float64) { return g.NaturalW, g.NaturalH }
