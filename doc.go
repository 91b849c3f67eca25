// Package magnify turns raw pointer, touch, and wheel input into pan and
// zoom of a rectangular surface (typically an image), keeping the point
// under the user's fingers or cursor visually fixed while zooming.
//
// Two pieces collaborate:
//
//   - [Classifier] ingests raw press/move/release/wheel samples and emits
//     typed, mutually exclusive gesture events (pan, pinch, tap,
//     double-tap, wheel).
//   - [Engine] owns the authoritative (scale, x, y) transform, applies a
//     per-gesture update rule, clamps the result against the configured
//     zoom and pan limits, and notifies the host with the tuple to render.
//
// Magnify never draws anything itself. The host applies the emitted
// transform (for Ebitengine, a scale-then-translate [ebiten.GeoM]) and
// chooses easing for transitions the engine flags as animated —
// [TransformTween] provides a ready-made gween-based interpolator.
//
// # Quick start
//
// For an Ebitengine host, [Driver] polls mouse, touch, and wheel state
// each frame and feeds both components:
//
//	geom := magnify.StaticGeometry{
//		Container: magnify.Rect{Width: 800, Height: 600},
//		ContentW:  800, ContentH: 600,
//		NaturalW:  1600, NaturalH: 1200,
//	}
//	engine, _ := magnify.NewEngine(geom, magnify.DefaultOptions())
//	driver := magnify.NewDriver(engine, magnify.NewClassifier())
//
//	// In your ebiten.Game:
//	func (g *Game) Update() error { g.driver.Update(1.0 / 60); return nil }
//
// Hosts on other input sources call [Classifier.Press],
// [Classifier.Move], [Classifier.Release], and [Classifier.Wheel]
// directly with container-relative coordinates.
//
// See examples/viewer for a complete runnable program.
package magnify
