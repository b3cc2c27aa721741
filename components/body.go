package components

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Body is the spatial part of every entity: where it is, how big it is and how it looks.
type Body struct {
	Pos      r2.Vec
	Rotation float64 // degrees, unclamped
	Radius   float64 // also the entity's size

	Color   Color   // base color
	Tint    Color   // displayed color, derived from Color by cosmetic roles
	Opacity float64 // displayed alpha multiplier in [0,1]
	Texture string  // opaque reference resolved by the renderer

	Tombstone bool
}

// NewBody returns a visible body at pos with the given radius and color.
func NewBody(pos r2.Vec, radius float64, c Color) Body {
	return Body{Pos: pos, Radius: radius, Color: c, Tint: c, Opacity: 1}
}

// Collides reports whether the two circles overlap.
func (b *Body) Collides(o *Body) bool {
	return r2.Norm(r2.Sub(b.Pos, o.Pos)) < b.Radius+o.Radius
}

// MarkToDelete tombstones the body. The arena removes it in its next compaction pass.
func (b *Body) MarkToDelete() { b.Tombstone = true }

// IsMarkedToDelete reports whether the body has been tombstoned.
func (b *Body) IsMarkedToDelete() bool { return b.Tombstone }

// Heading returns the unit vector the body is facing.
func (b *Body) Heading() r2.Vec {
	rad := b.Rotation * math.Pi / 180
	return r2.Vec{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Rotate turns the body by deg degrees.
func (b *Body) Rotate(deg float64) { b.Rotation += deg }

// View is a read-only snapshot of an entity for drawing.
type View struct {
	Pos        r2.Vec
	Radius     float64
	Rotation   float64
	Color      Color
	Texture    string
	Tombstoned bool
	Organism   bool
}

// View returns the renderer's snapshot of b. Opacity is folded into the alpha channel.
func (b *Body) View() View {
	c := b.Tint
	c.A = uint8(math.Round(float64(c.A) * clamp01(b.Opacity)))
	return View{
		Pos:        b.Pos,
		Radius:     b.Radius,
		Rotation:   b.Rotation,
		Color:      c,
		Texture:    b.Texture,
		Tombstoned: b.Tombstone,
	}
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
