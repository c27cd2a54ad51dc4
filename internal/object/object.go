// Package object defines the entities of a level: the shooter, its
// projectiles, the falling glitch targets and cosmetic particles.
//
// Entities are plain data. The simulation engine owns and mutates them.
package object

// Geometry of the playfield and entities, in logical units. Y grows downward.
const (
	FieldWidth  = 800
	FieldHeight = 600

	ShooterSize   = 30
	ShooterMargin = 20 // gap between shooter and bottom edge

	ProjectileWidth  = 5
	ProjectileHeight = 10

	TargetMinSize  = 20
	TargetSizeSpan = 25
)

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X, Y, W, H float64
}

// CenterX returns the horizontal center of r.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center of r.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Playfield is the visible area of a level.
type Playfield struct {
	Width, Height float64
}

// DefaultPlayfield is the 800x600 field the game was designed for.
var DefaultPlayfield = Playfield{Width: FieldWidth, Height: FieldHeight}

// Clamp limits (x, y) so that a w-by-h box stays inside the field.
func (f Playfield) Clamp(x, y, w, h float64) (float64, float64) {
	return clamp(x, 0, f.Width-w), clamp(y, 0, f.Height-h)
}

// Color is the palette index of a particle.
type Color uint8

const (
	ColorSuccess Color = iota // primary target destroyed
	ColorFailure              // non-primary target hit
)

func (c Color) String() string {
	if c == ColorFailure {
		return "purple"
	}
	return "lime"
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
