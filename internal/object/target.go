package object

// Corruption is the visual and scoring tier of a glitch cube.
type Corruption uint8

const (
	CorruptionLow Corruption = iota
	CorruptionModerate
	CorruptionCritical
)

func (c Corruption) String() string {
	switch c {
	case CorruptionModerate:
		return "moderate"
	case CorruptionCritical:
		return "critical"
	default:
		return "low"
	}
}

// Target is a falling glitch cube.
type Target struct {
	X, Y    float64 // top-left corner
	Size    float64
	Speed   float64 // vertical, units per second
	Drift   float64 // horizontal, units per second
	Tier    Corruption
	Primary bool
}

// Update advances the target by dt seconds. Drift is reflected at the side
// walls of the field.
func (t *Target) Update(dt float64, field Playfield) {
	t.Y += t.Speed * dt
	t.X += t.Drift * dt
	switch {
	case t.X < 0:
		t.X = -t.X
		t.Drift = -t.Drift
	case t.X+t.Size > field.Width:
		t.X = 2*(field.Width-t.Size) - t.X
		t.Drift = -t.Drift
	}
}

// Escaped reports whether the target has left the field through the bottom.
func (t Target) Escaped(field Playfield) bool {
	return t.Y > field.Height
}

func (t Target) Bounds() Rect {
	return Rect{X: t.X, Y: t.Y, W: t.Size, H: t.Size}
}
