package object

// Shooter is the player-controlled gun at the bottom of the field.
type Shooter struct {
	X, Y float64 // top-left corner
	Size float64
}

// NewShooter places a shooter at the bottom center of the field.
func NewShooter(field Playfield) Shooter {
	return Shooter{
		X:    (field.Width - ShooterSize) / 2,
		Y:    field.Height - ShooterSize - ShooterMargin,
		Size: ShooterSize,
	}
}

// Move shifts the shooter by (dx, dy), keeping it inside the field.
func (s *Shooter) Move(dx, dy float64, field Playfield) {
	s.X, s.Y = field.Clamp(s.X+dx, s.Y+dy, s.Size, s.Size)
}

// AimAt centers the shooter on (x, y), keeping it inside the field.
func (s *Shooter) AimAt(x, y float64, field Playfield) {
	s.X, s.Y = field.Clamp(x-s.Size/2, y-s.Size/2, s.Size, s.Size)
}

// Muzzle returns the point projectiles are launched from.
func (s Shooter) Muzzle() (x, y float64) {
	return s.X + s.Size/2, s.Y
}

func (s Shooter) Bounds() Rect {
	return Rect{X: s.X, Y: s.Y, W: s.Size, H: s.Size}
}
