package object

// Projectile is a bullet fired by the shooter.
type Projectile struct {
	X, Y   float64 // top-left corner
	VX, VY float64 // units per second
}

// NewProjectile launches a projectile from (x, y) moving upward at speed.
func NewProjectile(x, y, speed float64) Projectile {
	return Projectile{X: x, Y: y, VY: -speed}
}

// Update advances the projectile by dt seconds.
func (p *Projectile) Update(dt float64) {
	p.X += p.VX * dt
	p.Y += p.VY * dt
}

// Gone reports whether the projectile left the field through the top.
func (p Projectile) Gone() bool {
	return p.Y+ProjectileHeight < 0
}

func (p Projectile) Bounds() Rect {
	return Rect{X: p.X, Y: p.Y, W: ProjectileWidth, H: ProjectileHeight}
}
