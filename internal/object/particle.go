package object

import (
	"math/rand/v2"
	"sync"
)

// Burst parameters.
const (
	BurstCount    = 10
	BurstSpeed    = 120.0 // max units per second per axis
	BurstLifetime = 0.5   // seconds
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived visual effect.
type Particle struct {
	X, Y        float64
	VX, VY      float64
	Lifetime    float64 // seconds remaining
	MaxLifetime float64
	Color       Color
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy, lifetime float64, color Color) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Lifetime = lifetime
	p.MaxLifetime = lifetime
	p.Color = color
	return p
}

// Release returns the particle to the pool. The caller must not use p again.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Update moves the particle and reports whether it has expired.
func (p *Particle) Update(dt float64) (expired bool) {
	p.Lifetime -= dt
	if p.Lifetime <= 0 {
		return true
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	return false
}

// Fade returns the remaining share of the particle's life in [0, 1].
func (p *Particle) Fade() float64 {
	if p.MaxLifetime <= 0 {
		return 0
	}
	return p.Lifetime / p.MaxLifetime
}

// SpawnBurst appends BurstCount particles centered on (x, y) to dst.
func SpawnBurst(dst []*Particle, x, y float64, color Color, rng *rand.Rand) []*Particle {
	for range BurstCount {
		vx := (rng.Float64()*2 - 1) * BurstSpeed
		vy := (rng.Float64()*2 - 1) * BurstSpeed
		dst = append(dst, NewParticle(x, y, vx, vy, BurstLifetime, color))
	}
	return dst
}
