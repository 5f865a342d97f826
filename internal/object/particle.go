package object

import "sync"

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Color tags a particle burst.
type Color uint8

const (
	ColorTarget   Color = iota // A word was just targeted
	ColorComplete              // A word was just completed
)

func (c Color) String() string {
	switch c {
	case ColorTarget:
		return "target"
	case ColorComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Particle is a short-lived visual effect. Life starts at 1 and decays
// linearly; the particle is removed once it reaches zero.
type Particle struct {
	X, Y   float64
	VX, VY float64 // Logical units per frame
	Life   float64
	Color  Color
}

// NewParticle creates a single particle from the pool.
func NewParticle(x, y, vx, vy float64, color Color) *Particle {
	p := particlePool.Get().(*Particle)
	p.X = x
	p.Y = y
	p.VX = vx
	p.VY = vy
	p.Life = 1.0
	p.Color = color
	return p
}

// Release returns the particle to the pool for reuse.
// Must not be used after release.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Update moves the particle and burns decay off its life.
// Returns true if the particle should be removed.
func (p *Particle) Update(decay float64) bool {
	p.X += p.VX
	p.Y += p.VY
	p.Life -= decay
	return p.Life <= 0
}

// Opacity is the particle's life clamped to [0,1].
func (p *Particle) Opacity() float64 {
	switch {
	case p.Life <= 0:
		return 0
	case p.Life >= 1:
		return 1
	}
	return p.Life
}

// Burst creates count particles at (x,y) with velocity components uniform in
// [-speed/2, speed/2).
func Burst(x, y float64, count int, speed float64, color Color, rng Rand) []*Particle {
	burst := make([]*Particle, 0, count)
	for i := 0; i < count; i++ {
		vx := (rng.Float64() - 0.5) * speed
		vy := (rng.Float64() - 0.5) * speed
		burst = append(burst, NewParticle(x, y, vx, vy, color))
	}
	return burst
}
