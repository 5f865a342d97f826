// Package object holds the entities of the survival simulation: falling
// words, the spawner that creates them and cosmetic particles.
package object

import "math/rand"

// Canvas is the logical play field entities move in.
type Canvas struct {
	Width  float64
	Height float64
	Margin float64 // Horizontal inset for spawn positions
	SpawnY float64 // Starting Y, above the visible area
}

// Below reports whether y has crossed the bottom boundary.
func (c Canvas) Below(y float64) bool {
	return y > c.Height
}

// Rand is the random source entities sample from. *rand.Rand satisfies it;
// tests inject a seeded one.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

var _ Rand = (*rand.Rand)(nil)
