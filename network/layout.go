package network

import (
	"math"
	"math/rand"
)

// Point is a position in the bounded 2D arena.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// clampToArena keeps a point inside [0, size] on both axes.
func clampToArena(p Point, size float64) Point {
	if p.X < 0 {
		p.X = 0
	}
	if p.X > size {
		p.X = size
	}
	if p.Y < 0 {
		p.Y = 0
	}
	if p.Y > size {
		p.Y = size
	}
	return p
}

// placementAttempts bounds the search for a collision-free spot before the
// layout gives up and accepts the last candidate.
const placementAttempts = 30

// spacedPosition picks a random arena position at least minSpacing away from
// every occupied point, falling back to the last candidate when the arena is
// too crowded to satisfy the spacing.
func spacedPosition(rng *rand.Rand, size, minSpacing float64, occupied []Point) Point {
	var candidate Point
	for i := 0; i < placementAttempts; i++ {
		candidate = Point{X: rng.Float64() * size, Y: rng.Float64() * size}
		if clearOf(candidate, occupied, minSpacing) {
			return candidate
		}
	}
	return candidate
}

// nearbyPosition picks a spot close to a parent, nudged outward until it
// respects spacing or the attempt budget runs out. Used for clone placement.
func nearbyPosition(rng *rand.Rand, parent Point, size, minSpacing float64, occupied []Point) Point {
	spread := minSpacing * 2
	if spread <= 0 {
		spread = 4
	}

	var candidate Point
	for i := 0; i < placementAttempts; i++ {
		candidate = clampToArena(Point{
			X: parent.X + (rng.Float64()*2-1)*spread,
			Y: parent.Y + (rng.Float64()*2-1)*spread,
		}, size)
		if clearOf(candidate, occupied, minSpacing) {
			return candidate
		}
		spread += minSpacing
	}
	return candidate
}

func clearOf(p Point, occupied []Point, minSpacing float64) bool {
	for _, o := range occupied {
		if p.Distance(o) < minSpacing {
			return false
		}
	}
	return true
}
