package network

import (
	"math"
	"math/rand"
)

// movementModel computes per-tick displacement for active cells: attraction
// toward liked peers, repulsion from crowding, and random drift. This is a
// simple n-body-style heuristic; only bounds-safety is guaranteed.
type movementModel struct {
	cfg *Config
	rng *rand.Rand
}

func newMovementModel(cfg *Config, rng *rand.Rand) *movementModel {
	return &movementModel{cfg: cfg, rng: rng}
}

// step moves one cell given the full cell population. The caller is expected
// to invoke it only for alive, active cells.
func (m *movementModel) step(c *Cell, all []*Cell) {
	var dx, dy float64

	// Attraction: head a fraction of the way toward the centroid of alive,
	// active liked peers, but only when meaningfully far from it.
	if cx, cy, ok := likedCentroid(c, all); ok {
		offX := cx - c.Position.X
		offY := cy - c.Position.Y
		if math.Hypot(offX, offY) > m.cfg.MoveStep/2 {
			dx += offX * m.cfg.AttractPull
			dy += offY * m.cfg.AttractPull
		}
	}

	// Repulsion: inverse-distance push away from every nearby active cell.
	// Exact overlaps are skipped to avoid the distance-zero singularity.
	for _, other := range all {
		if other.ID == c.ID || !other.IsAlive || other.Status != StatusActive {
			continue
		}
		dist := c.Position.Distance(other.Position)
		if dist == 0 || dist > m.cfg.RepulsionRadius {
			continue
		}
		scale := (m.cfg.RepulsionRadius - dist) / (m.cfg.RepulsionRadius * dist)
		dx += (c.Position.X - other.Position.X) * scale
		dy += (c.Position.Y - other.Position.Y) * scale
	}

	// Drift: a small random component every tick to avoid equilibrium lock.
	angle := m.rng.Float64() * 2 * math.Pi
	dx += math.Cos(angle) * m.cfg.DriftScale
	dy += math.Sin(angle) * m.cfg.DriftScale

	// Clamp the displacement magnitude, then the resulting position.
	if mag := math.Hypot(dx, dy); mag > m.cfg.MoveStep {
		dx *= m.cfg.MoveStep / mag
		dy *= m.cfg.MoveStep / mag
	}

	next := clampToArena(Point{
		X: c.Position.X + dx,
		Y: c.Position.Y + dy,
	}, m.cfg.GridSize)

	c.recordPosition(next)
}

// likedCentroid averages the positions of the cell's alive, active liked
// peers. The third return is false when there are none.
func likedCentroid(c *Cell, all []*Cell) (float64, float64, bool) {
	if len(c.LikedCells) == 0 {
		return 0, 0, false
	}

	var sx, sy float64
	n := 0
	for _, other := range all {
		if !c.LikedCells[other.ID] {
			continue
		}
		if !other.IsAlive || other.Status != StatusActive {
			continue
		}
		sx += other.Position.X
		sy += other.Position.Y
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return sx / float64(n), sy / float64(n), true
}
