package network

import (
	"math/rand"
	"sort"
)

// RoleSpec pairs a predefined expertise with its default goal.
type RoleSpec struct {
	Expertise string
	Goal      string
}

// PredefinedRoles is the role palette used for organic growth. Declaration
// order breaks ties when picking the least-represented role.
var PredefinedRoles = []RoleSpec{
	{Expertise: "DataAnalyzer", Goal: "analyze incoming data streams"},
	{Expertise: "TaskCoordinator", Goal: "coordinate task distribution across the network"},
	{Expertise: "EnvironmentSensor", Goal: "monitor environment readings"},
	{Expertise: "SecurityMonitor", Goal: "monitor network security alerts"},
	{Expertise: "MemoryKeeper", Goal: "store and recall shared knowledge"},
}

// Registry owns the set of live and dead cells. It is not internally locked:
// all access is serialized by the Network facade.
type Registry struct {
	cells  map[string]*Cell
	cfg    *Config
	rng    *rand.Rand
	logger Logger
}

// NewRegistry creates a cell registry.
func NewRegistry(cfg *Config, rng *rand.Rand, logger Logger) *Registry {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Registry{
		cells:  make(map[string]*Cell),
		cfg:    cfg,
		rng:    rng,
		logger: logger,
	}
}

// Create adds a new cell and returns it. Returns nil when the population cap
// is reached: callers must treat that as silent capacity exhaustion, not an
// error. When parentID names a live cell the child is placed near it and, if
// no expertise is given, inherits the parent's role; otherwise placement is
// globally spaced and an empty expertise resolves to the least-represented
// predefined role.
func (r *Registry) Create(expertise, goal, parentID string) *Cell {
	if len(r.cells) >= r.cfg.MaxCells {
		r.logger.Debug("Population cap reached, create skipped",
			Field{Key: "max_cells", Value: r.cfg.MaxCells},
		)
		return nil
	}

	parent := r.cells[parentID]

	if expertise == "" {
		if parent != nil {
			expertise = parent.Expertise
			if goal == "" {
				goal = parent.Goal
			}
		} else {
			role := r.leastRepresentedRole()
			expertise = role.Expertise
			if goal == "" {
				goal = role.Goal
			}
		}
	}
	if goal == "" {
		goal = goalForExpertise(expertise)
	}

	id := newCellID()
	for r.cells[id] != nil {
		id = newCellID()
	}

	occupied := make([]Point, 0, len(r.cells))
	for _, c := range r.cells {
		occupied = append(occupied, c.Position)
	}

	var pos Point
	if parent != nil {
		pos = nearbyPosition(r.rng, parent.Position, r.cfg.GridSize, r.cfg.MinSpacing, occupied)
	} else {
		pos = spacedPosition(r.rng, r.cfg.GridSize, r.cfg.MinSpacing, occupied)
	}

	cell := &Cell{
		ID:              id,
		Expertise:       expertise,
		Goal:            goal,
		Position:        pos,
		PositionHistory: []Point{pos},
		IsAlive:         true,
		Status:          StatusActive,
		LikedCells:      make(map[string]bool),
		History:         make([]HistoryEntry, 0, r.cfg.HistoryCap),
		historyCap:      r.cfg.HistoryCap,
		trailCap:        r.cfg.TrailCap,
	}

	if parent != nil {
		cell.Record(HistoryCloned, "cloned from "+parent.ID)
	} else {
		cell.Record(HistoryInit, "initialized as "+expertise)
	}

	r.cells[id] = cell

	r.logger.Debug("Cell created",
		Field{Key: "cell_id", Value: id},
		Field{Key: "expertise", Value: expertise},
	)

	return cell
}

// Get retrieves a cell by id.
func (r *Registry) Get(id string) *Cell {
	return r.cells[id]
}

// Remove hard-deletes a cell and prunes it from every other cell's liked set.
func (r *Registry) Remove(id string) error {
	if _, exists := r.cells[id]; !exists {
		return NewNetworkError(ErrCellNotFound, "cell "+id+" not found")
	}

	delete(r.cells, id)

	for _, c := range r.cells {
		if c.LikedCells[id] {
			c.Unlike(id)
		}
	}

	r.logger.Debug("Cell removed", Field{Key: "cell_id", Value: id})
	return nil
}

// List returns all cells in stable (sorted id) order.
func (r *Registry) List() []*Cell {
	ids := make([]string, 0, len(r.cells))
	for id := range r.cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cells := make([]*Cell, 0, len(ids))
	for _, id := range ids {
		cells = append(cells, r.cells[id])
	}
	return cells
}

// Len returns the total population, dead cells included.
func (r *Registry) Len() int {
	return len(r.cells)
}

// AliveCount returns the number of living cells.
func (r *Registry) AliveCount() int {
	n := 0
	for _, c := range r.cells {
		if c.IsAlive {
			n++
		}
	}
	return n
}

// Neighbors returns all other cells within radius of the named cell,
// regardless of alive or sleep status. This is the sole source of graph
// adjacency.
func (r *Registry) Neighbors(id string, radius float64) []*Cell {
	origin := r.cells[id]
	if origin == nil {
		return nil
	}

	var result []*Cell
	for _, c := range r.List() {
		if c.ID == id {
			continue
		}
		if origin.Position.Distance(c.Position) <= radius {
			result = append(result, c)
		}
	}
	return result
}

// Connections derives the adjacency map restricted to currently alive cells,
// the router's connectivity ground truth. Neighbor lists are sorted so two
// calls with no intervening mutation are identical.
func (r *Registry) Connections(radius float64) map[string][]string {
	conns := make(map[string][]string)
	alive := make([]*Cell, 0, len(r.cells))
	for _, c := range r.List() {
		if c.IsAlive {
			alive = append(alive, c)
		}
	}

	for _, c := range alive {
		neighbors := make([]string, 0)
		for _, other := range alive {
			if other.ID == c.ID {
				continue
			}
			if c.Position.Distance(other.Position) <= radius {
				neighbors = append(neighbors, other.ID)
			}
		}
		sort.Strings(neighbors)
		conns[c.ID] = neighbors
	}

	return conns
}

// pruneLiked drops liked-cell ids that no longer exist in the registry.
func (r *Registry) pruneLiked() {
	for _, c := range r.cells {
		for id := range c.LikedCells {
			if r.cells[id] == nil {
				c.Unlike(id)
			}
		}
	}
}

// leastRepresentedRole counts each predefined role's population and returns
// the scarcest one, first-declared wins on ties.
func (r *Registry) leastRepresentedRole() RoleSpec {
	counts := make(map[string]int, len(PredefinedRoles))
	for _, c := range r.cells {
		counts[c.Expertise]++
	}

	best := PredefinedRoles[0]
	bestCount := counts[best.Expertise]
	for _, role := range PredefinedRoles[1:] {
		if counts[role.Expertise] < bestCount {
			best = role
			bestCount = counts[role.Expertise]
		}
	}
	return best
}

// goalForExpertise returns the predefined goal for a known role, or a stock
// goal for custom expertise.
func goalForExpertise(expertise string) string {
	for _, role := range PredefinedRoles {
		if role.Expertise == expertise {
			return role.Goal
		}
	}
	return "contribute to the network as " + expertise
}
