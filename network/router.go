package network

import (
	"context"
	"fmt"

	"github.com/cellnet-io/cellnet/mind"
)

// Route is a resolved delivery path. Path always starts at the source; a
// single-element path means the target was unreachable. Degraded marks
// results that fell back from the caller's declared intent.
type Route struct {
	Path      []string
	Rationale string
	Degraded  bool
}

// Direct reports whether the route is a plain source-to-target hop.
func (r Route) Direct() bool {
	return len(r.Path) == 2
}

// Unreachable reports whether no delivery target could be resolved.
func (r Route) Unreachable() bool {
	return len(r.Path) < 2
}

// Router resolves delivery paths through the connectivity graph. Path choice
// is delegated to an external planner; the router enforces connectivity and
// liveness itself. The planner is untrusted for structural correctness,
// trusted only for path preference.
type Router struct {
	reg    *Registry
	minds  *mind.Manager
	cfg    *Config
	logger Logger
}

// NewRouter creates a message router.
func NewRouter(reg *Registry, minds *mind.Manager, cfg *Config, logger Logger) *Router {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Router{
		reg:    reg,
		minds:  minds,
		cfg:    cfg,
		logger: logger,
	}
}

// Resolve computes the delivery path for a message from source to target.
// It never fails: degenerate cases resolve to a valid, if suboptimal, route.
func (r *Router) Resolve(ctx context.Context, sourceID, targetID, content string) Route {
	if sourceID == targetID {
		return Route{Path: []string{sourceID}, Rationale: "source and target are the same cell"}
	}

	degraded := false
	rationale := ""

	// A dead or absent target is substituted with the source's nearest alive
	// neighbor before path selection; delivery never silently drops while any
	// living neighbor exists.
	target := r.reg.Get(targetID)
	if target == nil || !target.IsAlive {
		fallback := r.nearestAliveNeighbor(sourceID)
		if fallback == nil {
			return Route{
				Path:      []string{sourceID},
				Rationale: fmt.Sprintf("target %s unreachable and no alive neighbor to fall back to", targetID),
				Degraded:  true,
			}
		}
		r.logger.Warn("Target unavailable, rerouting to nearest neighbor",
			Field{Key: "target_id", Value: targetID},
			Field{Key: "fallback_id", Value: fallback.ID},
		)
		targetID = fallback.ID
		target = fallback
		degraded = true
		rationale = "target unavailable, delivering to nearest alive neighbor; "
	}

	if !r.worthRouting(content, target) {
		return Route{
			Path:      []string{sourceID, targetID},
			Rationale: rationale + "direct delivery",
			Degraded:  degraded,
		}
	}

	graph := r.reg.Connections(r.cfg.NeighborRadius)

	result, err := r.minds.PlanRoute(ctx, mind.PlanRequest{
		Content:      content,
		SourceID:     sourceID,
		TargetID:     targetID,
		Expertise:    r.expertiseMap(),
		Connectivity: graph,
	})
	if err != nil || result == nil {
		r.logger.Warn("Planner failed, using direct delivery",
			Field{Key: "error", Value: err},
		)
		return Route{
			Path:      []string{sourceID, targetID},
			Rationale: rationale + "planner unavailable, direct delivery",
			Degraded:  true,
		}
	}

	path, filtered := r.validatePath(result.Path, sourceID, targetID, graph)
	if filtered {
		degraded = true
	}

	if len(path) < 2 || path[len(path)-1] != targetID {
		// Planner output collapsed to nothing usable.
		if connected(graph, sourceID, targetID) {
			return Route{
				Path:      []string{sourceID, targetID},
				Rationale: rationale + "planned path invalid, direct delivery",
				Degraded:  true,
			}
		}
		return Route{
			Path:      []string{sourceID},
			Rationale: rationale + "target unreachable through the connectivity graph",
			Degraded:  true,
		}
	}

	return Route{
		Path:      path,
		Rationale: rationale + result.Rationale,
		Degraded:  degraded,
	}
}

// worthRouting decides whether multi-hop routing is worth invoking at all.
// Sleeping targets and short messages go direct; direct delivery wakes a
// sleeper anyway. Thresholds are configurable policy, not a hard contract.
func (r *Router) worthRouting(content string, target *Cell) bool {
	if target.Status == StatusSleeping {
		return false
	}
	return len([]rune(content)) >= r.cfg.RouteMinContent
}

// validatePath post-validates a planner path against the live graph: the
// source is prepended if missing, hops referencing dead, absent, or
// disconnected cells are dropped, and the real target is re-appended when the
// surviving tail connects to it. The second return reports whether any hop
// was filtered out.
func (r *Router) validatePath(planned []string, sourceID, targetID string, graph map[string][]string) ([]string, bool) {
	filtered := false

	if len(planned) == 0 || planned[0] != sourceID {
		planned = append([]string{sourceID}, planned...)
	}

	path := []string{sourceID}
	for _, hop := range planned[1:] {
		cell := r.reg.Get(hop)
		if cell == nil || !cell.IsAlive || !connected(graph, path[len(path)-1], hop) {
			r.logger.Warn("Dropping invalid hop from planned route",
				Field{Key: "hop", Value: hop},
			)
			filtered = true
			continue
		}
		path = append(path, hop)
	}

	if path[len(path)-1] != targetID && connected(graph, path[len(path)-1], targetID) {
		path = append(path, targetID)
	}

	return path, filtered
}

// nearestAliveNeighbor returns the closest alive neighbor of a cell, or nil.
func (r *Router) nearestAliveNeighbor(id string) *Cell {
	origin := r.reg.Get(id)
	if origin == nil {
		return nil
	}

	var nearest *Cell
	var nearestDist float64
	for _, c := range r.reg.Neighbors(id, r.cfg.NeighborRadius) {
		if !c.IsAlive {
			continue
		}
		dist := origin.Position.Distance(c.Position)
		if nearest == nil || dist < nearestDist {
			nearest = c
			nearestDist = dist
		}
	}
	return nearest
}

// expertiseMap snapshots cell id to expertise for the planner.
func (r *Router) expertiseMap() map[string]string {
	m := make(map[string]string, r.reg.Len())
	for _, c := range r.reg.List() {
		if c.IsAlive {
			m[c.ID] = c.Expertise
		}
	}
	return m
}

// connected reports whether two cells are direct neighbors in the graph.
func connected(graph map[string][]string, from, to string) bool {
	for _, n := range graph[from] {
		if n == to {
			return true
		}
	}
	return false
}
