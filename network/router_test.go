package network

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellnet-io/cellnet/mind"
)

// fakePlanner is a mind.Provider whose route planning is scripted per test.
type fakePlanner struct {
	plan func(req mind.PlanRequest) (*mind.PlanResult, error)
}

func (f *fakePlanner) Name() string       { return "fake" }
func (f *fakePlanner) IsConfigured() bool { return true }

func (f *fakePlanner) PlanRoute(ctx context.Context, req mind.PlanRequest) (*mind.PlanResult, error) {
	return f.plan(req)
}

func (f *fakePlanner) InterpretPurpose(ctx context.Context, purpose string) (string, error) {
	return "", nil
}

func (f *fakePlanner) InterpretHelp(ctx context.Context, req mind.HelpRequest) (*mind.HelpResult, error) {
	return &mind.HelpResult{}, nil
}

// newRouterFixture wires a registry and router; a nil plan uses the local
// breadth-first planner.
func newRouterFixture(t *testing.T, plan func(req mind.PlanRequest) (*mind.PlanResult, error)) (*Registry, *Router) {
	t.Helper()

	cfg := DefaultConfig()
	reg := NewRegistry(cfg, rand.New(rand.NewSource(1)), NewNoOpLogger())

	minds := mind.NewManager()
	if plan != nil {
		require.NoError(t, minds.RegisterProvider(&fakePlanner{plan: plan}))
	}

	return reg, NewRouter(reg, minds, cfg, NewNoOpLogger())
}

func cellAt(reg *Registry, expertise string, x, y float64) *Cell {
	c := reg.Create(expertise, "", "")
	c.Position = Point{X: x, Y: y}
	return c
}

const routableContent = "please analyze the latest data batch"

func TestResolveSelfTarget(t *testing.T) {
	reg, router := newRouterFixture(t, nil)
	a := cellAt(reg, "DataAnalyzer", 50, 50)

	route := router.Resolve(context.Background(), a.ID, a.ID, routableContent)

	assert.Equal(t, []string{a.ID}, route.Path)
	assert.False(t, route.Degraded)
}

func TestResolveShortContentGoesDirect(t *testing.T) {
	reg, router := newRouterFixture(t, func(req mind.PlanRequest) (*mind.PlanResult, error) {
		t.Fatal("planner must not be consulted for short messages")
		return nil, nil
	})
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	b := cellAt(reg, "MemoryKeeper", 10, 0)

	route := router.Resolve(context.Background(), a.ID, b.ID, "hi")

	assert.Equal(t, []string{a.ID, b.ID}, route.Path)
	assert.True(t, route.Direct())
	assert.False(t, route.Degraded)
}

func TestResolveSleepingTargetGoesDirect(t *testing.T) {
	reg, router := newRouterFixture(t, func(req mind.PlanRequest) (*mind.PlanResult, error) {
		t.Fatal("planner must not be consulted for sleeping targets")
		return nil, nil
	})
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	b := cellAt(reg, "MemoryKeeper", 10, 0)
	b.Status = StatusSleeping

	route := router.Resolve(context.Background(), a.ID, b.ID, routableContent)

	assert.Equal(t, []string{a.ID, b.ID}, route.Path)
}

func TestResolveMultiHopThroughTheGraph(t *testing.T) {
	reg, router := newRouterFixture(t, nil)
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	b := cellAt(reg, "MemoryKeeper", 20, 0)
	c := cellAt(reg, "EnvironmentSensor", 40, 0)

	route := router.Resolve(context.Background(), a.ID, c.ID, routableContent)

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, route.Path)
	assert.False(t, route.Degraded)
	assert.NotEmpty(t, route.Rationale)
}

func TestResolveFiltersInvalidPlannedHops(t *testing.T) {
	var a, b, c *Cell
	reg, router := newRouterFixture(t, func(req mind.PlanRequest) (*mind.PlanResult, error) {
		return &mind.PlanResult{
			Path:      []string{a.ID, "cell-ghost001", b.ID, c.ID},
			Rationale: "scripted",
		}, nil
	})
	a = cellAt(reg, "DataAnalyzer", 0, 0)
	b = cellAt(reg, "MemoryKeeper", 20, 0)
	c = cellAt(reg, "EnvironmentSensor", 40, 0)

	route := router.Resolve(context.Background(), a.ID, c.ID, routableContent)

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, route.Path)
	assert.True(t, route.Degraded)
}

func TestResolveDropsDeadHopsAndMayCollapse(t *testing.T) {
	var a, b, c *Cell
	reg, router := newRouterFixture(t, func(req mind.PlanRequest) (*mind.PlanResult, error) {
		return &mind.PlanResult{Path: []string{a.ID, b.ID, c.ID}, Rationale: "scripted"}, nil
	})
	a = cellAt(reg, "DataAnalyzer", 0, 0)
	b = cellAt(reg, "MemoryKeeper", 20, 0)
	c = cellAt(reg, "EnvironmentSensor", 40, 0)

	// The only relay dies; the target is out of direct range, so the
	// validated path collapses to unreachable.
	b.die()

	route := router.Resolve(context.Background(), a.ID, c.ID, routableContent)

	assert.Equal(t, []string{a.ID}, route.Path)
	assert.True(t, route.Unreachable())
	assert.True(t, route.Degraded)
}

func TestResolvePlannerErrorFallsBackToLocalPlanning(t *testing.T) {
	reg, router := newRouterFixture(t, func(req mind.PlanRequest) (*mind.PlanResult, error) {
		return nil, errors.New("collaborator offline")
	})
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	b := cellAt(reg, "MemoryKeeper", 20, 0)
	c := cellAt(reg, "EnvironmentSensor", 40, 0)

	route := router.Resolve(context.Background(), a.ID, c.ID, routableContent)

	assert.Equal(t, []string{a.ID, b.ID, c.ID}, route.Path)
}

func TestResolveSubstitutesDeadTargetWithNearestNeighbor(t *testing.T) {
	reg, router := newRouterFixture(t, nil)
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	b := cellAt(reg, "MemoryKeeper", 10, 0)
	dead := cellAt(reg, "EnvironmentSensor", 5, 0)
	dead.die()

	route := router.Resolve(context.Background(), a.ID, dead.ID, "hi")

	assert.Equal(t, []string{a.ID, b.ID}, route.Path)
	assert.True(t, route.Degraded)
	assert.Contains(t, route.Rationale, "nearest alive neighbor")
}

func TestResolveDeadTargetWithoutNeighborsIsUnreachable(t *testing.T) {
	reg, router := newRouterFixture(t, nil)
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	dead := cellAt(reg, "EnvironmentSensor", 90, 90)
	dead.die()

	route := router.Resolve(context.Background(), a.ID, dead.ID, "hi")

	assert.True(t, route.Unreachable())
	assert.Equal(t, []string{a.ID}, route.Path)
	assert.Contains(t, route.Rationale, "no alive neighbor")
}

func TestResolveUnknownTargetFallsBackLikeADeadOne(t *testing.T) {
	reg, router := newRouterFixture(t, nil)
	a := cellAt(reg, "DataAnalyzer", 0, 0)
	b := cellAt(reg, "MemoryKeeper", 10, 0)

	route := router.Resolve(context.Background(), a.ID, "cell-missing1", "hi")

	assert.Equal(t, []string{a.ID, b.ID}, route.Path)
	assert.True(t, route.Degraded)
}
