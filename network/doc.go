/*
Package network implements a tick-driven simulation of autonomous "cell"
agents that age, move, communicate, clone, sleep, wake, and die in a bounded
2D arena.

# Overview

The package is organized around a few cooperating pieces:

  - Cell: the agent entity, with lifecycle, spatial, and social state and a
    bounded, sequenced history of everything that happens to it
  - Registry: owns the cell population; creation, lookup, removal, neighbor
    queries, and the alive-cell connectivity map
  - Engine: the lifecycle scheduler; one Tick ages cells, applies death and
    the sleep/wake policy, triggers cloning, moves active cells, and drains
    the deferred task queue
  - Router: resolves multi-hop delivery paths, delegating path choice to an
    external planner and post-validating everything it returns
  - Network: the facade; every external caller goes through it under a
    single mutex

# Concurrency model

The engine is single-threaded by design. All state mutation happens inside
discrete tick or message operations serialized by the Network facade; there
is no parallel mutation of the registry. Delayed effects (auto-replies,
simulated work) are deferred tasks drained by the same tick loop, never
free-running timers.

# Quick start

	net := network.New(nil, nil, nil)
	net.InitializeNetwork(10)
	net.SetPurpose("monitor the deployment")

	net.Tick()

	route, err := net.SendMessage("user", someCellID, "purpose?")

Run continuously with a driver:

	driver := network.NewDriver(net, time.Second, nil)
	driver.Start(ctx)
	defer driver.Stop()

# External collaborators

Route planning and purpose/help interpretation are consumed through the mind
package. They are treated as failable network calls: every failure degrades
to a deterministic local fallback (direct send, broadcast, or no guidance)
and is never fatal to the simulation.
*/
package network
