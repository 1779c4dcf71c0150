package network

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cellnet-io/cellnet/mind"
)

// State is a read-only snapshot of the whole network.
type State struct {
	Cells     map[string]*Cell `json:"cells"`
	Messages  []Message        `json:"messages"`
	TickCount int              `json:"tickCount"`
	Purpose   string           `json:"purpose"`
}

// Network is the facade over the simulation engine. All state mutation is
// funneled through it under a single mutex: ticks and message operations are
// discrete and never overlap, which is the engine's whole concurrency model.
type Network struct {
	mu sync.Mutex

	cfg    *Config
	logger Logger
	rng    *rand.Rand

	reg    *Registry
	engine *Engine
	router *Router
	msgs   *messageLog
	minds  *mind.Manager

	purpose string
}

// New creates a network. A nil config uses defaults, a nil manager gets the
// deterministic local collaborators, and a nil logger logs to stdout.
func New(cfg *Config, minds *mind.Manager, logger Logger) *Network {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.normalize()
	if minds == nil {
		minds = mind.NewManager()
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	reg := NewRegistry(cfg, rng, logger)
	msgs := newMessageLog(cfg.MessageLogCap, cfg.MessageTTL)

	return &Network{
		cfg:    cfg,
		logger: logger,
		rng:    rng,
		reg:    reg,
		engine: NewEngine(reg, msgs, cfg, rng, logger),
		router: NewRouter(reg, minds, cfg, logger),
		msgs:   msgs,
		minds:  minds,
	}
}

// InitializeNetwork creates count cells with balanced predefined roles. The
// population cap silently limits how many are actually created.
func (n *Network) InitializeNetwork(count int) error {
	if count <= 0 {
		return NewNetworkError(ErrInvalidInput, "cell count must be positive")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	created := 0
	for i := 0; i < count; i++ {
		if n.reg.Create("", "", "") != nil {
			created++
		}
	}

	n.logger.Info("Network initialized",
		Field{Key: "requested", Value: count},
		Field{Key: "created", Value: created},
	)
	return nil
}

// SetPurpose records the network's free-text goal and asks the purpose
// interpreter for initialization guidance. The guidance is advisory: an
// interpreter failure degrades to "no guidance" and is never fatal.
func (n *Network) SetPurpose(text string) error {
	if strings.TrimSpace(text) == "" {
		return NewNetworkError(ErrInvalidInput, "purpose cannot be empty")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.purpose = text

	guidance, err := n.minds.InterpretPurpose(context.Background(), text)
	if err != nil {
		n.logger.Warn("Purpose interpreter failed, proceeding without guidance",
			Field{Key: "error", Value: err},
		)
		return nil
	}

	n.logger.Info("Purpose set",
		Field{Key: "purpose", Value: text},
		Field{Key: "guidance", Value: guidance},
	)
	return nil
}

// Tick advances simulated time by one unit.
func (n *Network) Tick() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.engine.Tick()
	n.msgs.purge(time.Now())
}

// AddCell creates a new cell, optionally cloned from a parent and with an
// explicit expertise. Returns nil with no error when the population cap is
// reached: capacity exhaustion is silent, not a failure.
func (n *Network) AddCell(parentID, expertise string) (*Cell, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var parent *Cell
	if parentID != "" {
		parent = n.reg.Get(parentID)
		if parent == nil {
			return nil, NewNetworkError(ErrCellNotFound, "parent cell "+parentID+" not found")
		}
		if !parent.IsAlive {
			return nil, NewNetworkError(ErrCellDead, "parent cell "+parentID+" is dead")
		}
	}

	child := n.reg.Create(expertise, "", parentID)
	if child == nil {
		return nil, nil
	}

	if parent != nil {
		parent.Record(HistoryClone, "cloned into "+child.ID)
		parent.Like(child.ID)
		parent.markActive(n.engine.TickCount())
	}

	return child.Clone(), nil
}

// RemoveCell hard-deletes a cell and purges it from every liked set.
func (n *Network) RemoveCell(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.reg.Remove(id)
}

// SendMessage routes and delivers a message. The returned Route tells the
// caller whether delivery degraded to a fallback path; an unreachable target
// yields a single-element path and a rationale, not an error.
func (n *Network) SendMessage(sourceID, targetID, content string) (Route, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.sendLocked(sourceID, targetID, content)
}

// sendLocked is the internal send path, shared by the public API and the
// deferred auto-replies that re-enter it from inside a tick.
func (n *Network) sendLocked(sourceID, targetID, content string) (Route, error) {
	if strings.TrimSpace(content) == "" {
		return Route{}, NewNetworkError(ErrInvalidInput, "message content cannot be empty")
	}
	if targetID == "" {
		return Route{}, NewNetworkError(ErrInvalidInput, "message target cannot be empty")
	}

	tick := n.engine.TickCount()

	var source *Cell
	if sourceID != SourceUser {
		source = n.reg.Get(sourceID)
		if source == nil {
			return Route{}, NewNetworkError(ErrCellNotFound, "source cell "+sourceID+" not found")
		}
		if !source.IsAlive {
			return Route{}, NewNetworkError(ErrCellDead, "source cell "+sourceID+" is dead")
		}
	}

	if targetID == TargetBroadcast {
		msg := NewMessage().From(sourceID).To(TargetBroadcast).WithContent(content).Build()
		n.msgs.add(msg)
		if source != nil {
			source.Record(HistorySent, "broadcast: "+content)
			source.markActive(tick)
		}
		n.deliverBroadcast(msg)
		return Route{Path: []string{sourceID}, Rationale: "broadcast to all alive cells"}, nil
	}

	if targetID == TargetUser && sourceID != SourceUser {
		msg := NewMessage().From(sourceID).To(TargetUser).WithContent(content).Build()
		n.msgs.add(msg)
		source.Record(HistorySent, "to user: "+content)
		source.markActive(tick)
		return Route{Path: []string{sourceID, TargetUser}, Rationale: "delivered to user"}, nil
	}

	if sourceID == SourceUser {
		target := n.reg.Get(targetID)
		if target == nil {
			return Route{}, NewNetworkError(ErrCellNotFound, "target cell "+targetID+" not found")
		}
		if !target.IsAlive {
			return Route{}, NewNetworkError(ErrCellDead, "target cell "+targetID+" is dead")
		}
		route := Route{Path: []string{SourceUser, targetID}, Rationale: "direct delivery from user"}
		msg := NewMessage().From(SourceUser).To(targetID).WithContent(content).WithRoute(route.Path).Build()
		n.msgs.add(msg)
		n.receive(target, msg, true)
		return route, nil
	}

	route := n.router.Resolve(context.Background(), sourceID, targetID, content)

	msg := NewMessage().From(sourceID).To(targetID).WithContent(content).WithRoute(route.Path).Build()
	n.msgs.add(msg)

	source.Record(HistorySent, fmt.Sprintf("to %s: %s", targetID, content))
	source.markActive(tick)

	if route.Unreachable() {
		source.Record(HistoryDecision, "message undeliverable: "+route.Rationale)
		return route, nil
	}

	n.walkPath(route.Path, msg)
	return route, nil
}

// AskForHelp has a cell request help. The help interpreter picks which
// neighbor expertise to target; an empty result degrades to broadcast.
func (n *Network) AskForHelp(cellID, text string) error {
	if strings.TrimSpace(text) == "" {
		return NewNetworkError(ErrInvalidInput, "help request cannot be empty")
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	cell := n.reg.Get(cellID)
	if cell == nil {
		return NewNetworkError(ErrCellNotFound, "cell "+cellID+" not found")
	}
	if !cell.IsAlive {
		return NewNetworkError(ErrCellDead, "cell "+cellID+" is dead")
	}

	var neighbors []*Cell
	expertiseSeen := make(map[string]bool)
	var expertise []string
	for _, nb := range n.reg.Neighbors(cellID, n.cfg.NeighborRadius) {
		if !nb.IsAlive {
			continue
		}
		neighbors = append(neighbors, nb)
		if !expertiseSeen[nb.Expertise] {
			expertiseSeen[nb.Expertise] = true
			expertise = append(expertise, nb.Expertise)
		}
	}

	result, err := n.minds.InterpretHelp(context.Background(), mind.HelpRequest{
		CellID:            cellID,
		Request:           text,
		NeighborExpertise: expertise,
	})

	relevant := make(map[string]bool)
	if err != nil || result == nil {
		n.logger.Warn("Help interpreter failed, broadcasting",
			Field{Key: "error", Value: err},
		)
	} else {
		for _, e := range result.RelevantExpertise {
			relevant[e] = true
		}
	}

	content := helpRequestPrefix + text

	var targets []*Cell
	for _, nb := range neighbors {
		if relevant[nb.Expertise] {
			targets = append(targets, nb)
		}
	}

	if len(targets) == 0 {
		_, err := n.sendLocked(cellID, TargetBroadcast, content)
		return err
	}

	for _, target := range targets {
		if _, err := n.sendLocked(cellID, target.ID, content); err != nil {
			n.logger.Warn("Targeted help message failed",
				Field{Key: "target_id", Value: target.ID},
				Field{Key: "error", Value: err},
			)
		}
	}
	return nil
}

// GetCellByID returns a copy of a cell.
func (n *Network) GetCellByID(id string) (*Cell, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	cell := n.reg.Get(id)
	if cell == nil {
		return nil, false
	}
	return cell.Clone(), true
}

// GetNeighbors returns copies of all cells within radius of the named cell.
// A non-positive radius uses the configured neighbor radius.
func (n *Network) GetNeighbors(id string, radius float64) []*Cell {
	n.mu.Lock()
	defer n.mu.Unlock()

	if radius <= 0 {
		radius = n.cfg.NeighborRadius
	}

	neighbors := n.reg.Neighbors(id, radius)
	out := make([]*Cell, 0, len(neighbors))
	for _, c := range neighbors {
		out = append(out, c.Clone())
	}
	return out
}

// GetCellConnections returns the alive-cell adjacency map at the configured
// neighbor radius.
func (n *Network) GetCellConnections() map[string][]string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.reg.Connections(n.cfg.NeighborRadius)
}

// Snapshot returns a deep copy of the whole network state.
func (n *Network) Snapshot() State {
	n.mu.Lock()
	defer n.mu.Unlock()

	cells := make(map[string]*Cell, n.reg.Len())
	for _, c := range n.reg.List() {
		cells[c.ID] = c.Clone()
	}

	return State{
		Cells:     cells,
		Messages:  n.msgs.snapshot(),
		TickCount: n.engine.TickCount(),
		Purpose:   n.purpose,
	}
}

// TickCount returns the current simulated time.
func (n *Network) TickCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.engine.TickCount()
}

// Purpose returns the network's free-text goal.
func (n *Network) Purpose() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.purpose
}

// AliveCount returns the number of living cells.
func (n *Network) AliveCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.reg.AliveCount()
}
