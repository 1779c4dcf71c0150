package network

import (
	"fmt"
	"math/rand"
	"sort"
)

// task is one deferred unit of work scheduled onto the engine's single-writer
// queue. Deferred auto-replies and simulated work go through here instead of
// free-running timers so ordering follows the tick loop.
type task struct {
	due int
	seq int
	fn  func()
}

// taskQueue holds deferred tasks ordered by due tick, then enqueue order.
type taskQueue struct {
	tasks   []task
	nextSeq int
}

// schedule enqueues fn to run once the tick counter reaches due.
func (q *taskQueue) schedule(due int, fn func()) {
	q.tasks = append(q.tasks, task{due: due, seq: q.nextSeq, fn: fn})
	q.nextSeq++
}

// drain runs every task due at or before now. Tasks enqueued while draining
// are left for a later tick.
func (q *taskQueue) drain(now int) {
	var due, rest []task
	for _, t := range q.tasks {
		if t.due <= now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	q.tasks = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	for _, t := range due {
		t.fn()
	}
}

func (q *taskQueue) pending() int {
	return len(q.tasks)
}

// Engine is the lifecycle scheduler. One Tick advances simulated time by one
// unit: aging, death, sleep/wake policy, spontaneous cloning, message log
// truncation, movement, and liked-cell pruning. Not reentrant; the facade
// serializes ticks.
type Engine struct {
	reg      *Registry
	cfg      *Config
	rng      *rand.Rand
	logger   Logger
	msgs     *messageLog
	tasks    taskQueue
	movement *movementModel

	tickCount int
}

// NewEngine creates a tick engine over the given registry and message log.
func NewEngine(reg *Registry, msgs *messageLog, cfg *Config, rng *rand.Rand, logger Logger) *Engine {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Engine{
		reg:      reg,
		cfg:      cfg,
		rng:      rng,
		logger:   logger,
		msgs:     msgs,
		movement: newMovementModel(cfg, rng),
	}
}

// TickCount returns the current simulated time.
func (e *Engine) TickCount() int {
	return e.tickCount
}

// Schedule enqueues a deferred task relative to the current tick.
func (e *Engine) Schedule(delay int, fn func()) {
	if delay < 1 {
		delay = 1
	}
	e.tasks.schedule(e.tickCount+delay, fn)
}

// PendingTasks returns the number of queued deferred tasks.
func (e *Engine) PendingTasks() int {
	return e.tasks.pending()
}

// Tick advances the simulation by one step. It never raises to the caller:
// per-cell anomalies are recovered, logged, and repaired in place.
func (e *Engine) Tick() {
	e.tickCount++
	now := e.tickCount

	for _, c := range e.reg.List() {
		e.tickCell(c, now)
	}

	e.msgs.truncate()

	for _, c := range e.reg.List() {
		if c.IsAlive && c.Status == StatusActive {
			e.movement.step(c, e.reg.List())
		}
	}

	e.reg.pruneLiked()

	e.tasks.drain(now)
}

// tickCell runs one cell's per-tick lifecycle, recovering from any panic so a
// single broken cell cannot abort the tick.
func (e *Engine) tickCell(c *Cell, now int) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("Cell tick panicked, repairing",
				Field{Key: "cell_id", Value: c.ID},
				Field{Key: "panic", Value: r},
			)
			c.repairHistory()
		}
	}()

	if !c.IsAlive {
		return
	}

	c.Age++
	c.touch()
	if c.Age > e.cfg.MaxAge {
		c.die()
		e.logger.Info("Cell died of old age",
			Field{Key: "cell_id", Value: c.ID},
			Field{Key: "age", Value: c.Age},
		)
		return
	}

	if c.Status == StatusSleeping {
		if e.rng.Float64() < e.cfg.WakeProb {
			c.Status = StatusActive
			c.markActive(now)
			c.Record(HistoryWake, "woke up spontaneously")
		}
		return
	}

	e.applySleepPolicy(c, now)
	if c.Status == StatusSleeping {
		return
	}

	if e.rng.Float64() < e.cfg.SelfCheckProb {
		c.Record(HistorySelfCheck, "routine self check: all systems nominal")
		c.markActive(now)
	}

	e.maybeClone(c, now)
}

// applySleepPolicy puts an idle cell to sleep unless it is mid-conversation
// or holds a critical goal. Every decision branch lands in history.
func (e *Engine) applySleepPolicy(c *Cell, now int) {
	if now-c.LastActiveTick <= e.cfg.IdleSleepAfter {
		return
	}

	switch {
	case c.awaitingReply():
		c.Record(HistoryDecision, "staying awake: awaiting a reply")
	case c.hasCriticalGoal():
		c.Record(HistoryDecision, "staying awake: critical goal")
	case e.rng.Float64() < e.cfg.SleepProb:
		c.Status = StatusSleeping
		c.Record(HistorySleep, fmt.Sprintf("fell asleep after %d idle ticks", now-c.LastActiveTick))
	}
}

// maybeClone rolls the spontaneous clone schedule: past a minimum age, on an
// age-modulo cadence, with low probability, subject to the population cap.
func (e *Engine) maybeClone(c *Cell, now int) {
	if c.Age < e.cfg.CloneMinAge || c.Age%e.cfg.CloneAgeInterval != 0 {
		return
	}
	if e.rng.Float64() >= e.cfg.CloneProb {
		return
	}

	child := e.reg.Create("", "", c.ID)
	if child == nil {
		return
	}

	c.Record(HistoryClone, "cloned into "+child.ID)
	c.Like(child.ID)
	c.markActive(now)

	e.logger.Info("Cell cloned",
		Field{Key: "parent_id", Value: c.ID},
		Field{Key: "child_id", Value: child.ID},
	)
}
