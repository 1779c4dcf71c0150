package network

import (
	"strings"
	"time"
)

// Status is a cell's activity state, meaningful only while it is alive.
type Status string

const (
	// StatusActive marks a cell that participates in movement and messaging.
	StatusActive Status = "active"

	// StatusSleeping marks a cell that skips its per-tick logic until woken.
	StatusSleeping Status = "sleeping"
)

// History entry types.
const (
	HistoryInit      = "init"
	HistoryClone     = "clone"
	HistoryCloned    = "cloned"
	HistoryDeath     = "death"
	HistorySleep     = "sleep"
	HistoryWake      = "wake"
	HistorySent      = "sent"
	HistoryReceived  = "received"
	HistoryDecision  = "decision"
	HistorySelfCheck = "self_check"
	HistoryRepair    = "repair"
	HistoryColor     = "color"
	HistoryLike      = "like"
	HistoryUnlike    = "unlike"
	HistoryWork      = "work"
)

// HistoryEntry is an immutable, sequenced record of one state-changing event.
type HistoryEntry struct {
	Seq       int       `json:"seq"`
	Type      string    `json:"type"`
	Age       int       `json:"age"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Cell is one autonomous agent in the network. It is owned exclusively by the
// Registry; everything else refers to it by id. All mutation funnels through
// touch and Record so the version counter and history sequencing hold
// mechanically.
type Cell struct {
	ID              string          `json:"id"`
	Age             int             `json:"age"`
	Expertise       string          `json:"expertise"`
	Goal            string          `json:"goal"`
	Position        Point           `json:"position"`
	PositionHistory []Point         `json:"positionHistory"`
	IsAlive         bool            `json:"isAlive"`
	Status          Status          `json:"status"`
	LastActiveTick  int             `json:"lastActiveTick"`
	Version         int             `json:"version"`
	LikedCells      map[string]bool `json:"likedCells"`
	History         []HistoryEntry  `json:"history"`
	IndicatorColor  string          `json:"indicatorColor,omitempty"`

	nextSeq    int
	historyCap int
	trailCap   int
}

// touch bumps the version counter. Every observable mutation goes through it.
func (c *Cell) touch() {
	c.Version++
}

// Record appends a history entry with the next sequence number and bumps the
// version. Oldest entries are evicted once the cap is exceeded; sequence
// numbers are never reused.
func (c *Cell) Record(entryType, text string) {
	if c.History == nil {
		c.repairHistory()
	}

	c.History = append(c.History, HistoryEntry{
		Seq:       c.nextSeq,
		Type:      entryType,
		Age:       c.Age,
		Text:      text,
		Timestamp: time.Now(),
	})
	c.nextSeq++

	for len(c.History) > c.historyCap {
		c.History = c.History[1:]
	}

	c.touch()
}

// repairHistory rebuilds a corrupted history container in place, preserving
// the sequence counter so invariants survive the repair.
func (c *Cell) repairHistory() {
	c.History = make([]HistoryEntry, 0, c.historyCap)
	if c.nextSeq > 0 {
		c.History = append(c.History, HistoryEntry{
			Seq:       c.nextSeq,
			Type:      HistoryRepair,
			Age:       c.Age,
			Text:      "history container rebuilt",
			Timestamp: time.Now(),
		})
		c.nextSeq++
	}
	c.touch()
}

// markActive refreshes the cell's last-active tick.
func (c *Cell) markActive(tick int) {
	c.LastActiveTick = tick
	c.touch()
}

// Like adds a directed social edge toward another cell.
func (c *Cell) Like(id string) {
	if id == "" || id == c.ID || c.LikedCells[id] {
		return
	}
	if c.LikedCells == nil {
		c.LikedCells = make(map[string]bool)
	}
	c.LikedCells[id] = true
	c.touch()
}

// Unlike removes a directed social edge.
func (c *Cell) Unlike(id string) {
	if !c.LikedCells[id] {
		return
	}
	delete(c.LikedCells, id)
	c.touch()
}

// recordPosition moves the cell and appends the new position to the bounded
// trail. The trail is display-only and may be truncated without semantic loss.
func (c *Cell) recordPosition(p Point) {
	c.Position = p
	c.PositionHistory = append(c.PositionHistory, p)
	for len(c.PositionHistory) > c.trailCap {
		c.PositionHistory = c.PositionHistory[1:]
	}
	c.touch()
}

// die freezes the cell. Age stops, status is forced to sleeping, and the cell
// becomes immutable except for removal.
func (c *Cell) die() {
	c.Record(HistoryDeath, "died of old age")
	c.IsAlive = false
	c.Status = StatusSleeping
	c.touch()
}

// Clone returns a deep copy suitable for read-only snapshots.
func (c *Cell) Clone() *Cell {
	clone := *c

	clone.PositionHistory = append([]Point(nil), c.PositionHistory...)
	clone.History = append([]HistoryEntry(nil), c.History...)

	clone.LikedCells = make(map[string]bool, len(c.LikedCells))
	for id := range c.LikedCells {
		clone.LikedCells[id] = true
	}

	return &clone
}

// criticalGoalKeywords mark goals the sleep policy treats as always-on duty.
var criticalGoalKeywords = []string{"monitor", "security", "alert", "coordinate"}

// genericGoalKeywords cancel the critical classification for catch-all goals.
var genericGoalKeywords = []string{"general", "assist", "idle"}

// hasCriticalGoal reports whether the cell's goal keeps it awake: a critical
// keyword match that is not also a generic catch-all.
func (c *Cell) hasCriticalGoal() bool {
	goal := strings.ToLower(c.Goal)

	critical := false
	for _, kw := range criticalGoalKeywords {
		if strings.Contains(goal, kw) {
			critical = true
			break
		}
	}
	if !critical {
		return false
	}

	for _, kw := range genericGoalKeywords {
		if strings.Contains(goal, kw) {
			return false
		}
	}
	return true
}

// awaitingReply reports whether the cell is mid-conversation: it has sent a
// message (or asked for help) more recently than it has received one.
func (c *Cell) awaitingReply() bool {
	lastSent, lastReceived := -1, -1
	for _, e := range c.History {
		switch e.Type {
		case HistorySent:
			lastSent = e.Seq
		case HistoryReceived:
			lastReceived = e.Seq
		}
	}
	return lastSent >= 0 && lastSent > lastReceived
}
