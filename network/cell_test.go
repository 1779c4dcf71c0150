package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCell(historyCap int) *Cell {
	return &Cell{
		ID:         "cell-test0001",
		IsAlive:    true,
		Status:     StatusActive,
		LikedCells: make(map[string]bool),
		History:    make([]HistoryEntry, 0, historyCap),
		historyCap: historyCap,
		trailCap:   5,
	}
}

func TestRecordSequencesAreStrictlyIncreasing(t *testing.T) {
	c := newTestCell(100)

	for i := 0; i < 20; i++ {
		c.Record(HistorySelfCheck, "check")
	}

	require.Len(t, c.History, 20)
	for i := 1; i < len(c.History); i++ {
		assert.Greater(t, c.History[i].Seq, c.History[i-1].Seq)
	}
}

func TestRecordEvictsOldestPastCap(t *testing.T) {
	c := newTestCell(5)

	for i := 0; i < 12; i++ {
		c.Record(HistorySelfCheck, "check")
	}

	require.Len(t, c.History, 5)

	// Oldest entries evicted first; surviving sequence numbers are the most
	// recent, strictly increasing, with no reuse.
	assert.Equal(t, 7, c.History[0].Seq)
	assert.Equal(t, 11, c.History[4].Seq)
	for i := 1; i < len(c.History); i++ {
		assert.Equal(t, c.History[i-1].Seq+1, c.History[i].Seq)
	}
}

func TestRecordRepairsNilHistory(t *testing.T) {
	c := newTestCell(10)
	c.Record(HistoryInit, "initialized")

	c.History = nil
	c.Record(HistorySelfCheck, "check")

	require.NotNil(t, c.History)

	// The repair entry keeps the sequence counter moving forward.
	require.Len(t, c.History, 2)
	assert.Equal(t, HistoryRepair, c.History[0].Type)
	assert.Greater(t, c.History[1].Seq, c.History[0].Seq)
	assert.Greater(t, c.History[0].Seq, 0)
}

func TestEveryMutationBumpsVersion(t *testing.T) {
	c := newTestCell(10)

	v := c.Version
	c.Record(HistoryInit, "initialized")
	require.Greater(t, c.Version, v)

	v = c.Version
	c.Like("cell-other001")
	require.Greater(t, c.Version, v)

	v = c.Version
	c.Unlike("cell-other001")
	require.Greater(t, c.Version, v)

	v = c.Version
	c.recordPosition(Point{X: 1, Y: 2})
	require.Greater(t, c.Version, v)
}

func TestPositionTrailIsBounded(t *testing.T) {
	c := newTestCell(10)

	for i := 0; i < 12; i++ {
		c.recordPosition(Point{X: float64(i), Y: 0})
	}

	require.Len(t, c.PositionHistory, c.trailCap)
	assert.Equal(t, 11.0, c.PositionHistory[len(c.PositionHistory)-1].X)
}

func TestHasCriticalGoal(t *testing.T) {
	c := newTestCell(10)

	c.Goal = "monitor network security alerts"
	assert.True(t, c.hasCriticalGoal())

	c.Goal = "coordinate task distribution"
	assert.True(t, c.hasCriticalGoal())

	c.Goal = "analyze incoming data streams"
	assert.False(t, c.hasCriticalGoal())

	// A generic catch-all cancels the critical classification.
	c.Goal = "monitor things and assist in general"
	assert.False(t, c.hasCriticalGoal())
}

func TestAwaitingReply(t *testing.T) {
	c := newTestCell(10)
	assert.False(t, c.awaitingReply())

	c.Record(HistorySent, "to cell-b: hello")
	assert.True(t, c.awaitingReply())

	c.Record(HistoryReceived, "from cell-b: hi")
	assert.False(t, c.awaitingReply())
}

func TestCloneIsADeepCopy(t *testing.T) {
	c := newTestCell(10)
	c.Record(HistoryInit, "initialized")
	c.Like("cell-other001")
	c.recordPosition(Point{X: 3, Y: 4})

	clone := c.Clone()
	clone.Like("cell-other002")
	clone.History[0].Text = "mutated"
	clone.PositionHistory[0].X = 99

	assert.False(t, c.LikedCells["cell-other002"])
	assert.Equal(t, "initialized", c.History[0].Text)
	assert.NotEqual(t, 99.0, c.PositionHistory[0].X)
}

func TestDieFreezesTheCell(t *testing.T) {
	c := newTestCell(10)
	c.Age = 100

	c.die()

	assert.False(t, c.IsAlive)
	assert.Equal(t, StatusSleeping, c.Status)
	require.NotEmpty(t, c.History)
	assert.Equal(t, HistoryDeath, c.History[len(c.History)-1].Type)
}
