package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverTicksTheNetwork(t *testing.T) {
	n := newTestNetwork(nil)
	require.NoError(t, n.InitializeNetwork(2))

	d := NewDriver(n, 2*time.Millisecond, NewNoOpLogger())
	require.NoError(t, d.Start(context.Background()))
	assert.True(t, d.IsRunning())

	require.Eventually(t, func() bool {
		return n.TickCount() >= 3
	}, time.Second, time.Millisecond)

	require.NoError(t, d.Stop())
	assert.False(t, d.IsRunning())
}

func TestDriverRejectsDoubleStartAndStop(t *testing.T) {
	n := newTestNetwork(nil)
	d := NewDriver(n, time.Millisecond, NewNoOpLogger())

	require.NoError(t, d.Start(context.Background()))

	err := d.Start(context.Background())
	assert.Equal(t, ErrDriverRunning, errCode(t, err))

	require.NoError(t, d.Stop())

	err = d.Stop()
	assert.Equal(t, ErrDriverStopped, errCode(t, err))
}

func TestDriverPauseSuspendsTicking(t *testing.T) {
	n := newTestNetwork(nil)
	d := NewDriver(n, time.Millisecond, NewNoOpLogger())

	require.NoError(t, d.Start(context.Background()))
	d.Pause()

	// Let any in-flight tick land, then confirm the counter stops moving.
	time.Sleep(5 * time.Millisecond)
	before := n.TickCount()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, n.TickCount())

	d.Resume()
	require.Eventually(t, func() bool {
		return n.TickCount() > before
	}, time.Second, time.Millisecond)

	require.NoError(t, d.Stop())
}

func TestDriverStopsWhenContextIsCancelled(t *testing.T) {
	n := newTestNetwork(nil)
	d := NewDriver(n, time.Millisecond, NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Start(ctx))
	cancel()

	require.NoError(t, d.Stop())
}
