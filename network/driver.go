package network

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Driver runs the tick loop on a fixed cadence. It can be paused and resumed
// without losing in-flight deferred tasks: a paused driver simply skips
// ticks, and queued tasks drain once ticking resumes.
type Driver struct {
	net      *Network
	interval time.Duration
	logger   Logger

	mu      sync.Mutex
	running bool
	paused  bool
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// NewDriver creates a tick driver for a network. A non-positive interval
// uses the network's configured tick interval.
func NewDriver(net *Network, interval time.Duration, logger Logger) *Driver {
	if interval <= 0 {
		interval = net.cfg.TickInterval
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Driver{
		net:      net,
		interval: interval,
		logger:   logger,
	}
}

// Start begins ticking in a background goroutine.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return NewNetworkError(ErrDriverRunning, "driver is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	d.running = true
	d.paused = false
	d.cancel = cancel
	d.group = group

	group.Go(func() error {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if d.isPaused() {
					continue
				}
				d.net.Tick()
			}
		}
	})

	d.logger.Info("Driver started", Field{Key: "interval", Value: d.interval})
	return nil
}

// Pause suspends ticking without stopping the loop.
func (d *Driver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

// Resume restarts ticking after a pause.
func (d *Driver) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

// isPaused reports the pause flag.
func (d *Driver) isPaused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

// IsRunning reports whether the tick loop is active.
func (d *Driver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Stop halts the tick loop and waits for it to exit. Any tick in progress
// completes first; queued deferred tasks remain in the network and are not
// cancelled.
func (d *Driver) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return NewNetworkError(ErrDriverStopped, "driver is not running")
	}
	cancel := d.cancel
	group := d.group
	d.running = false
	d.mu.Unlock()

	cancel()
	if err := group.Wait(); err != nil {
		d.logger.Warn("Driver loop exited with error", Field{Key: "error", Value: err})
		return err
	}

	d.logger.Info("Driver stopped")
	return nil
}
