package timing

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxmuv/dos/sim/hooking"
)

// WallClockBuilder builds WallClocks.
type WallClockBuilder struct {
	tickDuration time.Duration
	pollInterval time.Duration
}

// MakeWallClockBuilder returns a builder with the default cadence: one tick
// per elapsed second, sampled every 100ms.
func MakeWallClockBuilder() WallClockBuilder {
	return WallClockBuilder{
		tickDuration: time.Second,
		pollInterval: 100 * time.Millisecond,
	}
}

// WithTickDuration sets how much real time one tick represents.
func (b WallClockBuilder) WithTickDuration(d time.Duration) WallClockBuilder {
	b.tickDuration = d
	return b
}

// WithPollInterval sets how often the updater samples the real time.
func (b WallClockBuilder) WithPollInterval(d time.Duration) WallClockBuilder {
	b.pollInterval = d
	return b
}

// Build creates a stopped WallClock.
func (b WallClockBuilder) Build() *WallClock {
	if b.tickDuration <= 0 {
		panic("tick duration must be positive")
	}

	if b.pollInterval <= 0 {
		panic("poll interval must be positive")
	}

	return &WallClock{
		tickDuration: b.tickDuration,
		pollInterval: b.pollInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// WallClock derives the tick count from the real time elapsed since Start.
// Exactly one goroutine writes the value; readers load it atomically and may
// see a value up to one poll interval stale.
type WallClock struct {
	hooking.HookableBase

	tick         atomic.Int64
	tickDuration time.Duration
	pollInterval time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// Now returns the last tick published by the updater.
func (c *WallClock) Now() VTimeInTick {
	return VTimeInTick(c.tick.Load())
}

// TickDuration returns how much real time one tick represents.
func (c *WallClock) TickDuration() time.Duration {
	return c.tickDuration
}

// Start launches the updater goroutine.
func (c *WallClock) Start() {
	c.startOnce.Do(func() {
		c.started.Store(true)
		go c.run(time.Now())
	})
}

// Stop signals the updater and waits for it to exit.
func (c *WallClock) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})

	if c.started.Load() {
		<-c.done
	}
}

func (c *WallClock) run(start time.Time) {
	defer close(c.done)

	for {
		elapsed := int64(time.Since(start) / c.tickDuration)
		if elapsed > c.tick.Load() {
			c.tick.Store(elapsed)
			c.publish(VTimeInTick(elapsed))
		}

		select {
		case <-c.stop:
			return
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *WallClock) publish(now VTimeInTick) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosTickAdvance,
		Now:    int64(now),
		Item:   now,
	})
}
