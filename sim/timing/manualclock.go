package timing

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/maxmuv/dos/sim/hooking"
)

// ManualClock is a Clock that only moves when told to. It is used for
// stepped runs where the caller decides when simulated time passes.
type ManualClock struct {
	hooking.HookableBase

	lock sync.Mutex
	tick atomic.Int64
}

// NewManualClock creates a ManualClock at tick 0.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the current tick.
func (c *ManualClock) Now() VTimeInTick {
	return VTimeInTick(c.tick.Load())
}

// Start does nothing. The clock does not move by itself.
func (c *ManualClock) Start() {}

// Stop does nothing.
func (c *ManualClock) Stop() {}

// Advance moves the clock forward by d ticks.
func (c *ManualClock) Advance(d VTimeInTick) {
	if d < 0 {
		log.Panic("cannot move the clock backwards")
	}

	c.lock.Lock()
	now := VTimeInTick(c.tick.Add(int64(d)))
	c.lock.Unlock()

	if d > 0 {
		c.publish(now)
	}
}

// Set moves the clock to t, which must not be earlier than Now.
func (c *ManualClock) Set(t VTimeInTick) {
	c.lock.Lock()
	cur := VTimeInTick(c.tick.Load())

	if t < cur {
		c.lock.Unlock()
		log.Panicf("cannot move the clock backwards, now %d, set %d", cur, t)
	}

	c.tick.Store(int64(t))
	c.lock.Unlock()

	if t > cur {
		c.publish(t)
	}
}

func (c *ManualClock) publish(now VTimeInTick) {
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
