// Package timing provides the shared simulated clock that every process and
// the network layer read.
package timing

import (
	"github.com/maxmuv/dos/sim/hooking"
)

// VTimeInTick is a point in simulated time, counted in whole ticks.
type VTimeInTick int64

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTimeInTick
}

// A Clock is a TimeTeller with a lifecycle. The value returned by Now never
// decreases.
type Clock interface {
	hooking.Hookable
	TimeTeller

	// Start begins advancing the clock. Calling Start twice has no effect.
	Start()

	// Stop halts the clock and waits for its updater to exit.
	Stop()
}

// HookPosTickAdvance is triggered every time the clock value increases. The
// hook item is the new VTimeInTick.
var HookPosTickAdvance = &hooking.HookPos{Name: "TickAdvance"}
