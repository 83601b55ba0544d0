// Package scenario builds a simulation from a script. Two formats are
// understood: the line oriented directive format, and Lua files that return
// a table describing the run.
package scenario

import (
	"time"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/network"
	"github.com/maxmuv/dos/sim/timing"
)

// A Target is what a scenario drives. *simulation.Simulation is a Target.
type Target interface {
	SetErrorRate(r float64)
	CreateProcesses(first, last int) error
	AssignModule(node int, module string) error
	CreateLink(a, b int, bidirectional bool, cost timing.VTimeInTick)
	AddLinksToAll(from int, bidirectional bool, cost timing.VTimeInTick)
	AddLinksFromAll(to int, bidirectional bool, cost timing.VTimeInTick)
	AddLinksAllToAll(bidirectional bool, cost timing.VTimeInTick)
	Send(from, to int, m *msg.Message) error
	LaunchTimer(period time.Duration) *network.Timer
}

// DefaultLatency is the cost of a link declared without one.
const DefaultLatency = 1

// all stands for every registered node in a link declaration.
const all = -2

// link adds the links between two endpoints, either of which may be all.
func link(t Target, from, to int, bidirectional bool, cost timing.VTimeInTick) {
	switch {
	case from == all && to == all:
		t.AddLinksAllToAll(bidirectional, cost)
	case from == all:
		t.AddLinksFromAll(to, bidirectional, cost)
	case to == all:
		t.AddLinksToAll(from, bidirectional, cost)
	default:
		t.CreateLink(from, to, bidirectional, cost)
	}
}

// textMessage builds the message of a send directive: a text and an
// optional int argument.
func textMessage(text string, arg *int) *msg.Message {
	args := []msg.Arg{msg.String(text)}
	if arg != nil {
		args = append(args, msg.Int(int32(*arg)))
	}

	return msg.New(args...)
}
