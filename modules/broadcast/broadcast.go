// Package broadcast is a flooding test module. A TEST_HELLO n is passed on
// to every neighbor as TEST_HELLO n+1 while n is below MaxHops, and answered
// with TEST_BYE to every neighbor once it reaches MaxHops.
package broadcast

import (
	"strings"
	"sync/atomic"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/process"
)

// Name is the module name used in scenarios.
const Name = "TEST"

// Message texts.
const (
	Hello = "TEST_HELLO"
	Bye   = "TEST_BYE"
)

// MaxHops is the hop count at which hellos stop spreading.
const MaxHops = 2

// Flood counts what one process received.
type Flood struct {
	hellos atomic.Int64
	byes   atomic.Int64
}

// Factory creates a handler per process.
func Factory() process.Handler {
	return &Flood{}
}

// Hellos returns how many TEST_HELLO messages were handled.
func (f *Flood) Hellos() int {
	return int(f.hellos.Load())
}

// Byes returns how many TEST_BYE messages were handled.
func (f *Flood) Byes() int {
	return int(f.byes.Load())
}

// Handle implements process.Handler. It claims every TEST message and leaves
// system messages to the other handlers.
func (f *Flood) Handle(p *process.Process, m *msg.Message) bool {
	text, err := m.ReadString()
	if err != nil || !process.IsMine(Name, text) {
		return false
	}

	if strings.HasPrefix(text, msg.SystemPrefix) {
		return false
	}

	switch text {
	case Hello:
		hops := m.MustInt()
		f.hellos.Add(1)
		p.Logger().Printf("TEST[%d]: HELLO %d message received from %d", p.ID(), hops, m.From)

		if hops < MaxHops {
			flood(p, msg.Int(hops+1))
		} else {
			flood(p)
		}
	case Bye:
		f.byes.Add(1)
		p.Logger().Printf("TEST[%d]: BYE message received from %d", p.ID(), m.From)
	}

	return true
}

// flood sends a hello carrying the hop count to every neighbor, or a bye when
// no hop count is given.
func flood(p *process.Process, hops ...msg.Arg) {
	args := []msg.Arg{msg.String(Bye)}
	if len(hops) > 0 {
		args = []msg.Arg{msg.String(Hello), hops[0]}
	}

	for _, n := range p.Neighbors() {
		if err := p.Send(n, msg.New(args...)); err != nil {
			p.Logger().Printf("TEST[%d]: cannot send to %d: %v", p.ID(), n, err)
		}
	}
}
