// Package bully implements the bully leader election as a process module.
//
// An election starts when a process receives BULLY_ELECTION. It forwards the
// election to every neighbor with a higher id and answers BULLY_ALIVE to the
// sender. A process without higher neighbors wins and announces
// BULLY_VICTORY. A process that started an election and hears nothing back
// within ElectionTime ticks of the shared timer declares itself the
// coordinator.
package bully

import (
	"sync"

	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/process"
)

// Name is the module name used in scenarios.
const Name = "BULLY"

// Message texts of the election.
const (
	Election = "BULLY_ELECTION"
	Alive    = "BULLY_ALIVE"
	Victory  = "BULLY_VICTORY"
)

// ElectionTime is how many timer ticks an election may stay unanswered.
const ElectionTime = 10

// NoCoordinator is reported before any election completes.
const NoCoordinator = -1

// Bully is the election state of one process.
type Bully struct {
	lock        sync.Mutex
	coordinator int
	startTime   int32
	started     bool
	gotAlive    bool
}

// New creates the election state of a process that knows no coordinator.
func New() *Bully {
	return &Bully{
		coordinator: NoCoordinator,
		startTime:   -1,
	}
}

// Factory creates a handler per process, for registration with a
// process.Registry.
func Factory() process.Handler {
	return New()
}

// Coordinator returns the id of the coordinator this process knows of.
func (b *Bully) Coordinator() int {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.coordinator
}

// Electing tells if an election started by this process is in progress.
func (b *Bully) Electing() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.started
}

// Handle implements process.Handler. Timer messages are observed but left
// for the other handlers of the process.
func (b *Bully) Handle(p *process.Process, m *msg.Message) bool {
	text, err := m.ReadString()
	if err != nil {
		return false
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	switch text {
	case Election:
		b.onElection(p, m.From)
	case Alive:
		b.gotAlive = true
		p.Logger().Printf("BULLY[%d]: ALIVE message received from %d", p.ID(), m.From)
	case Victory:
		b.onVictory(p, m.From)
	case msg.TimeText:
		b.onTime(p, m.MustInt())
		return false
	default:
		return false
	}

	return true
}

func (b *Bully) onElection(p *process.Process, from int) {
	p.Logger().Printf("BULLY[%d]: ELECTION message received from %d", p.ID(), from)

	b.started = true

	higher := higherThan(p.Neighbors(), p.ID())
	if len(higher) == 0 {
		b.win(p)
		return
	}

	sendAll(p, higher, Election)

	if from != msg.Broadcast {
		send(p, from, Alive)
	}
}

func (b *Bully) onVictory(p *process.Process, from int) {
	p.Logger().Printf("BULLY[%d]: VICTORY message received from %d", p.ID(), from)

	if from < p.ID() {
		b.win(p)
	} else {
		b.coordinator = from
		b.reset()
	}

	p.Logger().Printf("BULLY[%d]: Coordinator is %d", p.ID(), b.coordinator)
}

func (b *Bully) onTime(p *process.Process, now int32) {
	if !b.started {
		return
	}

	if b.startTime == -1 {
		b.startTime = now
	}

	if now <= b.startTime+ElectionTime {
		return
	}

	if !b.gotAlive {
		p.Logger().Printf("BULLY[%d]: Wait too long! Coordinator is me.", p.ID())
		b.win(p)

		return
	}

	p.Logger().Printf("BULLY[%d]: Wait too long! Start new elections.", p.ID())
	sendAll(p, higherThan(p.Neighbors(), p.ID()), Election)

	b.startTime = -1
	b.gotAlive = false
}

func (b *Bully) win(p *process.Process) {
	sendAll(p, p.Neighbors(), Victory)

	b.coordinator = p.ID()
	b.reset()
}

func (b *Bully) reset() {
	b.started = false
	b.startTime = -1
	b.gotAlive = false
}

func higherThan(neighbors []int, id int) []int {
	var higher []int

	for _, n := range neighbors {
		if n > id {
			higher = append(higher, n)
		}
	}

	return higher
}

func sendAll(p *process.Process, nodes []int, text string) {
	for _, n := range nodes {
		send(p, n, text)
	}
}

func send(p *process.Process, to int, text string) {
	if err := p.Send(to, msg.New(msg.String(text))); err != nil {
		p.Logger().Printf("BULLY[%d]: cannot send %s to %d: %v", p.ID(), text, to, err)
	}
}
