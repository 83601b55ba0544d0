// Package process runs the simulated nodes. A process owns a delivery queue,
// polls it against the shared clock and offers every ready message to its
// handlers in registration order.
package process

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxmuv/dos/sim/hooking"
	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/queueing"
	"github.com/maxmuv/dos/sim/simerr"
	"github.com/maxmuv/dos/sim/timing"
)

// HookPosBeforeDispatch marks when a ready message is taken from the queue,
// before any handler sees it.
var HookPosBeforeDispatch = &hooking.HookPos{Name: "Before Dispatch"}

// HookPosAfterDispatch marks when a handler claimed a message. The detail is
// the name of the handler.
var HookPosAfterDispatch = &hooking.HookPos{Name: "After Dispatch"}

// HookPosUnclaimed marks when no handler claimed a message. The message is
// discarded.
var HookPosUnclaimed = &hooking.HookPos{Name: "Unclaimed"}

// Network is what a process needs from the network layer.
type Network interface {
	RegisterProcess(node int, q queueing.Queue) error
	Send(from, to int, m *msg.Message) error
	Neighbors(node int) []int
}

type namedHandler struct {
	name    string
	handler Handler
}

// Process is one simulated node.
type Process struct {
	hooking.HookableBase

	id           int
	network      Network
	clock        timing.TimeTeller
	pollInterval time.Duration
	logger       *log.Logger
	queue        *queueing.DeliveryQueue

	lock     sync.RWMutex
	handlers []namedHandler

	alive     atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	started   atomic.Bool
	stop      chan struct{}
	done      chan struct{}
}

// ID returns the node id of the process.
func (p *Process) ID() int {
	return p.id
}

// Name returns a printable name of the process.
func (p *Process) Name() string {
	return fmt.Sprintf("Process[%d]", p.id)
}

// Queue returns the delivery queue of the process.
func (p *Process) Queue() *queueing.DeliveryQueue {
	return p.queue
}

// Now returns the current simulated time.
func (p *Process) Now() timing.VTimeInTick {
	return p.clock.Now()
}

// Logger returns the logger of the process.
func (p *Process) Logger() *log.Logger {
	return p.logger
}

// Neighbors returns the ids of the nodes this process has links to.
func (p *Process) Neighbors() []int {
	return p.network.Neighbors(p.id)
}

// Send sends the message from this process to another node.
func (p *Process) Send(to int, m *msg.Message) error {
	return p.network.Send(p.id, to, m)
}

// Broadcast sends the message to every registered node, this one included.
func (p *Process) Broadcast(m *msg.Message) error {
	return p.network.Send(p.id, msg.Broadcast, m)
}

// RegisterHandler appends a handler. Handlers registered earlier see the
// messages first.
func (p *Process) RegisterHandler(name string, h Handler) error {
	if h == nil {
		return simerr.ObjectIsNull
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	for _, nh := range p.handlers {
		if nh.name == name {
			return simerr.DuplicateItems
		}
	}

	p.handlers = append(p.handlers, namedHandler{name: name, handler: h})

	return nil
}

// Handler returns the handler registered under the name, or nil.
func (p *Process) Handler(name string) Handler {
	p.lock.RLock()
	defer p.lock.RUnlock()

	for _, nh := range p.handlers {
		if nh.name == name {
			return nh.handler
		}
	}

	return nil
}

// HandlerNames returns the names of the handlers in registration order.
func (p *Process) HandlerNames() []string {
	p.lock.RLock()
	defer p.lock.RUnlock()

	names := make([]string, len(p.handlers))
	for i, nh := range p.handlers {
		names[i] = nh.name
	}

	return names
}

// Alive tells if the poll goroutine is running.
func (p *Process) Alive() bool {
	return p.alive.Load()
}

// Start launches the poll goroutine. Calling Start again has no effect.
func (p *Process) Start() {
	p.startOnce.Do(func() {
		select {
		case <-p.stop:
			return
		default:
		}

		p.started.Store(true)
		p.alive.Store(true)

		go p.run()
	})
}

// Stop ends the poll goroutine and waits for it to exit. Messages still in
// the queue stay there.
func (p *Process) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})

	if p.started.Load() {
		<-p.done
	}
}

func (p *Process) run() {
	defer close(p.done)
	defer p.alive.Store(false)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		for p.Step() {
			select {
			case <-p.stop:
				return
			default:
			}
		}
	}
}

// Step takes at most one ready message from the queue and dispatches it. It
// returns false if no message was ready.
func (p *Process) Step() bool {
	now := p.clock.Now()

	m, ok := p.queue.PopIfReady(now)
	if !ok {
		return false
	}

	p.dispatch(m, now)

	return true
}

func (p *Process) dispatch(m *msg.Message, now timing.VTimeInTick) {
	p.invoke(HookPosBeforeDispatch, m, nil, now)

	p.lock.RLock()
	handlers := make([]namedHandler, len(p.handlers))
	copy(handlers, p.handlers)
	p.lock.RUnlock()

	for _, nh := range handlers {
		m.Rewind()

		if p.offer(nh, m) {
			p.invoke(HookPosAfterDispatch, m, nh.name, now)
			return
		}
	}

	p.invoke(HookPosUnclaimed, m, nil, now)
}

func (p *Process) offer(nh namedHandler, m *msg.Message) (claimed bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		de, ok := r.(*msg.DecodeError)
		if !ok {
			panic(r)
		}

		p.logger.Printf("%s: handler %s cannot decode %q from %d: %v",
			p.Name(), nh.name, m.Text(), m.From, de)

		claimed = true
	}()

	return nh.handler.Handle(p, m)
}

func (p *Process) invoke(
	pos *hooking.HookPos,
	item, detail interface{},
	now timing.VTimeInTick,
) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    pos,
		Now:    int64(now),
		Item:   item,
		Detail: detail,
	})
}
