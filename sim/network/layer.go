// Package network delivers messages between simulated processes. It keeps a
// directed weighted graph of links, stamps every message with the shared
// clock and drops messages at random to model an unreliable medium.
package network

import (
	"log"
	"math/rand"
	"sort"
	"sync"

	"github.com/maxmuv/dos/sim/hooking"
	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/queueing"
	"github.com/maxmuv/dos/sim/simerr"
	"github.com/maxmuv/dos/sim/timing"
)

// HookPosSend marks when a message copy is about to be put into a
// destination queue. The item is the copy.
var HookPosSend = &hooking.HookPos{Name: "Network Send"}

// HookPosDrop marks when a send fails. The item is the message that was
// given to Send and the detail is the simerr.Code of the failure.
var HookPosDrop = &hooking.HookPos{Name: "Network Drop"}

// Layer is the network that connects the processes of a simulation.
type Layer struct {
	hooking.HookableBase

	clock  timing.Clock
	logger *log.Logger

	lock   sync.RWMutex
	queues []queueing.Queue
	links  map[int]map[int]timing.VTimeInTick

	randLock  sync.Mutex
	rand      *rand.Rand
	errorRate float64

	timerLock sync.Mutex
	timers    []*Timer
	closed    bool
}

// Name returns the name of the layer.
func (l *Layer) Name() string {
	return "Network"
}

// Clock returns the clock used to stamp messages.
func (l *Layer) Clock() timing.Clock {
	return l.clock
}

// Now returns the current simulated time.
func (l *Layer) Now() timing.VTimeInTick {
	return l.clock.Now()
}

// Size returns one more than the largest registered node id.
func (l *Layer) Size() int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return len(l.queues)
}

// RegisterProcess makes the queue reachable under the given node id. The
// layer does not own the queue.
func (l *Layer) RegisterProcess(node int, q queueing.Queue) error {
	if node < 0 {
		return simerr.SizeTooBig
	}

	if q == nil {
		return simerr.ObjectIsNull
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	for len(l.queues) <= node {
		l.queues = append(l.queues, nil)
	}

	if l.queues[node] != nil {
		return simerr.DuplicateItems
	}

	l.queues[node] = q

	return nil
}

// Queue returns the queue registered for the node, or nil.
func (l *Layer) Queue(node int) queueing.Queue {
	l.lock.RLock()
	defer l.lock.RUnlock()

	if node < 0 || node >= len(l.queues) {
		return nil
	}

	return l.queues[node]
}

// CreateLink adds a link from a to b, and from b to a if bidirectional is
// set. Links from a node to itself are ignored. An existing link gets the new
// cost.
func (l *Layer) CreateLink(a, b int, bidirectional bool, cost timing.VTimeInTick) {
	if cost < 0 {
		log.Panicf("link %d -> %d has negative cost %d", a, b, cost)
	}

	if a == b {
		l.logger.Printf("network: ignoring link from node %d to itself", a)
		return
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	l.addLink(a, b, cost)
	if bidirectional {
		l.addLink(b, a, cost)
	}
}

func (l *Layer) addLink(from, to int, cost timing.VTimeInTick) {
	out, found := l.links[from]
	if !found {
		out = make(map[int]timing.VTimeInTick)
		l.links[from] = out
	}

	out[to] = cost
}

// AddLinksToAll links the node to every node id below Size.
func (l *Layer) AddLinksToAll(from int, bidirectional bool, cost timing.VTimeInTick) {
	for i := 0; i < l.Size(); i++ {
		l.CreateLink(from, i, bidirectional, cost)
	}
}

// AddLinksFromAll links every node id below Size to the node.
func (l *Layer) AddLinksFromAll(to int, bidirectional bool, cost timing.VTimeInTick) {
	for i := 0; i < l.Size(); i++ {
		l.CreateLink(i, to, bidirectional, cost)
	}
}

// AddLinksAllToAll creates a complete graph over the node ids below Size.
func (l *Layer) AddLinksAllToAll(bidirectional bool, cost timing.VTimeInTick) {
	n := l.Size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			l.CreateLink(i, j, bidirectional, cost)
		}
	}
}

// Link returns the cost of the link from a to b. Messages from the system
// (a < 0) and messages to self always get through at no cost.
func (l *Layer) Link(a, b int) (timing.VTimeInTick, bool) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.linkLocked(a, b)
}

func (l *Layer) linkLocked(a, b int) (timing.VTimeInTick, bool) {
	if a < 0 || a == b {
		return 0, true
	}

	cost, found := l.links[a][b]

	return cost, found
}

// Neighbors returns the ids of the nodes the node has a link to, ascending.
func (l *Layer) Neighbors(node int) []int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	out := l.links[node]
	ids := make([]int, 0, len(out))
	for id := range out {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}

// SetErrorRate changes the probability that a single send is lost.
func (l *Layer) SetErrorRate(r float64) {
	errorRateMustBeValid(r)

	l.randLock.Lock()
	l.errorRate = r
	l.randLock.Unlock()
}

// ErrorRate returns the probability that a single send is lost.
func (l *Layer) ErrorRate() float64 {
	l.randLock.Lock()
	defer l.randLock.Unlock()

	return l.errorRate
}

func (l *Layer) lost() bool {
	l.randLock.Lock()
	defer l.randLock.Unlock()

	return l.errorRate > 0 && l.rand.Float64() < l.errorRate
}

// Send delivers a copy of the message from one node to another. With to set
// to msg.Broadcast, every registered node, the sender included, gets a copy;
// ids without a queue are skipped;
// failures of individual copies are ignored then. The message given is never
// modified, so it can be sent again.
func (l *Layer) Send(from, to int, m *msg.Message) error {
	if to == msg.Broadcast {
		for _, node := range l.registered() {
			_ = l.sendTo(from, node, m)
		}

		return nil
	}

	return l.sendTo(from, to, m)
}

// registered returns the ids that have a queue, in ascending order.
func (l *Layer) registered() []int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	nodes := make([]int, 0, len(l.queues))
	for node, q := range l.queues {
		if q != nil {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

func (l *Layer) sendTo(from, to int, m *msg.Message) error {
	now := l.clock.Now()

	l.lock.RLock()
	size := len(l.queues)
	l.lock.RUnlock()

	if to < 0 || to >= size {
		return l.drop(m, simerr.SizeTooBig, now)
	}

	if l.lost() {
		return l.drop(m, simerr.TimeOut, now)
	}

	l.lock.RLock()
	q := l.queues[to]
	cost, linked := l.linkLocked(from, to)
	l.lock.RUnlock()

	if q == nil || !linked {
		return l.drop(m, simerr.ItemNotFound, now)
	}

	c := m.Clone()
	c.From = from
	c.To = to
	c.SendTime = now
	c.DeliveryTime = now + cost

	l.invoke(HookPosSend, c, nil, now)

	q.Enqueue(c)

	return nil
}

func (l *Layer) drop(
	m *msg.Message,
	code simerr.Code,
	now timing.VTimeInTick,
) error {
	l.invoke(HookPosDrop, m, code, now)
	return code
}

func (l *Layer) invoke(
	pos *hooking.HookPos,
	item, detail interface{},
	now timing.VTimeInTick,
) {
	if l.NumHooks() == 0 {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    pos,
		Now:    int64(now),
		Item:   item,
		Detail: detail,
	})
}

// Close stops all the timers and then the clock. Close can be called more
// than once.
func (l *Layer) Close() {
	l.timerLock.Lock()
	if l.closed {
		l.timerLock.Unlock()
		return
	}

	l.closed = true
	timers := l.timers
	l.timers = nil
	l.timerLock.Unlock()

	for _, t := range timers {
		t.Stop()
	}

	l.clock.Stop()
}
