// Package queueing provides the per-process queue of messages waiting for
// their delivery time.
package queueing

import (
	"container/heap"
	"sync"

	"github.com/maxmuv/dos/sim/hooking"
	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/simerr"
	"github.com/maxmuv/dos/sim/timing"
)

// HookPosEnqueue marks when a message is put into a delivery queue.
var HookPosEnqueue = &hooking.HookPos{Name: "Queue Enqueue"}

// HookPosDequeue marks when a message leaves a delivery queue.
var HookPosDequeue = &hooking.HookPos{Name: "Queue Dequeue"}

// A Queue accepts messages from producers such as the network layer.
type Queue interface {
	Name() string
	Enqueue(m *msg.Message)
	Len() int
}

// DeliveryQueue holds the messages addressed to one process, ordered by
// delivery time. It is safe to use from several goroutines, although only
// the owning process is expected to take messages out.
type DeliveryQueue struct {
	hooking.HookableBase

	name string

	lock sync.Mutex
	msgs msgHeap
}

// NewDeliveryQueue creates an empty delivery queue.
func NewDeliveryQueue(name string) *DeliveryQueue {
	q := &DeliveryQueue{name: name}
	heap.Init(&q.msgs)

	return q
}

// Name returns the name of the queue.
func (q *DeliveryQueue) Name() string {
	return q.name
}

// Enqueue adds a message to the queue. The enqueue hooks see the message
// before it becomes visible to the consumer.
func (q *DeliveryQueue) Enqueue(m *msg.Message) {
	q.invoke(HookPosEnqueue, m, m.SendTime)

	q.lock.Lock()
	heap.Push(&q.msgs, m)
	q.lock.Unlock()
}

// DequeueMin removes and returns the message with the earliest delivery time,
// regardless of the current time.
func (q *DeliveryQueue) DequeueMin() (*msg.Message, error) {
	q.lock.Lock()
	if q.msgs.Len() == 0 {
		q.lock.Unlock()
		return nil, simerr.QueueIsEmpty
	}

	m := heap.Pop(&q.msgs).(*msg.Message)
	q.lock.Unlock()

	q.invoke(HookPosDequeue, m, m.DeliveryTime)

	return m, nil
}

// PopIfReady removes and returns the earliest message if its delivery time
// is not after now. The check and the removal happen under one lock.
func (q *DeliveryQueue) PopIfReady(now timing.VTimeInTick) (*msg.Message, bool) {
	q.lock.Lock()
	if q.msgs.Len() == 0 || q.msgs[0].DeliveryTime > now {
		q.lock.Unlock()
		return nil, false
	}

	m := heap.Pop(&q.msgs).(*msg.Message)
	q.lock.Unlock()

	q.invoke(HookPosDequeue, m, now)

	return m, true
}

// Peek returns the message with the earliest delivery time without removing
// it, or nil if the queue is empty. The result is advisory since other
// goroutines may change the queue right after Peek returns.
func (q *DeliveryQueue) Peek() *msg.Message {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.msgs.Len() == 0 {
		return nil
	}

	return q.msgs[0]
}

// Len returns the number of queued messages.
func (q *DeliveryQueue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.msgs.Len()
}

func (q *DeliveryQueue) invoke(
	pos *hooking.HookPos,
	m *msg.Message,
	now timing.VTimeInTick,
) {
	if q.NumHooks() == 0 {
		return
	}

	q.InvokeHook(hooking.HookCtx{
		Domain: q,
		Pos:    pos,
		Now:    int64(now),
		Item:   m,
	})
}

type msgHeap []*msg.Message

func (h msgHeap) Len() int {
	return len(h)
}

func (h msgHeap) Less(i, j int) bool {
	return h[i].DeliveryTime < h[j].DeliveryTime
}

func (h msgHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *msgHeap) Push(x interface{}) {
	*h = append(*h, x.(*msg.Message))
}

func (h *msgHeap) Pop() interface{} {
	old := *h
	n := len(old)
	m := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]

	return m
}
