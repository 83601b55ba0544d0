package network

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/maxmuv/dos/sim/msg"
)

// Timer periodically broadcasts ("*TIME", n) from the system, with n counting
// up from 0. The first message goes out as soon as the timer starts.
type Timer struct {
	layer  *Layer
	period time.Duration
	count  atomic.Int32

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// LaunchTimer starts a timer owned by the layer. The layer stops it on Close.
func (l *Layer) LaunchTimer(period time.Duration) *Timer {
	if period <= 0 {
		log.Panicf("timer period %s must be positive", period)
	}

	t := &Timer{
		layer:  l,
		period: period,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	l.timerLock.Lock()
	if l.closed {
		l.timerLock.Unlock()
		log.Panic("cannot launch a timer on a closed network")
	}

	l.timers = append(l.timers, t)
	l.timerLock.Unlock()

	go t.run()

	return t
}

// Period returns the real time between two broadcasts.
func (t *Timer) Period() time.Duration {
	return t.period
}

// Count returns the number of broadcasts made so far.
func (t *Timer) Count() int {
	return int(t.count.Load())
}

func (t *Timer) run() {
	defer close(t.done)

	ticker := time.NewTicker(t.period)
	defer ticker.Stop()

	for {
		t.fire()

		select {
		case <-t.stop:
			return
		case <-ticker.C:
		}
	}
}

func (t *Timer) fire() {
	n := t.count.Load()
	m := msg.New(msg.String(msg.TimeText), msg.Int(n))
	_ = t.layer.Send(msg.Broadcast, msg.Broadcast, m)
	t.count.Add(1)
}

// Stop halts the timer and waits until it no longer sends. Stop can be
// called more than once.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})

	<-t.done
}
