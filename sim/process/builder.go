package process

import (
	"fmt"
	"log"
	"time"

	"github.com/maxmuv/dos/sim/queueing"
	"github.com/maxmuv/dos/sim/timing"
)

// Builder can build processes.
type Builder struct {
	network      Network
	clock        timing.TimeTeller
	pollInterval time.Duration
	logger       *log.Logger
}

// MakeBuilder creates a builder with the default poll interval of 1ms.
func MakeBuilder() Builder {
	return Builder{
		pollInterval: time.Millisecond,
	}
}

// WithNetwork sets the network the process sends through and registers with.
func (b Builder) WithNetwork(n Network) Builder {
	b.network = n
	return b
}

// WithClock sets the clock that decides when queued messages are ready.
func (b Builder) WithClock(c timing.TimeTeller) Builder {
	b.clock = c
	return b
}

// WithPollInterval sets how often the process checks its queue.
func (b Builder) WithPollInterval(d time.Duration) Builder {
	b.pollInterval = d
	return b
}

// WithLogger sets the logger that reports handler failures.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build creates a process with the given node id and registers its queue
// with the network. The process is not started.
func (b Builder) Build(id int) (*Process, error) {
	if b.network == nil {
		log.Panic("process needs a network")
	}

	if b.clock == nil {
		log.Panic("process needs a clock")
	}

	if b.pollInterval <= 0 {
		log.Panicf("poll interval %s must be positive", b.pollInterval)
	}

	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}

	p := &Process{
		id:           id,
		network:      b.network,
		clock:        b.clock,
		pollInterval: b.pollInterval,
		logger:       logger,
		queue:        queueing.NewDeliveryQueue(fmt.Sprintf("Process[%d].Queue", id)),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	if err := b.network.RegisterProcess(id, p.queue); err != nil {
		return nil, err
	}

	return p, nil
}
