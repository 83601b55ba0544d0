package network

import (
	"log"
	"math/rand"
	"time"

	"github.com/maxmuv/dos/sim/timing"
)

// Builder can build network layers.
type Builder struct {
	clock     timing.Clock
	errorRate float64
	seed      int64
	seeded    bool
	logger    *log.Logger
}

// MakeBuilder creates a builder with a lossless network and a wall clock.
func MakeBuilder() Builder {
	return Builder{}
}

// WithClock sets the clock that stamps the messages.
func (b Builder) WithClock(c timing.Clock) Builder {
	b.clock = c
	return b
}

// WithErrorRate sets the probability that a single send is lost.
func (b Builder) WithErrorRate(r float64) Builder {
	b.errorRate = r
	return b
}

// WithSeed fixes the seed of the loss draws. Without it the seed is taken
// from the current time.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	b.seeded = true

	return b
}

// WithLogger sets the logger of the layer.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// Build creates the network layer and starts its clock.
func (b Builder) Build() *Layer {
	errorRateMustBeValid(b.errorRate)

	clock := b.clock
	if clock == nil {
		clock = timing.MakeWallClockBuilder().Build()
	}

	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}

	seed := b.seed
	if !b.seeded {
		seed = time.Now().UnixNano()
	}

	l := &Layer{
		clock:     clock,
		logger:    logger,
		links:     make(map[int]map[int]timing.VTimeInTick),
		rand:      rand.New(rand.NewSource(seed)),
		errorRate: b.errorRate,
	}

	clock.Start()

	return l
}

func errorRateMustBeValid(r float64) {
	if r < 0 || r > 1 {
		log.Panicf("error rate %f is not in [0, 1]", r)
	}
}
