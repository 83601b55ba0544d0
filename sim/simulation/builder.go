package simulation

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/rs/xid"

	"github.com/maxmuv/dos/datarecording"
	"github.com/maxmuv/dos/monitoring"
	"github.com/maxmuv/dos/sim/id"
	"github.com/maxmuv/dos/sim/network"
	"github.com/maxmuv/dos/sim/process"
	"github.com/maxmuv/dos/sim/timing"
	"github.com/maxmuv/dos/tracing"
)

// Builder can build simulations.
type Builder struct {
	clock        timing.Clock
	seed         int64
	seeded       bool
	errorRate    float64
	pollInterval time.Duration
	logger       *log.Logger
	msgLogger    *log.Logger
	parallelIDs  bool
	trace        bool
	tracePath    string
	monitor      bool
	monitorPort  int
	browser      bool
}

// MakeBuilder creates a builder for a lossless simulation on a wall clock,
// without recording or monitoring.
func MakeBuilder() Builder {
	return Builder{
		pollInterval: time.Millisecond,
	}
}

// WithClock sets the shared clock.
func (b Builder) WithClock(c timing.Clock) Builder {
	b.clock = c
	return b
}

// WithSeed fixes the seed of the loss draws.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	b.seeded = true

	return b
}

// WithErrorRate sets the initial probability that a send is lost.
func (b Builder) WithErrorRate(r float64) Builder {
	b.errorRate = r
	return b
}

// WithPollInterval sets how often the processes check their queues.
func (b Builder) WithPollInterval(d time.Duration) Builder {
	b.pollInterval = d
	return b
}

// WithLogger sets the logger of the simulation and its processes.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithMsgLogger prints every message event into the logger.
func (b Builder) WithMsgLogger(l *log.Logger) Builder {
	b.msgLogger = l
	return b
}

// WithParallelIDGenerator switches message IDs to xid. It must be used
// before any message is created.
func (b Builder) WithParallelIDGenerator() Builder {
	b.parallelIDs = true
	return b
}

// WithTraceFile records the message trace into an SQLite file. An empty
// path gets a generated name.
func (b Builder) WithTraceFile(path string) Builder {
	b.trace = true
	b.tracePath = path

	return b
}

// WithMonitor serves the monitoring web page while the simulation runs.
func (b Builder) WithMonitor() Builder {
	b.monitor = true
	return b
}

// WithMonitorPort sets the port of the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowser opens the monitoring page in a browser.
func (b Builder) WithBrowser() Builder {
	b.browser = true
	return b
}

// Build creates the simulation. The clock starts running right away.
func (b Builder) Build() (*Simulation, error) {
	if b.parallelIDs {
		id.UseParallelIDGenerator()
	}

	logger := b.logger
	if logger == nil {
		logger = log.Default()
	}

	seed := b.seed
	if !b.seeded {
		seed = time.Now().UnixNano()
	}

	s := &Simulation{
		id:           xid.New().String(),
		logger:       logger,
		pollInterval: b.pollInterval,
		registry:     process.NewRegistry(),
		processes:    make(map[int]*process.Process),
	}

	if err := b.buildRecorder(s, seed); err != nil {
		return nil, err
	}

	s.network = network.MakeBuilder().
		WithClock(b.clock).
		WithErrorRate(b.errorRate).
		WithSeed(seed).
		WithLogger(logger).
		Build()
	s.clock = s.network.Clock()

	if b.trace || b.monitor {
		s.tracer = tracing.NewMsgTracer(s.recorder)
		tracing.Collect(s.network, s.tracer)
	}

	if b.msgLogger != nil {
		s.msgLogger = tracing.NewMsgLogger(b.msgLogger)
		tracing.Collect(s.network, s.msgLogger)
	}

	if b.monitor {
		b.buildMonitor(s)
	}

	return s, nil
}

func (b Builder) buildRecorder(s *Simulation, seed int64) error {
	if !b.trace {
		return nil
	}

	path := b.tracePath
	if path == "" {
		path = "dssim_" + s.id
	}

	recorder, err := datarecording.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace: %w", err)
	}

	s.recorder = recorder
	s.execRecorder = datarecording.NewExecRecorder(recorder)
	s.execRecorder.Start()
	s.execRecorder.Record("Simulation ID", s.id)
	s.execRecorder.Record("Seed", strconv.FormatInt(seed, 10))
	s.execRecorder.Record("Error Rate", strconv.FormatFloat(b.errorRate, 'g', -1, 64))

	return nil
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor().WithPortNumber(b.monitorPort)
	if b.browser {
		s.monitor.WithBrowser()
	}

	s.monitor.RegisterClock(s.clock)
	s.monitor.RegisterTrafficCounter(s.tracer)
	s.monitorURL = s.monitor.StartServer()
}
