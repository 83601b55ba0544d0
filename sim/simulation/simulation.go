// Package simulation owns everything a run is made of: the processes, the
// network layer and clock, the module registry and the optional recorder,
// tracer and monitor.
package simulation

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/maxmuv/dos/datarecording"
	"github.com/maxmuv/dos/monitoring"
	"github.com/maxmuv/dos/sim/msg"
	"github.com/maxmuv/dos/sim/network"
	"github.com/maxmuv/dos/sim/process"
	"github.com/maxmuv/dos/sim/simerr"
	"github.com/maxmuv/dos/sim/timing"
	"github.com/maxmuv/dos/tracing"
)

// A Simulation is the arena of processes of one run.
type Simulation struct {
	id           string
	clock        timing.Clock
	network      *network.Layer
	registry     *process.Registry
	logger       *log.Logger
	pollInterval time.Duration

	lock      sync.Mutex
	processes map[int]*process.Process

	recorder     datarecording.DataRecorder
	execRecorder *datarecording.ExecRecorder
	tracer       *tracing.MsgTracer
	msgLogger    *tracing.MsgLogger
	monitor      *monitoring.Monitor
	monitorURL   string

	terminateOnce sync.Once
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Clock returns the shared clock.
func (s *Simulation) Clock() timing.Clock {
	return s.clock
}

// Network returns the network layer.
func (s *Simulation) Network() *network.Layer {
	return s.network
}

// Registry returns the module registry.
func (s *Simulation) Registry() *process.Registry {
	return s.registry
}

// Tracer returns the message tracer, or nil if neither recording nor
// monitoring is enabled.
func (s *Simulation) Tracer() *tracing.MsgTracer {
	return s.tracer
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server, or "".
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterModule makes a module available to AssignModule.
func (s *Simulation) RegisterModule(name string, f process.HandlerFactory) error {
	return s.registry.Register(name, f)
}

// CreateProcess creates and starts the process with the given node id.
func (s *Simulation) CreateProcess(node int) (*process.Process, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, found := s.processes[node]; found {
		return nil, simerr.DuplicateItems
	}

	p, err := process.MakeBuilder().
		WithNetwork(s.network).
		WithClock(s.clock).
		WithPollInterval(s.pollInterval).
		WithLogger(s.logger).
		Build(node)
	if err != nil {
		return nil, err
	}

	if s.tracer != nil {
		tracing.Collect(p, s.tracer)
	}

	if s.msgLogger != nil {
		tracing.Collect(p, s.msgLogger)
	}

	if s.monitor != nil {
		s.monitor.RegisterProcess(p)
	}

	s.processes[node] = p
	p.Start()

	return p, nil
}

// CreateProcesses creates the processes first to last, both included. It
// stops at the first failure.
func (s *Simulation) CreateProcesses(first, last int) error {
	for node := first; node <= last; node++ {
		if _, err := s.CreateProcess(node); err != nil {
			return err
		}
	}

	return nil
}

// Process returns the process with the node id, or nil.
func (s *Simulation) Process(node int) *process.Process {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.processes[node]
}

// Processes returns all the processes ordered by node id.
func (s *Simulation) Processes() []*process.Process {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := make([]*process.Process, 0, len(s.processes))
	for _, p := range s.processes {
		list = append(list, p)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID() < list[j].ID()
	})

	return list
}

// AssignModule gives the process a fresh handler of the named module.
func (s *Simulation) AssignModule(node int, module string) error {
	p := s.Process(node)
	if p == nil {
		return simerr.ItemNotFound
	}

	h, err := s.registry.New(module)
	if err != nil {
		return err
	}

	return p.RegisterHandler(module, h)
}

// SetErrorRate changes the probability that a send is lost.
func (s *Simulation) SetErrorRate(r float64) {
	s.network.SetErrorRate(r)
}

// CreateLink adds a link between two nodes.
func (s *Simulation) CreateLink(a, b int, bidirectional bool, cost timing.VTimeInTick) {
	s.network.CreateLink(a, b, bidirectional, cost)
}

// AddLinksToAll links the node to every registered node.
func (s *Simulation) AddLinksToAll(from int, bidirectional bool, cost timing.VTimeInTick) {
	s.network.AddLinksToAll(from, bidirectional, cost)
}

// AddLinksFromAll links every registered node to the node.
func (s *Simulation) AddLinksFromAll(to int, bidirectional bool, cost timing.VTimeInTick) {
	s.network.AddLinksFromAll(to, bidirectional, cost)
}

// AddLinksAllToAll links every registered node to every other one.
func (s *Simulation) AddLinksAllToAll(bidirectional bool, cost timing.VTimeInTick) {
	s.network.AddLinksAllToAll(bidirectional, cost)
}

// Send injects a message into the network.
func (s *Simulation) Send(from, to int, m *msg.Message) error {
	return s.network.Send(from, to, m)
}

// LaunchTimer starts a periodic "*TIME" broadcast.
func (s *Simulation) LaunchTimer(period time.Duration) *network.Timer {
	return s.network.LaunchTimer(period)
}

// Terminate stops the processes, the timers and the clock, then writes out
// the recorded data and stops the monitor. Only the first call has an effect.
func (s *Simulation) Terminate() {
	s.terminateOnce.Do(func() {
		for _, p := range s.Processes() {
			p.Stop()
		}

		s.network.Close()

		if s.tracer != nil {
			s.tracer.Flush()
		}

		if s.execRecorder != nil {
			s.execRecorder.End()
		}

		if s.recorder != nil {
			if err := s.recorder.Close(); err != nil {
				s.logger.Printf("closing trace: %v", err)
			}
		}

		if s.monitor != nil {
			s.monitor.StopServer()
		}
	})
}
