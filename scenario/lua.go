package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/maxmuv/dos/sim/timing"
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// A Range is an inclusive range of node ids.
type Range struct {
	First int
	Last  int
}

// A LinkEntry declares links. From and To hold a node id or "all".
type LinkEntry struct {
	From    string
	To      string
	Latency *int
}

// A ModuleEntry assigns a module to a range of processes.
type ModuleEntry struct {
	First int
	Last  int
	Name  string
}

// A SendEntry injects one message, after waiting Wait time units.
type SendEntry struct {
	From int
	To   int
	Text string
	Arg  *int
	Wait int
}

// A Script is a scenario described by a Lua table, for example:
//
//	return {
//	  error_rate = 0.0,
//	  processes = { first = 0, last = 2 },
//	  links = { { from = "all", to = "all", latency = 2 } },
//	  modules = { { first = 0, last = 2, name = "BULLY" } },
//	  timers = { 1 },
//	  sends = { { from = 0, to = 1, text = "TEST_HELLO", arg = 0 } },
//	}
type Script struct {
	Bidirected *bool
	ErrorRate  *float64
	Processes  *Range
	Links      []LinkEntry
	Modules    []ModuleEntry
	Timers     []int
	Sends      []SendEntry

	logger   *log.Logger
	timeUnit time.Duration
}

// LoadLua runs the Lua file and maps the table it returns into a Script.
func LoadLua(path string) (*Script, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, err
	}

	lv := L.Get(-1)
	table, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua file did not return a table")
	}

	s := &Script{}
	if err := gluamapper.Map(table, s); err != nil {
		return nil, err
	}

	s.logger = log.Default()
	s.timeUnit = time.Second

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return s, nil
}

// WithTimeUnit sets the real time of one unit of a timer period or a wait.
func (s *Script) WithTimeUnit(d time.Duration) *Script {
	s.timeUnit = d
	return s
}

// WithLogger sets where failed actions are reported.
func (s *Script) WithLogger(l *log.Logger) *Script {
	s.logger = l
	return s
}

// Validate checks the script before anything is applied.
func (s *Script) Validate() error {
	var errs []error

	if s.ErrorRate != nil && (*s.ErrorRate < 0 || *s.ErrorRate > 1) {
		errs = append(errs, fmt.Errorf("error_rate %v outside [0, 1]", *s.ErrorRate))
	}

	if s.Processes != nil && s.Processes.First < 0 {
		errs = append(errs, fmt.Errorf("processes: negative first id %d", s.Processes.First))
	}

	for i, l := range s.Links {
		_, errFrom := parseEndpoint(l.From)
		_, errTo := parseEndpoint(l.To)

		if errFrom != nil || errTo != nil {
			errs = append(errs, fmt.Errorf("link %d: bad endpoints %q -> %q", i, l.From, l.To))
		}

		if l.Latency != nil && *l.Latency < 0 {
			errs = append(errs, fmt.Errorf("link %d: negative latency %d", i, *l.Latency))
		}
	}

	for i, m := range s.Modules {
		if m.Name == "" {
			errs = append(errs, fmt.Errorf("module %d: no name", i))
		}
	}

	for i, t := range s.Timers {
		if t <= 0 {
			errs = append(errs, fmt.Errorf("timer %d: period must be positive", i))
		}
	}

	for i, m := range s.Sends {
		if m.Text == "" {
			errs = append(errs, fmt.Errorf("send %d: no text", i))
		}

		if m.Wait < 0 {
			errs = append(errs, fmt.Errorf("send %d: negative wait", i))
		}
	}

	return errors.Join(errs...)
}

// Apply drives the target through the script: error rate, processes, links,
// modules, timers, and finally the sends in order. Failed actions are logged
// and skipped. Apply only stops early when the context is cancelled.
func (s *Script) Apply(ctx context.Context, t Target) error {
	bidirected := s.Bidirected == nil || *s.Bidirected

	if s.logger == nil {
		s.logger = log.Default()
	}

	if s.timeUnit <= 0 {
		s.timeUnit = time.Second
	}

	if s.ErrorRate != nil {
		t.SetErrorRate(*s.ErrorRate)
	}

	if s.Processes != nil {
		s.report(t.CreateProcesses(s.Processes.First, s.Processes.Last))
	}

	for _, l := range s.Links {
		from, _ := parseEndpoint(l.From)
		to, _ := parseEndpoint(l.To)

		latency := DefaultLatency
		if l.Latency != nil {
			latency = *l.Latency
		}

		link(t, from, to, bidirected, timing.VTimeInTick(latency))
	}

	for _, m := range s.Modules {
		for node := m.First; node <= m.Last; node++ {
			s.report(t.AssignModule(node, m.Name))
		}
	}

	for _, period := range s.Timers {
		t.LaunchTimer(time.Duration(period) * s.timeUnit)
	}

	for _, m := range s.Sends {
		if err := sleep(ctx, time.Duration(m.Wait)*s.timeUnit); err != nil {
			return err
		}

		s.report(t.Send(m.From, m.To, textMessage(m.Text, m.Arg)))
	}

	return nil
}

func (s *Script) report(err error) {
	if err != nil {
		s.logger.Printf("scenario: %v", err)
	}
}
