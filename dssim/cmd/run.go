package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maxmuv/dos/config"
	"github.com/maxmuv/dos/modules/broadcast"
	"github.com/maxmuv/dos/modules/bully"
	"github.com/maxmuv/dos/scenario"
	"github.com/maxmuv/dos/sim/process"
	"github.com/maxmuv/dos/sim/simulation"
	"github.com/maxmuv/dos/sim/timing"
)

var modules = map[string]process.HandlerFactory{
	bully.Name:     bully.Factory,
	broadcast.Name: broadcast.Factory,
}

var runCmd = &cobra.Command{
	Use:   "run [scenario]",
	Short: "Run a scenario.",
	Long: "`run [scenario]` builds the processes and links the scenario " +
		"describes and runs them until the duration ends or the run is " +
		"interrupted. Files ending in .lua are Lua scenarios, anything else " +
		"is read as a directive script.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return run(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.String("config", "", "YAML run configuration")
	f.Duration("duration", d.Duration, "How long the run lasts")
	f.Int64("seed", d.Seed, "Seed of the loss draws, 0 picks one")
	f.Float64("error-rate", d.ErrorRate, "Probability that a send is lost")
	f.Duration("tick", d.Tick, "Real time of one simulated tick")
	f.Duration("poll", d.Poll, "How often processes check their queues")
	f.Duration("time-unit", d.TimeUnit, "Real time of one unit of wait and timer periods")
	f.String("record", d.Record, "Record the message trace into this SQLite file")
	f.Bool("monitor", d.Monitor, "Serve the monitoring page")
	f.Int("monitor-port", d.MonitorPort, "Port of the monitoring page")
	f.Bool("open-browser", d.OpenBrowser, "Open the monitoring page in a browser")
}

// loadConfig merges the config file, the environment, the flags that were set
// and the scenario argument, in that order.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	f := cmd.Flags()

	path, _ := f.GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f.Changed("duration") {
		cfg.Duration, _ = f.GetDuration("duration")
	}
	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("error-rate") {
		cfg.ErrorRate, _ = f.GetFloat64("error-rate")
	}
	if f.Changed("tick") {
		cfg.Tick, _ = f.GetDuration("tick")
	}
	if f.Changed("poll") {
		cfg.Poll, _ = f.GetDuration("poll")
	}
	if f.Changed("time-unit") {
		cfg.TimeUnit, _ = f.GetDuration("time-unit")
	}
	if f.Changed("record") {
		cfg.Record, _ = f.GetString("record")
	}
	if f.Changed("monitor") {
		cfg.Monitor, _ = f.GetBool("monitor")
	}
	if f.Changed("monitor-port") {
		cfg.MonitorPort, _ = f.GetInt("monitor-port")
	}
	if f.Changed("open-browser") {
		cfg.OpenBrowser, _ = f.GetBool("open-browser")
	}

	if len(args) > 0 {
		cfg.Scenario = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	clock := timing.MakeWallClockBuilder().
		WithTickDuration(cfg.Tick).
		Build()

	s, err := newSimulation(cfg, clock)
	if err != nil {
		return err
	}
	defer s.Terminate()

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	if s.Monitor() != nil {
		go trackProgress(ctx, s, cfg.Duration)
	}

	err = applyScenario(ctx, s, cfg)
	if err != nil && ctx.Err() == nil {
		return err
	}

	<-ctx.Done()

	if errors.Is(ctx.Err(), context.Canceled) {
		fmt.Fprintf(os.Stderr, "Run interrupted at tick %d\n", s.Clock().Now())
	}

	return nil
}

func newSimulation(cfg *config.Config, clock timing.Clock) (*simulation.Simulation, error) {
	b := simulation.MakeBuilder().
		WithClock(clock).
		WithErrorRate(cfg.ErrorRate).
		WithPollInterval(cfg.Poll)

	if cfg.Seed != 0 {
		b = b.WithSeed(cfg.Seed)
	}

	if cfg.Record != "" {
		b = b.WithTraceFile(cfg.Record)
	}

	if cfg.Monitor {
		b = b.WithMonitor().WithMonitorPort(cfg.MonitorPort)
		if cfg.OpenBrowser {
			b = b.WithBrowser()
		}
	}

	s, err := b.Build()
	if err != nil {
		return nil, err
	}

	for name, f := range modules {
		if err := s.RegisterModule(name, f); err != nil {
			s.Terminate()
			return nil, err
		}
	}

	return s, nil
}

func applyScenario(
	ctx context.Context,
	t scenario.Target,
	cfg *config.Config,
) error {
	if strings.EqualFold(filepath.Ext(cfg.Scenario), ".lua") {
		script, err := scenario.LoadLua(cfg.Scenario)
		if err != nil {
			return fmt.Errorf("loading %s: %w", cfg.Scenario, err)
		}

		return script.WithTimeUnit(cfg.TimeUnit).Apply(ctx, t)
	}

	return scenario.NewParser(t).
		WithTimeUnit(cfg.TimeUnit).
		ParseFile(ctx, cfg.Scenario)
}

func trackProgress(
	ctx context.Context,
	s *simulation.Simulation,
	duration time.Duration,
) {
	m := s.Monitor()
	bar := m.CreateProgressBar("Run", uint64(duration/time.Second))
	defer m.CompleteProgressBar(bar)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bar.IncrementFinished(1)
		}
	}
}
