// Package config loads the run configuration of the dssim command.
//
// A configuration starts from the defaults, is overridden by a YAML file,
// then by DSSIM_* environment variables, which may come from a .env file.
// Command line flags are applied last by the command itself.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts the name of every environment override.
const EnvPrefix = "DSSIM_"

// DefaultEnvFile is read when present and no other env file is named.
const DefaultEnvFile = ".env"

// Config is the configuration of one run.
type Config struct {
	Scenario    string        `yaml:"scenario"`
	Duration    time.Duration `yaml:"duration"`
	Seed        int64         `yaml:"seed"`
	ErrorRate   float64       `yaml:"error_rate"`
	Tick        time.Duration `yaml:"tick"`
	Poll        time.Duration `yaml:"poll"`
	TimeUnit    time.Duration `yaml:"time_unit"`
	Record      string        `yaml:"record"`
	Monitor     bool          `yaml:"monitor"`
	MonitorPort int           `yaml:"monitor_port"`
	OpenBrowser bool          `yaml:"open_browser"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Scenario: "config.data",
		Duration: 3000 * time.Second,
		Tick:     time.Second,
		Poll:     time.Millisecond,
		TimeUnit: time.Second,
	}
}

// Load builds the configuration from the defaults, the YAML file at path (if
// path is not empty), and the environment. The env files are loaded into the
// environment first without replacing variables that are already set.
func Load(path string, envFiles ...string) (*Config, error) {
	c := Default()

	if path != "" {
		if err := c.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(c)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	return nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}

		files = []string{DefaultEnvFile}
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}

	return nil
}

// ApplyEnv overrides the fields that have a DSSIM_* variable set.
func (c *Config) ApplyEnv() error {
	var errs []error

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}

	parse := func(name string, set func(string) error) {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			return
		}

		if err := set(v); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
	}

	duration := func(dst *time.Duration) func(string) error {
		return func(v string) (err error) {
			*dst, err = time.ParseDuration(v)
			return err
		}
	}

	boolean := func(dst *bool) func(string) error {
		return func(v string) (err error) {
			*dst, err = strconv.ParseBool(v)
			return err
		}
	}

	str("SCENARIO", &c.Scenario)
	str("RECORD", &c.Record)
	parse("DURATION", duration(&c.Duration))
	parse("TICK", duration(&c.Tick))
	parse("POLL", duration(&c.Poll))
	parse("TIME_UNIT", duration(&c.TimeUnit))
	parse("MONITOR", boolean(&c.Monitor))
	parse("OPEN_BROWSER", boolean(&c.OpenBrowser))
	parse("SEED", func(v string) (err error) {
		c.Seed, err = strconv.ParseInt(v, 10, 64)
		return err
	})
	parse("ERROR_RATE", func(v string) (err error) {
		c.ErrorRate, err = strconv.ParseFloat(v, 64)
		return err
	})
	parse("MONITOR_PORT", func(v string) (err error) {
		c.MonitorPort, err = strconv.Atoi(v)
		return err
	})

	return errors.Join(errs...)
}

// Validate reports every field that holds an unusable value.
func (c *Config) Validate() error {
	var errs []error

	if c.Scenario == "" {
		errs = append(errs, errors.New("scenario must be set"))
	}

	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		errs = append(errs, fmt.Errorf("error rate %v outside [0, 1]", c.ErrorRate))
	}

	for name, d := range map[string]time.Duration{
		"duration":  c.Duration,
		"tick":      c.Tick,
		"poll":      c.Poll,
		"time unit": c.TimeUnit,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, d))
		}
	}

	if c.MonitorPort < 0 || c.MonitorPort > 65535 {
		errs = append(errs, fmt.Errorf("monitor port %d out of range", c.MonitorPort))
	}

	return errors.Join(errs...)
}
