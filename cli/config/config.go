// Package config provides configuration management for minkspec.
//
// A minkspec.yaml file describes how scenarios are run: the clock they start
// from and the logging, metrics and tracing attached to them. Test suites load
// it once and turn it into scenario and processor options:
//
//	cfg, _ := config.Load(".")
//	rt, _ := cfg.Build(os.Stderr)
//	defer rt.Shutdown(ctx)
//
//	processor := mink.NewProcessor(rt.ProcessorOptions()...)
//	scenario := bdd.NewScenario(t, processor, rt.ScenarioOptions()...)
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gopkg.in/yaml.v3"

	"github.com/AshkanYarmoradi/minkspec"
	"github.com/AshkanYarmoradi/minkspec/logging"
	"github.com/AshkanYarmoradi/minkspec/middleware/metrics"
	"github.com/AshkanYarmoradi/minkspec/middleware/tracing"
	"github.com/AshkanYarmoradi/minkspec/testing/bdd"
)

// Config represents the minkspec configuration
type Config struct {
	// Version of the config file format
	Version string `yaml:"version"`

	// Project configuration
	Project ProjectConfig `yaml:"project"`

	// Clock configuration
	Clock ClockConfig `yaml:"clock"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configuration
	Tracing TracingConfig `yaml:"tracing"`
}

// ProjectConfig contains project-level settings
type ProjectConfig struct {
	// Name of the project
	Name string `yaml:"name"`

	// Module is the Go module path
	Module string `yaml:"module"`
}

// ClockConfig controls the scenario clock.
type ClockConfig struct {
	// Seed is the RFC 3339 instant scenarios start at. Empty means now.
	Seed string `yaml:"seed,omitempty"`

	// Frozen keeps the clock from advancing on its own.
	Frozen bool `yaml:"frozen"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	// Level is debug, info, warn, error or none
	Level string `yaml:"level"`

	// Format is logfmt or json
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem,omitempty"`
	Service   string `yaml:"service"`
}

// TracingConfig contains OpenTelemetry settings
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Stdout exports spans to the configured writer
	Stdout bool `yaml:"stdout"`

	Service string `yaml:"service"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1",
		Project: ProjectConfig{
			Name:   "my-minkspec-suite",
			Module: "github.com/user/my-minkspec-suite",
		},
		Clock: ClockConfig{
			Frozen: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatLogfmt,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "minkspec",
			Service:   "my-minkspec-suite",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Stdout:  true,
			Service: tracing.DefaultServiceName,
		},
	}
}

// ConfigFileName is the default config file name
const ConfigFileName = "minkspec.yaml"

// Load loads configuration from the specified directory
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. Fields missing
// from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves the configuration to the specified directory
func (c *Config) Save(dir string) error {
	path := filepath.Join(dir, ConfigFileName)
	return c.SaveFile(path)
}

// SaveFile saves the configuration to a specific file path
func (c *Config) SaveFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Exists checks if a config file exists in the directory
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindConfig searches for a config file starting from dir and going up
func FindConfig(dir string) (string, *Config, error) {
	current := dir
	for {
		configPath := filepath.Join(current, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			cfg, err := LoadFile(configPath)
			if err != nil {
				return "", nil, err
			}
			return current, cfg, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil, os.ErrNotExist
		}
		current = parent
	}
}

// Validate validates the configuration
func (c *Config) Validate() []string {
	var errors []string

	if c.Project.Name == "" {
		errors = append(errors, "project.name is required")
	}

	if c.Clock.Seed != "" {
		if _, err := time.Parse(time.RFC3339, c.Clock.Seed); err != nil {
			errors = append(errors, "clock.seed must be an RFC 3339 timestamp")
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errors = append(errors, "logging.level must be one of debug, info, warn, error, none")
	}

	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatLogfmt, logging.FormatJSON, "":
	default:
		errors = append(errors, "logging.format must be 'logfmt' or 'json'")
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		errors = append(errors, "metrics.namespace is required when metrics are enabled")
	}

	if c.Tracing.Enabled && c.Tracing.Service == "" {
		errors = append(errors, "tracing.service is required when tracing is enabled")
	}

	return errors
}

// SeedTime returns the parsed clock seed, or the zero time when unset.
func (c *Config) SeedTime() (time.Time, error) {
	if c.Clock.Seed == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, c.Clock.Seed)
}

// Runtime holds the collaborators built from a Config.
type Runtime struct {
	Config         *Config
	Logger         *logging.KitLogger
	Metrics        *metrics.Metrics
	Tracer         *tracing.Tracer
	TracerProvider *sdktrace.TracerProvider
}

// Build validates the configuration and creates its logger, metrics and
// tracer. Logs and stdout spans are written to w.
func (c *Config) Build(w io.Writer) (*Runtime, error) {
	if problems := c.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("config: invalid configuration: %s", strings.Join(problems, "; "))
	}

	logger, err := logging.New(w, c.Logging.Format, c.Logging.Level)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: c, Logger: logger}

	if c.Metrics.Enabled {
		rt.Metrics = metrics.New(
			metrics.WithNamespace(c.Metrics.Namespace),
			metrics.WithSubsystem(c.Metrics.Subsystem),
			metrics.WithMetricsServiceName(c.Metrics.Service),
		)
	}

	if c.Tracing.Enabled {
		opts := []tracing.TracerOption{tracing.WithServiceName(c.Tracing.Service)}
		if c.Tracing.Stdout {
			tp, err := tracing.NewStdoutProvider(w, c.Tracing.Service)
			if err != nil {
				return nil, err
			}
			rt.TracerProvider = tp
			opts = append(opts, tracing.WithTracerProvider(tp))
		}
		rt.Tracer = tracing.NewTracer(opts...)
	}

	return rt, nil
}

// ScenarioOptions builds the runtime and returns its scenario options.
func (c *Config) ScenarioOptions(w io.Writer) ([]bdd.Option, error) {
	rt, err := c.Build(w)
	if err != nil {
		return nil, err
	}
	return rt.ScenarioOptions(), nil
}

// ScenarioOptions returns the bdd options for the configured clock, logger
// and observers.
func (r *Runtime) ScenarioOptions() []bdd.Option {
	opts := []bdd.Option{bdd.WithLogger(r.Logger)}

	if seed, _ := r.Config.SeedTime(); !seed.IsZero() {
		opts = append(opts, bdd.WithClockSeed(seed))
	}
	if r.Config.Clock.Frozen {
		opts = append(opts, bdd.WithFrozenClock())
	}

	var observers []bdd.Observer
	if r.Metrics != nil {
		observers = append(observers, r.Metrics.ScenarioObserver())
	}
	if r.Tracer != nil {
		observers = append(observers, tracing.ScenarioObserver(r.Tracer))
	}
	if len(observers) > 0 {
		opts = append(opts, bdd.WithObserver(observers...))
	}

	return opts
}

// ProcessorOptions returns the processor options for the configured logger
// and middleware.
func (r *Runtime) ProcessorOptions() []mink.ProcessorOption {
	middleware := []mink.Middleware{mink.NewLoggingMiddleware(r.Logger).Middleware()}
	if r.Metrics != nil {
		middleware = append(middleware, r.Metrics.Middleware())
	}
	if r.Tracer != nil {
		middleware = append(middleware, tracing.Middleware(r.Tracer))
	}

	return []mink.ProcessorOption{
		mink.WithLogger(r.Logger),
		mink.WithMiddleware(middleware...),
	}
}

// Shutdown flushes and stops the tracer provider, if one was created.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r.TracerProvider == nil {
		return nil
	}
	return r.TracerProvider.Shutdown(ctx)
}

// GenerateYAML generates YAML content with comments
func GenerateYAML(cfg *Config) string {
	return `# minkspec configuration
# Controls how behavior scenarios are run

version: "1"

project:
  name: "` + cfg.Project.Name + `"
  module: "` + cfg.Project.Module + `"

# Scenario clock
clock:
  # RFC 3339 instant scenarios start at; empty starts at the current time
  seed: "` + cfg.Clock.Seed + `"

  # A frozen clock only moves when a scenario says so
  frozen: ` + strconv.FormatBool(cfg.Clock.Frozen) + `

# Structured logging (go-kit/log)
logging:
  # debug, info, warn, error or none
  level: "` + cfg.Logging.Level + `"

  # logfmt or json
  format: "` + cfg.Logging.Format + `"

# Prometheus metrics for messages and scenario runs
metrics:
  enabled: ` + strconv.FormatBool(cfg.Metrics.Enabled) + `
  namespace: "` + cfg.Metrics.Namespace + `"
  service: "` + cfg.Metrics.Service + `"

# OpenTelemetry spans, one per scenario run
tracing:
  enabled: ` + strconv.FormatBool(cfg.Tracing.Enabled) + `
  stdout: ` + strconv.FormatBool(cfg.Tracing.Stdout) + `
  service: "` + cfg.Tracing.Service + `"
`
}
