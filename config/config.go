// Package config defines the typed configuration surface named in the
// runtime's external interfaces (threads, throughput, stealing) and the
// ways it can be populated: struct literals, functional options, a YAML
// file, or a viper-merged file+environment with live reload.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ExecutorConfig is the per-Executor configuration named in the runtime's
// external interfaces table: {threads, throughput_per_run, stealing}.
type ExecutorConfig struct {
	Threads          int  `yaml:"threads" mapstructure:"threads"`
	ThroughputPerRun int  `yaml:"throughput_per_run" mapstructure:"throughput_per_run"`
	Stealing         bool `yaml:"stealing" mapstructure:"stealing"`
}

// DefaultExecutorConfig sizes the fleet to GOMAXPROCS, a throughput cap
// generous enough to amortize scheduling overhead without letting one actor
// monopolize a worker, and stealing enabled.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		Threads:          runtime.GOMAXPROCS(0),
		ThroughputPerRun: 32,
		Stealing:         true,
	}
}

// Option mutates an ExecutorConfig, mirroring the teacher's own
// supervisor.Option / WithWorkers functional-option pattern.
type Option func(*ExecutorConfig)

func WithThreads(n int) Option {
	return func(c *ExecutorConfig) { c.Threads = n }
}

func WithThroughputPerRun(n int) Option {
	return func(c *ExecutorConfig) { c.ThroughputPerRun = n }
}

func WithStealing(enabled bool) Option {
	return func(c *ExecutorConfig) { c.Stealing = enabled }
}

// NewExecutorConfig starts from DefaultExecutorConfig and applies opts in
// order.
func NewExecutorConfig(opts ...Option) ExecutorConfig {
	c := DefaultExecutorConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ParseYAML decodes an ExecutorConfig directly with yaml.v3 — the
// straightforward path, for hosts that just want to read one file once.
func ParseYAML(data []byte) (ExecutorConfig, error) {
	c := DefaultExecutorConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return ExecutorConfig{}, fmt.Errorf("config: parse yaml: %w", err)
	}
	return c, nil
}

// LoadExecutorConfig reads path with viper, merging in ACTORSUB_*
// environment overrides (e.g. ACTORSUB_THREADS=8), and unmarshals the
// result into an ExecutorConfig.
func LoadExecutorConfig(path string) (ExecutorConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return ExecutorConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	c := DefaultExecutorConfig()
	if err := v.Unmarshal(&c); err != nil {
		return ExecutorConfig{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return c, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("actorsub")
	v.AutomaticEnv()
	return v
}

// Watch reloads the ExecutorConfig at path whenever the file changes,
// invoking onChange on the watcher's own goroutine. It returns once the
// watcher is installed; the watch itself runs until ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(ExecutorConfig)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: new watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("config: watch %s: %w", dir, err)
	}

	want := filepath.Clean(path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != want {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadExecutorConfig(path)
				if err != nil {
					continue
				}
				onChange(cfg)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return nil
}

// SupervisorConfig is a minimal named-identity config for a root
// supervisor: the name it is registered under in package registry, and
// the label cmd/actorctl's tree/stats subcommands print for it.
type SupervisorConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}
