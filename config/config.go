// Package config handles mozart.toml runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/mozart/vm"
	"github.com/chazu/mozart/vm/sched"
)

// FileName is the name of the configuration file.
const FileName = "mozart.toml"

// Config represents a mozart.toml file.
type Config struct {
	VM        VMConfig        `toml:"vm"`
	Store     StoreConfig     `toml:"store"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Archive   ArchiveConfig   `toml:"archive"`
	Log       LogConfig       `toml:"log"`

	// Dir is the directory containing the mozart.toml file (set at load time).
	Dir string `toml:"-"`
}

// VMConfig configures value semantics.
type VMConfig struct {
	// SmallIntOverflow is "promote" (default) or "raise".
	SmallIntOverflow string `toml:"small-int-overflow"`
}

// StoreConfig configures the value store.
type StoreConfig struct {
	Capacity int `toml:"capacity"`
}

// SchedulerConfig configures the reference scheduler.
type SchedulerConfig struct {
	MaxSteps int `toml:"max-steps"`
}

// ArchiveConfig locates the pickle archive.
type ArchiveConfig struct {
	Path string `toml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.VM.SmallIntOverflow == "" {
		c.VM.SmallIntOverflow = "promote"
	}
	if c.Store.Capacity == 0 {
		c.Store.Capacity = 1024
	}
	if c.Archive.Path == "" {
		c.Archive.Path = "mozart.db"
	}
}

// Load parses mozart.toml from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a mozart.toml file and loads
// it. Returns nil if none is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Validate checks values that TOML decoding cannot.
func (c *Config) Validate() error {
	switch c.VM.SmallIntOverflow {
	case "promote", "raise":
	default:
		return fmt.Errorf("vm.small-int-overflow: want promote or raise, got %q", c.VM.SmallIntOverflow)
	}
	if c.Store.Capacity < 0 {
		return fmt.Errorf("store.capacity: must not be negative")
	}
	if c.Scheduler.MaxSteps < 0 {
		return fmt.Errorf("scheduler.max-steps: must not be negative")
	}
	return nil
}

// VMOptions converts the configuration into VM options.
func (c *Config) VMOptions() vm.Options {
	opts := vm.Options{StoreCapacity: c.Store.Capacity}
	if c.VM.SmallIntOverflow == "raise" {
		opts.Overflow = vm.OverflowRaise
	}
	return opts
}

// SchedulerOptions converts the configuration into scheduler options.
func (c *Config) SchedulerOptions() sched.Options {
	return sched.Options{MaxSteps: c.Scheduler.MaxSteps}
}

// ArchivePath returns the archive path resolved against the config
// directory.
func (c *Config) ArchivePath() string {
	return c.resolve(c.Archive.Path)
}

// LogFile returns the log file path, or nil to log to stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	p := c.resolve(c.Log.File)
	return &p
}

func (c *Config) resolve(p string) string {
	if !filepath.IsAbs(p) && c.Dir != "" {
		return filepath.Join(c.Dir, p)
	}
	return p
}
