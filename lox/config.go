package lox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the file FindConfig looks for.
const ConfigFileName = "lox.toml"

// Config represents a lox.toml file.
type Config struct {
	VM  VMConfig  `toml:"vm"`
	Log LogConfig `toml:"log"`

	// Path is the file the config was loaded from (set at load time).
	Path string `toml:"-"`
}

type VMConfig struct {
	StackCapacity int  `toml:"stack-capacity"`
	Trace         bool `toml:"trace"`
	PersistStack  bool `toml:"persist-stack"`
}

// LogConfig is handed to commonlog.Configure by the commands.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	Path      string `toml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		VM: VMConfig{StackCapacity: DefaultStackCapacity},
	}
}

// LoadConfig parses the config file at path. Missing keys keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if cfg.VM.StackCapacity < 0 {
		return nil, fmt.Errorf("%s: vm.stack-capacity must not be negative, got %d", path, cfg.VM.StackCapacity)
	}
	if cfg.VM.StackCapacity == 0 {
		cfg.VM.StackCapacity = DefaultStackCapacity
	}
	cfg.Path = path
	return cfg, nil
}

// FindConfig walks up from startDir to the nearest lox.toml and loads it.
// Returns nil if no config file is found.
func FindConfig(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// LogPath returns the log file path for commonlog.Configure, or nil to log
// to stderr.
func (c *Config) LogPath() *string {
	if c.Log.Path == "" {
		return nil
	}
	return &c.Log.Path
}
