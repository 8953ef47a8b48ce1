package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// keys lists every configurable key. Each can be set from a CHATLINE_
// environment variable, e.g. CHATLINE_TIMELINE_MORE_BATCH.
var keys = []string{
	"logging.level",
	"logging.format",
	"logging.file",
	"timeline.initial_batch",
	"timeline.more_batch",
	"timeline.prefetch_screens",
	"timeline.load_interval",
	"anchor.bottom_epsilon",
	"typing.timeout",
	"transcript.path",
	"transcript.save",
	"transcript.latency",
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"log-file":   "logging.file",
	"transcript": "transcript.path",
	"save":       "transcript.save",
	"latency":    "transcript.latency",
}

// Loader handles configuration loading with Viper.
type Loader struct {
	v           *viper.Viper
	configFile  string
	searchPaths []string
}

// NewLoader creates a new configuration loader that searches the XDG config
// directory, ~/.config/chatline and the working directory.
func NewLoader() *Loader {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "chatline"))
	}
	if home, _ := os.UserHomeDir(); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "chatline"))
	}
	paths = append(paths, ".")
	return &Loader{v: viper.New(), searchPaths: paths}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// SetSearchPaths replaces the directories searched for config.yaml.
func (l *Loader) SetSearchPaths(paths ...string) {
	l.searchPaths = paths
}

// BindFlags binds the known flags in fs so that, when set, they take
// precedence over every other source.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load loads configuration with precedence
// defaults < config file < env vars < flags.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setup(cfg)

	if err := l.readConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Logging.File = expandTilde(cfg.Logging.File)
	cfg.Transcript.Path = expandTilde(cfg.Transcript.Path)
	cfg.Transcript.Save = expandTilde(cfg.Transcript.Save)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the config file that was loaded, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) setup(cfg *Config) {
	v := l.v
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range l.searchPaths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("CHATLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("timeline.initial_batch", cfg.Timeline.InitialBatch)
	v.SetDefault("timeline.more_batch", cfg.Timeline.MoreBatch)
	v.SetDefault("timeline.prefetch_screens", cfg.Timeline.PrefetchScreens)
	v.SetDefault("timeline.load_interval", cfg.Timeline.LoadInterval)
	v.SetDefault("anchor.bottom_epsilon", cfg.Anchor.BottomEpsilon)
	v.SetDefault("typing.timeout", cfg.Typing.Timeout)
	v.SetDefault("transcript.path", cfg.Transcript.Path)
	v.SetDefault("transcript.save", cfg.Transcript.Save)
	v.SetDefault("transcript.latency", cfg.Transcript.Latency)

	// Unmarshal only sees env vars for nested keys that are bound.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
	v.AutomaticEnv()
}

func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}
	err := l.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && errors.As(err, &notFound) && l.configFile == "" {
		return nil
	}
	return err
}

// expandTilde expands a leading ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
