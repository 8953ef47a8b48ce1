// Package config loads chatline settings with viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/chatline/anchor"
	"github.com/fwojciec/chatline/pagination"
	"github.com/fwojciec/chatline/typing"
)

// Config is the complete configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
	Timeline   TimelineConfig   `yaml:"timeline" mapstructure:"timeline"`
	Anchor     AnchorConfig     `yaml:"anchor" mapstructure:"anchor"`
	Typing     TypingConfig     `yaml:"typing" mapstructure:"typing"`
	Transcript TranscriptConfig `yaml:"transcript" mapstructure:"transcript"`
}

// LoggingConfig configures the log file.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is the log file path. The TUI owns the terminal, so logs always
	// go to a file.
	File string `yaml:"file" mapstructure:"file"`
}

// TimelineConfig configures history loading.
type TimelineConfig struct {
	InitialBatch    int           `yaml:"initial_batch" mapstructure:"initial_batch"`
	MoreBatch       int           `yaml:"more_batch" mapstructure:"more_batch"`
	PrefetchScreens float64       `yaml:"prefetch_screens" mapstructure:"prefetch_screens"`
	LoadInterval    time.Duration `yaml:"load_interval" mapstructure:"load_interval"`
}

// AnchorConfig configures scroll anchoring.
type AnchorConfig struct {
	// BottomEpsilon is how close to the bottom, in lines, still counts as
	// being at the bottom.
	BottomEpsilon float64 `yaml:"bottom_epsilon" mapstructure:"bottom_epsilon"`
}

// TypingConfig configures the typing indicator.
type TypingConfig struct {
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// TranscriptConfig configures the in-process chat service.
type TranscriptConfig struct {
	// Path is the transcript to serve.
	Path string `yaml:"path" mapstructure:"path"`

	// Save, when set, is where the channel state is written on exit.
	Save string `yaml:"save" mapstructure:"save"`

	// Latency is added to every history fetch and send.
	Latency time.Duration `yaml:"latency" mapstructure:"latency"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   "~/.chatline/chatline.log",
		},
		Timeline: TimelineConfig{
			InitialBatch:    pagination.DefaultInitialBatch,
			MoreBatch:       pagination.DefaultMoreBatch,
			PrefetchScreens: pagination.DefaultPrefetchScreen,
			LoadInterval:    250 * time.Millisecond,
		},
		Anchor: AnchorConfig{
			BottomEpsilon: anchor.DefaultEpsilon,
		},
		Typing: TypingConfig{
			Timeout: typing.DefaultTimeout,
		},
		Transcript: TranscriptConfig{
			Latency: 300 * time.Millisecond,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeline.InitialBatch < 1 {
		errs = append(errs, fmt.Errorf("timeline.initial_batch must be at least 1"))
	}
	if c.Timeline.MoreBatch < 1 {
		errs = append(errs, fmt.Errorf("timeline.more_batch must be at least 1"))
	}
	if c.Timeline.PrefetchScreens <= 0 {
		errs = append(errs, fmt.Errorf("timeline.prefetch_screens must be positive"))
	}
	if c.Timeline.LoadInterval < 0 {
		errs = append(errs, fmt.Errorf("timeline.load_interval must not be negative"))
	}
	if c.Anchor.BottomEpsilon < 0 {
		errs = append(errs, fmt.Errorf("anchor.bottom_epsilon must not be negative"))
	}
	if c.Typing.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("typing.timeout must be positive"))
	}
	if c.Transcript.Latency < 0 {
		errs = append(errs, fmt.Errorf("transcript.latency must not be negative"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
