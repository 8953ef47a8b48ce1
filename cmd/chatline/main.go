// Command chatline is a terminal client for a single chat channel.
//
// It serves the channel from a recorded transcript through an in-memory
// client, so the timeline, history paging, scroll anchoring and typing
// presence can be exercised without a network service.
//
// Usage:
//
//	chatline [flags]
//
// Flags:
//
//	--config string       Config file (default: search $XDG_CONFIG_HOME/chatline, ~/.config/chatline, .)
//	--transcript string   Transcript to serve (default: built-in demo)
//	--save string         Write the channel state here on exit
//	--latency duration    Delay added to every fetch and send
//	--log-level string    Log level: debug, info, warn, error
//	--log-format string   Log format: console, json
//	--log-file string     Log file (the terminal belongs to the UI)
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fwojciec/chatline"
	bt "github.com/fwojciec/chatline/bubbletea"
	"github.com/fwojciec/chatline/channel"
	"github.com/fwojciec/chatline/config"
	"github.com/fwojciec/chatline/dispatch"
	"github.com/fwojciec/chatline/eventbus"
	chatjson "github.com/fwojciec/chatline/json"
	"github.com/fwojciec/chatline/logging"
	"github.com/fwojciec/chatline/memory"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "chatline: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "chatline",
		Short:         "Terminal client for one chat channel",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (default: search $XDG_CONFIG_HOME/chatline, ~/.config/chatline, .)")
	f.String("transcript", "", "transcript to serve (default: built-in demo)")
	f.String("save", "", "write the channel state here on exit")
	f.Duration("latency", 0, "delay added to every fetch and send")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("log-format", "", "log format: console, json")
	f.String("log-file", "", "log file")
	return cmd
}

func loadConfig(cmd *cobra.Command, configFile string) (*config.Config, error) {
	loader := config.NewLoader()
	if configFile != "" {
		loader.SetConfigFile(configFile)
	}
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return loader.Load()
}

func run(ctx context.Context, cfg *config.Config) error {
	logger, closer, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	defer closer.Close()

	transcript, err := loadTranscript(cfg.Transcript.Path, logger)
	if err != nil {
		return err
	}
	logger.Info().
		Stringer("channel", transcript.Channel).
		Int("history", len(transcript.History)).
		Int("live", len(transcript.Live)).
		Msg("starting")

	client := memory.New(transcript,
		memory.WithLatency(cfg.Transcript.Latency),
		memory.WithLogger(logger),
	)
	bus := eventbus.New(eventbus.WithLogger(logger))
	bridge := dispatch.New(bus, dispatch.WithLogger(logger))
	defer bridge.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := bt.New(bt.Config{
		Bridge: bridge,
		View: channel.Config{
			Channel:         transcript.Channel,
			Remote:          client,
			Bus:             bus,
			Context:         ctx,
			Self:            transcript.Self,
			InitialBatch:    cfg.Timeline.InitialBatch,
			MoreBatch:       cfg.Timeline.MoreBatch,
			PrefetchScreens: cfg.Timeline.PrefetchScreens,
			Epsilon:         cfg.Anchor.BottomEpsilon,
			TypingTimeout:   cfg.Typing.Timeout,
		},
		ChannelName:  channelName(transcript),
		Theme:        chatline.DefaultTheme(),
		LoadInterval: cfg.Timeline.LoadInterval,
		Logger:       logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Leaving the UI ends the session.
		defer cancel()
		if err := bt.Run(gctx, model); err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := client.Subscribe(gctx, func(e chatline.Event) { bridge.Forward(e) })
		if err != nil {
			return fmt.Errorf("subscribe: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if path := cfg.Transcript.Save; path != "" {
		if err := chatjson.Save(path, client.Snapshot()); err != nil {
			return fmt.Errorf("save transcript: %w", err)
		}
		logger.Info().Str("path", path).Msg("transcript saved")
		fmt.Fprintf(os.Stderr, "Channel saved to %s\n", path)
	}
	return nil
}

// loadTranscript reads path, or builds the demo transcript when path is
// empty. Entries that fail to decode are logged and skipped.
func loadTranscript(path string, logger zerolog.Logger) (chatline.Transcript, error) {
	if path == "" {
		return demoTranscript(time.Now()), nil
	}
	t, err := chatjson.Load(path)
	var skipped *chatjson.SkippedError
	switch {
	case errors.As(err, &skipped):
		for _, e := range skipped.Errors {
			logger.Warn().Err(e).Str("path", path).Msg("transcript entry skipped")
		}
	case err != nil:
		return chatline.Transcript{}, fmt.Errorf("load transcript: %w", err)
	}
	return t, nil
}

func channelName(t chatline.Transcript) string {
	if t.ChannelName != "" {
		return t.ChannelName
	}
	return t.Channel.String()
}
