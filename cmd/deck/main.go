package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/slidedeck/internal/config"
)

func main() {
	var logFile string
	cfg := config.Load()

	root := &cobra.Command{
		Use:           "deck",
		Short:         "Build, present and follow the slide deck",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file (terminal views log nowhere by default)")

	logger := loggerFunc(func(tui bool) (*slog.Logger, func(), error) {
		return newLogger(logFile, tui)
	})

	root.AddCommand(exportCmd(&cfg, logger))
	root.AddCommand(presentCmd(&cfg, logger))
	root.AddCommand(presenterCmd(&cfg, logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type loggerFunc func(tui bool) (*slog.Logger, func(), error)

// newLogger writes JSON logs to path when set. Without a path, batch
// commands log to stderr and terminal views discard logs so they do not
// corrupt the screen.
func newLogger(path string, tui bool) (*slog.Logger, func(), error) {
	if path == "" {
		if tui {
			return slog.New(slog.DiscardHandler), func() {}, nil
		}
		return slog.New(slog.NewJSONHandler(os.Stderr, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { f.Close() }, nil
}
