package main

import (
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dgallion1/slidedeck/internal/client"
	"github.com/dgallion1/slidedeck/internal/config"
	"github.com/dgallion1/slidedeck/internal/deck"
	"github.com/dgallion1/slidedeck/internal/position"
	"github.com/dgallion1/slidedeck/internal/present"
	"github.com/dgallion1/slidedeck/internal/slides"
	"github.com/dgallion1/slidedeck/internal/tui"
)

// sourceFlags selects where the terminal views read slides from.
type sourceFlags struct {
	local bool
}

func (f *sourceFlags) register(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().BoolVar(&f.local, "local", false, "assemble slides from the content directory instead of fetching them")
	cmd.Flags().StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "content directory used with --local")
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "server or static host serving "+slides.EndpointPath)
}

// open returns the slide source and a cleanup for it.
func (f *sourceFlags) open(cfg *config.Config, log *slog.Logger) (present.SlideSource, func(), error) {
	if f.local {
		catalog, err := slides.Default()
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog: %w", err)
		}
		return present.LocalSource{Store: deck.NewStore(catalog, cfg.ContentDir, log)}, func() {}, nil
	}
	fetcher := client.NewFetcher(cfg.BaseURL, cfg.FetchTimeout, log)
	return fetcher, fetcher.Close, nil
}

func presentCmd(cfg *config.Config, logger loggerFunc) *cobra.Command {
	var (
		src   sourceFlags
		slide string
	)

	cmd := &cobra.Command{
		Use:   "present",
		Short: "Run the presentation and publish the current slide",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, closeLog, err := logger(true)
			if err != nil {
				return err
			}
			defer closeLog()

			source, closeSource, err := src.open(cfg, log)
			if err != nil {
				return err
			}
			defer closeSource()

			positions, err := position.Open(*cfg, log)
			if err != nil {
				return err
			}
			defer positions.Close()

			ctrl := present.NewController(source, positions, cfg.PositionKey, log, present.WithInitialSlide(slide))
			p := tea.NewProgram(tui.NewPresentModel(cmd.Context(), ctrl), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			ctrl.OnChange(tui.Notify(p))
			ctrl.OnChange(func(number int) {
				log.Info("slide changed", "slide", number)
			})

			_, err = p.Run()
			return err
		},
	}
	src.register(cmd, cfg)
	cmd.Flags().StringVar(&slide, "slide", "", "slide number to open on (clamped to the deck)")
	return cmd
}

func presenterCmd(cfg *config.Config, logger loggerFunc) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "presenter",
		Short: "Follow the presentation and show speaker notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, closeLog, err := logger(true)
			if err != nil {
				return err
			}
			defer closeLog()

			source, closeSource, err := src.open(cfg, log)
			if err != nil {
				return err
			}
			defer closeSource()

			positions, err := position.Open(*cfg, log)
			if err != nil {
				return err
			}
			defer positions.Close()

			follower := present.NewFollower(source, positions, cfg.PositionKey, cfg.PollInterval, log)
			p := tea.NewProgram(tui.NewPresenterModel(follower.Current()), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			follower.OnView(tui.Forward(p))

			follower.Start(cmd.Context())
			defer follower.Stop()

			_, err = p.Run()
			return err
		},
	}
	src.register(cmd, cfg)
	return cmd
}
