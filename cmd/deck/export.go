package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/slidedeck/internal/config"
	"github.com/dgallion1/slidedeck/internal/deck"
	"github.com/dgallion1/slidedeck/internal/export"
	"github.com/dgallion1/slidedeck/internal/slides"
)

func exportCmd(cfg *config.Config, logger loggerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Assemble every slide and write the static JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := logger(false)
			if err != nil {
				return err
			}
			defer closeLog()

			catalog, err := slides.Default()
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			doc := deck.NewStore(catalog, cfg.ContentDir, log).Document()
			if err := export.Write(cfg.ExportPath, doc); err != nil {
				return err
			}

			log.Info("exported slides", "path", cfg.ExportPath, "slides", len(doc.Slides))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d slides to %s\n", len(doc.Slides), cfg.ExportPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.ContentDir, "content", cfg.ContentDir, "directory holding slide-<slug>.md files")
	cmd.Flags().StringVarP(&cfg.ExportPath, "out", "o", cfg.ExportPath, "output path for the JSON document")
	return cmd
}
