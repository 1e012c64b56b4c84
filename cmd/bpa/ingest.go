package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisjgaze/bp-analyzer/internal/ingest"
)

var ingestOpts ingest.Options

var ingestCmd = &cobra.Command{
	Use:   "ingest <export.csv>",
	Short: "Load an export CSV into the documents table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := ingest.LoadFile(cmd.Context(), store, args[0], ingestOpts, logger)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", args[0], err)
		}

		fmt.Printf("Loaded %d documents into %s\n", n, cfg.Database.Path)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestOpts.Replace, "replace", false, "drop and recreate the documents table first")
	ingestCmd.Flags().IntVar(&ingestOpts.BatchSize, "batch-size", ingest.DefaultBatchSize, "rows per insert transaction")
}
