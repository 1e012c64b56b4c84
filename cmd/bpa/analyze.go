package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisjgaze/bp-analyzer/internal/pipeline"
)

var analyzeOpts pipeline.Options

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis over the loaded documents",
	Long: `Parses every loaded document, extracts and hashes embedded code,
classifies findings, resolves cross-references, and replaces the
derived tables with the results.`,
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

		if analyzeOpts.Workers <= 0 {
			analyzeOpts.Workers = cfg.Analysis.Workers
		}

		sum, err := pipeline.Run(cmd.Context(), store, analyzeOpts, logger)
		if err != nil {
			return fmt.Errorf("analysis run: %w", err)
		}

		fmt.Printf("Analyzed %d documents: %d code units, %d findings, %d cross-references",
			sum.Documents, sum.Units, sum.Findings, sum.Refs)
		if sum.Skipped > 0 {
			fmt.Printf(" (%d skipped)", sum.Skipped)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOpts.OnlyKind, "only-kind", "", `restrict to processes ("P") or objects ("O")`)
	analyzeCmd.Flags().StringVar(&analyzeOpts.NameLike, "name-like", "", "restrict to documents whose name contains this fragment")
	analyzeCmd.Flags().IntVar(&analyzeOpts.Workers, "workers", 0, "concurrent document analyses (0 = from config)")
}
