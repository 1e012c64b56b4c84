package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrisjgaze/bp-analyzer/internal/report"
)

var (
	reportOutput   string
	reportCustomer string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the HTML analysis report for the latest run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := initStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		path := reportOutput
		if path == "" {
			path = cfg.Output.Report
		}
		customer := reportCustomer
		if customer == "" {
			customer = cfg.Customer
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		defer f.Close()

		if err := report.Generate(cmd.Context(), store, customer, f); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		fmt.Printf("Wrote report to %s\n", path)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file (default from config)")
	reportCmd.Flags().StringVar(&reportCustomer, "customer", "", "customer name for the report title (default from config)")
}
