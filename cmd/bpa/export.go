package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chrisjgaze/bp-analyzer/internal/analysis"
	"github.com/chrisjgaze/bp-analyzer/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the latest analysis results",
}

var exportJSONLCmd = &cobra.Command{
	Use:   "jsonl",
	Short: "Write code units with findings as JSON Lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, export.WriteJSONL, "jsonl")
	},
}

var exportSARIFCmd = &cobra.Command{
	Use:   "sarif",
	Short: "Write findings as a SARIF 2.1.0 report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd, export.WriteSARIF, "sarif")
	},
}

func runExport(cmd *cobra.Command, write func(io.Writer, []analysis.Unit) error, format string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	units, err := store.Units(cmd.Context())
	if err != nil {
		return fmt.Errorf("load code units: %w", err)
	}

	path := exportOutput
	if path == "" {
		switch format {
		case "jsonl":
			path = cfg.Output.JSONL
		case "sarif":
			path = cfg.Output.SARIF
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := write(f, units); err != nil {
		return fmt.Errorf("write %s export: %w", format, err)
	}

	fmt.Printf("Wrote %d code units to %s\n", len(units), path)
	return nil
}

func init() {
	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file (default from config)")
	exportCmd.AddCommand(exportJSONLCmd)
	exportCmd.AddCommand(exportSARIFCmd)
}
