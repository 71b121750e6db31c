// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath       string
	fdrOverride      float64
	confOverride     float64
	bootstrapSamples int
	seedOverride     int64
	outputFile       string
	verbose          bool

	rootCmd = &cobra.Command{
		Use:   "paireval",
		Short: "Paired statistical evaluation of instruction-following model runs",
		Long: `paireval compares two models evaluated on the same instruction set:
success rates with Wilson intervals, lift with a paired bootstrap CI,
McNemar's test, Cohen's h, and per-instruction-type stratification with
Benjamini-Hochberg FDR correction.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Run a paired comparison scenario and emit the analysis report",
		Run:   runAnalyze, // Defined in cmd_analyze.go
	}

	exportCmd = &cobra.Command{
		Use:   "export [report.json]",
		Short: "Flatten a saved analysis report to CSV",
		Args:  cobra.ExactArgs(1),
		Run:   runExport, // Defined in cmd_export.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	analyzeCmd.Flags().StringVar(&configPath, "config", "", "Scenario YAML file (required)")
	analyzeCmd.Flags().Float64Var(&fdrOverride, "fdr", 0, "Override analysis.fdr from the scenario")
	analyzeCmd.Flags().Float64Var(&confOverride, "confidence", 0, "Override analysis.confidence from the scenario")
	analyzeCmd.Flags().IntVar(&bootstrapSamples, "bootstrap-samples", 0, "Override analysis.bootstrap_samples from the scenario")
	analyzeCmd.Flags().Int64Var(&seedOverride, "seed", 0, "Override analysis.random_seed from the scenario")

	exportCmd.Flags().StringVar(&outputFile, "output", "", "CSV output path (default: derived from the report name)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
}
