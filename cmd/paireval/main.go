// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command paireval statistically compares two instruction-following
// evaluation runs.
//
// Usage:
//
//	paireval analyze --config scenarios/base_vs_sft.yaml
//	paireval analyze --config scenarios/base_vs_sft.yaml --seed 1234 --fdr 0.05
//	paireval export reports/base_vs_sft.json --output base_vs_sft.csv
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
