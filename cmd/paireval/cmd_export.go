package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func runExport(_ *cobra.Command, args []string) {
	reportPath := args[0]

	out := outputFile
	if out == "" {
		out = strings.TrimSuffix(reportPath, ".json") + ".csv"
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		slog.Error("Failed to read report", "path", reportPath, "error", err)
		return
	}

	rows, err := flattenReport(data)
	if err != nil {
		slog.Error("Failed to flatten report", "error", err)
		return
	}

	f, err := os.Create(out)
	if err != nil {
		slog.Error("Failed to create CSV file", "path", out, "error", err)
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		slog.Error("Failed to write CSV", "error", err)
		return
	}

	fmt.Printf("✅ Exported %d comparison rows to %s\n", len(rows)-1, out)
}

// flattenReport turns a saved analysis report into CSV rows: a header
// plus one row for the overall comparison and one per category.
func flattenReport(data []byte) ([][]string, error) {
	var report struct {
		Overall  map[string]json.RawMessage            `json:"overall"`
		ByType   map[string]map[string]json.RawMessage `json:"by_type"`
		Metadata struct {
			RunID  string    `json:"run_id"`
			Labels [2]string `json:"labels"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if report.Metadata.Labels[0] == "" || report.Metadata.Labels[1] == "" {
		return nil, fmt.Errorf("report metadata is missing the model labels")
	}

	baseLabel, candLabel := report.Metadata.Labels[0], report.Metadata.Labels[1]
	header := []string{
		"run_id", "category", "n",
		baseLabel + "_rate", candLabel + "_rate",
		"lift", "lift_ci_lower", "lift_ci_upper",
		"mcnemar_chi2", "mcnemar_p", "p_adjusted", "significant_after_bh",
		"cohens_h", "n01", "n10",
	}
	rows := [][]string{header}

	row, err := comparisonRow(report.Metadata.RunID, "overall", baseLabel, candLabel, report.Overall)
	if err != nil {
		return nil, err
	}
	rows = append(rows, row)

	categories := make([]string, 0, len(report.ByType))
	for cat := range report.ByType {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		row, err := comparisonRow(report.Metadata.RunID, cat, baseLabel, candLabel, report.ByType[cat])
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cat, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func comparisonRow(runID, category, baseLabel, candLabel string, cmp map[string]json.RawMessage) ([]string, error) {
	num := func(key string) string {
		raw, ok := cmp[key]
		if !ok {
			return ""
		}
		return strings.TrimSpace(string(raw))
	}

	var liftCI [2]float64
	if raw, ok := cmp["lift_ci_bootstrap"]; ok {
		if err := json.Unmarshal(raw, &liftCI); err != nil {
			return nil, fmt.Errorf("bad lift_ci_bootstrap: %w", err)
		}
	}

	var discordant struct {
		N01 int `json:"n01"`
		N10 int `json:"n10"`
	}
	if raw, ok := cmp["discordant_pairs"]; ok {
		if err := json.Unmarshal(raw, &discordant); err != nil {
			return nil, fmt.Errorf("bad discordant_pairs: %w", err)
		}
	}

	return []string{
		runID, category, num("n"),
		num(baseLabel + "_rate"), num(candLabel + "_rate"),
		num("lift"),
		fmt.Sprintf("%g", liftCI[0]), fmt.Sprintf("%g", liftCI[1]),
		num("mcnemar_chi2"), num("mcnemar_p"),
		num("p_adjusted"), num("significant_after_bh"),
		num("cohens_h"),
		fmt.Sprintf("%d", discordant.N01), fmt.Sprintf("%d", discordant.N10),
	}, nil
}
