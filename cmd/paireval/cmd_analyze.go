package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodiakresearch/paireval/services/eval/outcomes"
	"github.com/kodiakresearch/paireval/services/eval/paired"
	"github.com/kodiakresearch/paireval/services/eval/scenario"
	"github.com/kodiakresearch/paireval/services/eval/sink"
)

func runAnalyze(cmd *cobra.Command, _ []string) {
	if configPath == "" {
		slog.Error("Please provide a scenario file using --config (e.g., --config scenarios/base_vs_sft.yaml)")
		return
	}

	// 1. Read and validate the scenario
	scn, err := scenario.Load(configPath)
	if err != nil {
		slog.Error("Failed to load scenario", "path", configPath, "error", err)
		return
	}

	// 2. Apply CLI overrides (flags win over YAML)
	if cmd.Flags().Changed("fdr") {
		scn.Analysis.FDR = fdrOverride
	}
	if cmd.Flags().Changed("confidence") {
		scn.Analysis.Confidence = confOverride
	}
	if cmd.Flags().Changed("bootstrap-samples") {
		scn.Analysis.BootstrapSamples = bootstrapSamples
	}
	if cmd.Flags().Changed("seed") {
		scn.Analysis.RandomSeed = &seedOverride
	}

	// 3. Load and align the two result files
	baseRecs, err := outcomes.LoadJSONL(scn.Comparison.Baseline.ResultsPath)
	if err != nil {
		slog.Error("Failed to load baseline results", "error", err)
		return
	}
	candRecs, err := outcomes.LoadJSONL(scn.Comparison.Candidate.ResultsPath)
	if err != nil {
		slog.Error("Failed to load candidate results", "error", err)
		return
	}
	baseVec, candVec, types, err := outcomes.Align(baseRecs, candRecs)
	if err != nil {
		slog.Error("Result files are not paired", "error", err)
		return
	}

	// 4. Generate a unique run ID: {ScenarioID}_v{Version}_{Timestamp}
	timestamp := time.Now().Format("20060102_150405")
	runID := fmt.Sprintf("%s_v%s_%s", scn.Metadata.ID, scn.Metadata.Version, timestamp)

	fmt.Printf("\nStarting Paired Evaluation Run: %s\n", runID)
	fmt.Printf("   Baseline:       %s (%s)\n", scn.Comparison.Baseline.Label, scn.Comparison.Baseline.ResultsPath)
	fmt.Printf("   Candidate:      %s (%s)\n", scn.Comparison.Candidate.Label, scn.Comparison.Candidate.ResultsPath)
	fmt.Printf("   Instructions:   %d\n", len(baseVec))
	fmt.Printf("   FDR / Conf:     %.2f / %.2f\n", scn.Analysis.FDR, scn.Analysis.Confidence)
	fmt.Printf("   Bootstrap:      %d samples\n", scn.Analysis.BootstrapSamples)
	fmt.Println("---------------------------------------------------")

	// 5. Run the analysis
	opts := []paired.Option{
		paired.WithFDR(scn.Analysis.FDR),
		paired.WithConfidence(scn.Analysis.Confidence),
		paired.WithBootstrapSamples(scn.Analysis.BootstrapSamples),
		paired.WithRunID(runID),
	}
	if scn.Analysis.RandomSeed != nil {
		opts = append(opts, paired.WithSeed(*scn.Analysis.RandomSeed))
	}

	stratify := *scn.Analysis.ByType && hasTypes(types)
	if *scn.Analysis.ByType && !stratify {
		slog.Warn("Scenario requests by_type analysis but the results carry no instruction_type labels; running overall only")
	}

	var report *paired.Report
	if stratify {
		report, err = paired.CompareByType(baseVec, candVec, types, scn.Labels(), opts...)
	} else {
		report, err = paired.Compare(baseVec, candVec, scn.Labels(), opts...)
	}
	if err != nil {
		slog.Error("Analysis failed", "error", err)
		return
	}

	printSummary(report)

	// 6. Write the report
	if scn.Output.JSONPath != "" {
		f, err := os.Create(scn.Output.JSONPath)
		if err != nil {
			slog.Error("Failed to create report file", "path", scn.Output.JSONPath, "error", err)
			return
		}
		defer f.Close()
		if err := report.WriteJSON(f); err != nil {
			slog.Error("Failed to write report", "error", err)
			return
		}
		fmt.Printf("\n   Report: %s\n", scn.Output.JSONPath)
	} else {
		if err := report.WriteJSON(os.Stdout); err != nil {
			slog.Error("Failed to write report", "error", err)
			return
		}
	}

	// 7. Optionally persist to InfluxDB
	if scn.Output.Influx != nil {
		influx := sink.NewInfluxSink(scn.Output.Influx.URL, scn.Output.Influx.Token,
			scn.Output.Influx.Org, scn.Output.Influx.Bucket)
		defer influx.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := influx.StoreReport(ctx, report); err != nil {
			slog.Error("Failed to store report in InfluxDB", "error", err)
			return
		}
		fmt.Printf("   Stored in InfluxDB bucket %q\n", scn.Output.Influx.Bucket)
	}

	fmt.Printf("\n✅ Evaluation completed successfully.\n")
	fmt.Printf("   Run ID: %s\n", runID)
}

// hasTypes reports whether any record carried an instruction type.
func hasTypes(types []string) bool {
	for _, t := range types {
		if t != "" {
			return true
		}
	}
	return false
}

func printSummary(report *paired.Report) {
	overall := report.Overall
	labels := report.Metadata.Labels

	fmt.Printf("\nOverall (n=%d)\n", overall.N)
	fmt.Printf("   %-12s %.4f  CI (%.4f, %.4f)\n", labels[0], overall.Baseline.Rate,
		overall.Baseline.CI.Lower, overall.Baseline.CI.Upper)
	fmt.Printf("   %-12s %.4f  CI (%.4f, %.4f)\n", labels[1], overall.Candidate.Rate,
		overall.Candidate.CI.Lower, overall.Candidate.CI.Upper)
	fmt.Printf("   Lift:        %+.4f  bootstrap CI (%.4f, %.4f)\n",
		overall.Lift, overall.LiftCI.Lower, overall.LiftCI.Upper)
	fmt.Printf("   McNemar:     chi2=%.4f p=%.3g (n01=%d n10=%d)\n",
		overall.McNemarChi2, overall.McNemarP, overall.Discordant.N01, overall.Discordant.N10)
	fmt.Printf("   Cohen's h:   %+.4f\n", overall.CohensH)

	if report.BH == nil {
		return
	}

	fmt.Printf("\nBy instruction type (%d tested, %d significant raw, %d after BH at fdr=%.2f)\n",
		report.BH.NTests, report.BH.NSignificantRaw, report.BH.NSignificantAdjusted, report.BH.FDR)
	for _, cat := range report.Categories() {
		cmp := report.ByType[cat]
		marker := " "
		if cmp.SignificantAfterBH != nil && *cmp.SignificantAfterBH {
			marker = "*"
		}
		fmt.Printf(" %s %-16s n=%-5d lift=%+.4f p=%.3g p_adj=%.3g\n",
			marker, cat, cmp.N, cmp.Lift, cmp.McNemarP, deref(cmp.PAdjusted))
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 1
	}
	return *p
}
