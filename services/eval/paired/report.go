// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package paired

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/kodiakresearch/paireval/services/eval/stats"
)

// Side holds the per-model half of a comparison.
type Side struct {
	// Successes is the raw success count within the compared subset.
	Successes int `json:"successes"`

	// Rate is the success proportion.
	Rate float64 `json:"rate"`

	// CI is the Wilson score interval for the rate.
	CI stats.ConfidenceInterval `json:"ci"`
}

// Comparison is the immutable statistical result for one subset of paired
// outcomes, either the full evaluation set or a single category stratum.
//
// The struct shape is fixed; the caller-supplied model labels only appear
// at JSON serialization time (see MarshalJSON), which emits the
// "<label>_rate" / "<label>_ci" keys downstream tooling expects.
type Comparison struct {
	// Labels names the two models: Labels[0] is the baseline,
	// Labels[1] the candidate.
	Labels [2]string `json:"-"`

	// N is the subset size.
	N int

	// Baseline and Candidate are the two sides of the comparison.
	Baseline  Side
	Candidate Side

	// Lift is Candidate.Rate - Baseline.Rate.
	Lift float64

	// LiftCI is the paired bootstrap percentile interval for the lift.
	LiftCI stats.ConfidenceInterval

	// McNemarChi2 and McNemarP are the paired significance test results.
	McNemarChi2 float64
	McNemarP    float64

	// CohensH is the effect size, signed like the lift.
	CohensH float64

	// Discordant holds the disagreement counts feeding McNemar's test.
	Discordant DiscordantPairs

	// PAdjusted is the BH-adjusted p-value. Only set on per-category
	// comparisons.
	PAdjusted *float64

	// SignificantAfterBH reports whether the stratum survived the FDR
	// correction. Only set on per-category comparisons.
	SignificantAfterBH *bool
}

// MarshalJSON emits the dynamic "<label>_rate" / "<label>_ci" field names
// keyed by the caller-supplied model labels.
func (c Comparison) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"n":                 c.N,
		c.Labels[0] + "_rate": c.Baseline.Rate,
		c.Labels[0] + "_ci":   [2]float64{c.Baseline.CI.Lower, c.Baseline.CI.Upper},
		c.Labels[1] + "_rate": c.Candidate.Rate,
		c.Labels[1] + "_ci":   [2]float64{c.Candidate.CI.Lower, c.Candidate.CI.Upper},
		"lift":              c.Lift,
		"lift_ci_bootstrap": [2]float64{c.LiftCI.Lower, c.LiftCI.Upper},
		"mcnemar_chi2":      c.McNemarChi2,
		"mcnemar_p":         c.McNemarP,
		"cohens_h":          c.CohensH,
		"discordant_pairs":  c.Discordant,
	}
	if c.PAdjusted != nil {
		out["p_adjusted"] = *c.PAdjusted
	}
	if c.SignificantAfterBH != nil {
		out["significant_after_bh"] = *c.SignificantAfterBH
	}
	return json.Marshal(out)
}

// BHSummary is the multiple-testing correction bookkeeping for a
// stratified analysis.
type BHSummary struct {
	// FDR is the target false discovery rate used.
	FDR float64 `json:"fdr"`

	// NTests is the number of per-category hypotheses tested.
	NTests int `json:"n_tests"`

	// NSignificantRaw counts categories with raw p < FDR.
	NSignificantRaw int `json:"n_significant_raw"`

	// NSignificantAdjusted counts categories rejected after correction.
	NSignificantAdjusted int `json:"n_significant_adjusted"`
}

// Metadata records the run parameters alongside the results.
type Metadata struct {
	// RunID identifies this analysis run.
	RunID string `json:"run_id"`

	// Labels names the compared models, baseline first.
	Labels [2]string `json:"labels"`

	// Confidence is the level used for every interval in the report.
	Confidence float64 `json:"confidence"`

	// BootstrapSamples is the bootstrap iteration count used.
	BootstrapSamples int `json:"bootstrap_samples"`

	// Seed is the bootstrap RNG seed, absent when non-deterministic.
	Seed *int64 `json:"random_seed,omitempty"`

	// GeneratedAt is the report creation time.
	GeneratedAt time.Time `json:"generated_at"`
}

// Report is the complete analysis output. Constructed in one call, never
// mutated afterward.
type Report struct {
	// Overall is the comparison over the full paired vectors.
	Overall Comparison `json:"overall"`

	// ByType maps category name to its stratum comparison. Nil when the
	// analysis ran without category labels.
	ByType map[string]Comparison `json:"by_type,omitempty"`

	// BH summarizes the correction across category p-values. Nil when
	// the analysis ran without category labels.
	BH *BHSummary `json:"bh_correction,omitempty"`

	// Metadata records the run parameters.
	Metadata Metadata `json:"metadata"`
}

// Categories returns the category names present in the report, sorted
// for deterministic iteration. Empty for unstratified reports.
func (r *Report) Categories() []string {
	names := make([]string, 0, len(r.ByType))
	for name := range r.ByType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteJSON serializes the report with indentation.
func (r *Report) WriteJSON(w io.Writer) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
