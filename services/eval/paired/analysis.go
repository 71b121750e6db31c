// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package paired

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kodiakresearch/paireval/services/eval/stats"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrLengthMismatch indicates the two outcome vectors differ in length.
	ErrLengthMismatch = errors.New("paired outcome vectors differ in length")

	// ErrTypeLengthMismatch indicates category labels that do not cover
	// the outcome vectors exactly.
	ErrTypeLengthMismatch = errors.New("category labels differ in length from outcomes")
)

// -----------------------------------------------------------------------------
// Orchestrator
// -----------------------------------------------------------------------------

// Compare runs the full statistical battery over two paired outcome
// vectors.
//
// Description:
//
//	Computes success counts and rates with Wilson CIs for both models,
//	the lift (candidate rate minus baseline rate) with a paired bootstrap
//	CI, the discordant pair counts, McNemar's test with continuity
//	correction, and Cohen's h. The result is an immutable Report with no
//	by-category section.
//
// Inputs:
//   - baseline, candidate: Paired outcome vectors of equal length.
//     Length zero is degenerate but valid.
//   - labels: Display names for the two models, baseline first. They
//     become the "<label>_rate" keys in the serialized report.
//   - opts: Optional configuration (FDR, confidence, bootstrap samples,
//     seed, run ID, logger).
//
// Outputs:
//   - *Report: The analysis report. Never nil on success.
//   - error: ErrLengthMismatch when the vectors are unequal, or a
//     configuration error from the underlying primitives.
//
// Thread Safety: Safe for concurrent use; no state is shared between
// invocations.
func Compare(baseline, candidate Outcomes, labels [2]string, opts ...Option) (*Report, error) {
	return analyze(baseline, candidate, nil, labels, opts...)
}

// CompareByType runs Compare and additionally stratifies the analysis by
// the given per-item category labels.
//
// Description:
//
//	Each distinct category value gets its own Comparison over the index
//	subset belonging to it, and Benjamini-Hochberg correction runs
//	across the per-category McNemar p-values at the configured FDR.
//	Every per-category Comparison carries its adjusted p-value and a
//	significance flag; the report's BH section summarizes the correction.
//
// Inputs:
//   - baseline, candidate: Paired outcome vectors of equal length.
//   - types: Per-item category label, exactly one per outcome.
//   - labels: Display names for the two models, baseline first.
//   - opts: Optional configuration.
//
// Outputs:
//   - *Report: Report with by_type and bh_correction sections populated.
//   - error: ErrLengthMismatch or ErrTypeLengthMismatch on contract
//     violations.
//
// Thread Safety: Safe for concurrent use.
func CompareByType(baseline, candidate Outcomes, types []string, labels [2]string, opts ...Option) (*Report, error) {
	if types == nil {
		types = []string{}
	}
	return analyze(baseline, candidate, types, labels, opts...)
}

// analyze is the shared implementation; a nil types slice means
// unstratified.
func analyze(baseline, candidate Outcomes, types []string, labels [2]string, opts ...Option) (*Report, error) {
	if len(baseline) != len(candidate) {
		return nil, fmt.Errorf("%w: len(%s)=%d len(%s)=%d (off by %d)",
			ErrLengthMismatch, labels[0], len(baseline), labels[1], len(candidate),
			len(baseline)-len(candidate))
	}
	if types != nil && len(types) != len(baseline) {
		return nil, fmt.Errorf("%w: %d labels for %d outcomes (off by %d)",
			ErrTypeLengthMismatch, len(types), len(baseline), len(types)-len(baseline))
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	overall, err := compareSubset(baseline, candidate, labels, cfg)
	if err != nil {
		return nil, fmt.Errorf("overall comparison: %w", err)
	}

	report := &Report{
		Overall: overall,
		Metadata: Metadata{
			RunID:            cfg.RunID,
			Labels:           labels,
			Confidence:       cfg.Confidence,
			BootstrapSamples: cfg.BootstrapSamples,
			Seed:             cfg.Seed,
			GeneratedAt:      time.Now().UTC(),
		},
	}

	if types == nil {
		return report, nil
	}

	byType, bh, err := compareStrata(baseline, candidate, types, labels, cfg)
	if err != nil {
		return nil, err
	}
	report.ByType = byType
	report.BH = bh
	return report, nil
}

// compareSubset computes one Comparison over already-aligned vectors.
func compareSubset(baseline, candidate Outcomes, labels [2]string, cfg *Config) (Comparison, error) {
	n := len(baseline)

	baseCI, err := stats.WilsonCI(baseline.SuccessCount(), n, cfg.Confidence)
	if err != nil {
		return Comparison{}, fmt.Errorf("wilson ci for %s: %w", labels[0], err)
	}
	candCI, err := stats.WilsonCI(candidate.SuccessCount(), n, cfg.Confidence)
	if err != nil {
		return Comparison{}, fmt.Errorf("wilson ci for %s: %w", labels[1], err)
	}

	baseRate := baseline.Rate()
	candRate := candidate.Rate()

	liftCI, err := stats.BootstrapCI(baseline.Floats(), candidate.Floats(), liftStatistic,
		cfg.BootstrapSamples, cfg.Confidence, cfg.Seed)
	if err != nil {
		return Comparison{}, fmt.Errorf("bootstrap lift ci: %w", err)
	}

	discordant := discordantCounts(baseline, candidate)
	if n > 0 && discordant.N01 == 0 && discordant.N10 == 0 {
		cfg.Logger.Warn("models never disagree; paired test is uninformative",
			"baseline", labels[0],
			"candidate", labels[1],
			"n", n)
	}

	chi2, p, err := stats.McNemar(discordant.N01, discordant.N10, true)
	if err != nil {
		return Comparison{}, fmt.Errorf("mcnemar: %w", err)
	}

	return Comparison{
		Labels: labels,
		N:      n,
		Baseline: Side{
			Successes: baseline.SuccessCount(),
			Rate:      baseRate,
			CI:        baseCI,
		},
		Candidate: Side{
			Successes: candidate.SuccessCount(),
			Rate:      candRate,
			CI:        candCI,
		},
		Lift:        candRate - baseRate,
		LiftCI:      liftCI,
		McNemarChi2: chi2,
		McNemarP:    p,
		CohensH:     stats.CohensH(candRate, baseRate),
		Discordant:  discordant,
	}, nil
}

// compareStrata repeats the battery per category and corrects the
// per-category p-values for multiple testing.
func compareStrata(baseline, candidate Outcomes, types []string, labels [2]string, cfg *Config) (map[string]Comparison, *BHSummary, error) {
	indexByType := make(map[string][]int)
	for i, cat := range types {
		indexByType[cat] = append(indexByType[cat], i)
	}

	// Deterministic stratum order keeps the BH input, and therefore the
	// whole report, reproducible run to run.
	categories := make([]string, 0, len(indexByType))
	for cat := range indexByType {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	byType := make(map[string]Comparison, len(categories))
	pvalues := make([]float64, 0, len(categories))

	for _, cat := range categories {
		indices := indexByType[cat]
		if len(indices) == 0 {
			cfg.Logger.Warn("empty category stratum", "category", cat)
		}
		cmp, err := compareSubset(baseline.Subset(indices), candidate.Subset(indices), labels, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("category %q: %w", cat, err)
		}
		byType[cat] = cmp
		pvalues = append(pvalues, cmp.McNemarP)
	}

	adjusted, reject, err := stats.BenjaminiHochberg(pvalues, cfg.FDR)
	if err != nil {
		return nil, nil, fmt.Errorf("benjamini-hochberg: %w", err)
	}

	summary := &BHSummary{
		FDR:    cfg.FDR,
		NTests: len(categories),
	}
	for i, cat := range categories {
		cmp := byType[cat]
		pAdj := adjusted[i]
		sig := reject[i]
		cmp.PAdjusted = &pAdj
		cmp.SignificantAfterBH = &sig
		byType[cat] = cmp

		if cmp.McNemarP < cfg.FDR {
			summary.NSignificantRaw++
		}
		if sig {
			summary.NSignificantAdjusted++
		}
	}

	return byType, summary, nil
}

// liftStatistic is the bootstrapped statistic: difference in success
// rates, candidate minus baseline.
func liftStatistic(baseline, candidate []float64) float64 {
	var sumBase, sumCand float64
	for i := range baseline {
		sumBase += baseline[i]
		sumCand += candidate[i]
	}
	n := float64(len(baseline))
	if n == 0 {
		return 0
	}
	return sumCand/n - sumBase/n
}
