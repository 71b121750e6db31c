// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package paired

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// patternOutcomes builds a deterministic outcome vector: index i succeeds
// when i modulo period falls below hits. Success rate is hits/period.
func patternOutcomes(n, period, hits int) Outcomes {
	o := make(Outcomes, n)
	for i := range o {
		o[i] = i%period < hits
	}
	return o
}

func TestCompare_ContractEnforcement(t *testing.T) {
	t.Run("mismatched outcome lengths", func(t *testing.T) {
		_, err := Compare(make(Outcomes, 100), make(Outcomes, 50), [2]string{"base", "sft"})
		require.ErrorIs(t, err, ErrLengthMismatch)
		assert.Contains(t, err.Error(), "100")
		assert.Contains(t, err.Error(), "50")
	})

	t.Run("mismatched category labels", func(t *testing.T) {
		_, err := CompareByType(make(Outcomes, 10), make(Outcomes, 10),
			make([]string, 7), [2]string{"base", "sft"})
		require.ErrorIs(t, err, ErrTypeLengthMismatch)
		assert.Contains(t, err.Error(), "7")
	})
}

func TestCompare_BaseVsSFT(t *testing.T) {
	// Base model succeeds on 15% of instructions; the SFT model succeeds
	// on a strict superset covering 75%. Clear, large improvement.
	base := patternOutcomes(1000, 20, 3)
	sft := patternOutcomes(1000, 20, 15)

	report, err := Compare(base, sft, [2]string{"base", "sft"}, WithSeed(1234))
	require.NoError(t, err)

	overall := report.Overall
	assert.Equal(t, 1000, overall.N)
	assert.InDelta(t, 0.15, overall.Baseline.Rate, 1e-9)
	assert.InDelta(t, 0.75, overall.Candidate.Rate, 1e-9)
	assert.InDelta(t, 0.60, overall.Lift, 1e-9)

	// All successful base items are also SFT successes, so disagreement
	// is entirely one-sided.
	assert.Equal(t, 600, overall.Discordant.N01)
	assert.Equal(t, 0, overall.Discordant.N10)

	assert.Less(t, overall.McNemarP, 1e-10)
	assert.Greater(t, overall.CohensH, 1.0)

	// The bootstrap interval brackets the true lift.
	assert.True(t, overall.LiftCI.Contains(0.60),
		"lift CI (%.4f, %.4f) should contain 0.60", overall.LiftCI.Lower, overall.LiftCI.Upper)

	// Rate CIs must not overlap for a gap this large.
	assert.False(t, overall.Baseline.CI.Overlaps(overall.Candidate.CI),
		"base CI (%.4f, %.4f) overlaps sft CI (%.4f, %.4f)",
		overall.Baseline.CI.Lower, overall.Baseline.CI.Upper,
		overall.Candidate.CI.Lower, overall.Candidate.CI.Upper)
}

func TestCompare_IdenticalModels(t *testing.T) {
	outcomes := patternOutcomes(500, 10, 4)
	same := make(Outcomes, len(outcomes))
	copy(same, outcomes)

	report, err := Compare(outcomes, same, [2]string{"base", "sft"}, WithSeed(7))
	require.NoError(t, err)

	overall := report.Overall
	assert.Equal(t, 0.0, overall.Lift)
	assert.Equal(t, 1.0, overall.McNemarP)
	assert.Equal(t, 0.0, overall.McNemarChi2)
	assert.Equal(t, 0.0, overall.CohensH)
	assert.Equal(t, DiscordantPairs{N01: 0, N10: 0}, overall.Discordant)
	assert.Equal(t, 0.0, overall.LiftCI.Lower)
	assert.Equal(t, 0.0, overall.LiftCI.Upper)
}

func TestCompare_ThreeStageChain(t *testing.T) {
	// base -> SFT -> DPO with strictly increasing success rates. The
	// early jump (0.2 -> 0.6) dwarfs the later one (0.6 -> 0.8).
	base := patternOutcomes(1000, 10, 2)
	sft := patternOutcomes(1000, 10, 6)
	dpo := patternOutcomes(1000, 10, 8)

	baseVsSFT, err := Compare(base, sft, [2]string{"base", "sft"}, WithSeed(5))
	require.NoError(t, err)
	sftVsDPO, err := Compare(sft, dpo, [2]string{"sft", "dpo"}, WithSeed(5))
	require.NoError(t, err)

	assert.Less(t, baseVsSFT.Overall.McNemarP, 0.01)
	assert.Less(t, sftVsDPO.Overall.McNemarP, 0.01)
	assert.Greater(t, baseVsSFT.Overall.Lift, 0.0)
	assert.Greater(t, sftVsDPO.Overall.Lift, 0.0)
	assert.Greater(t, baseVsSFT.Overall.Lift, sftVsDPO.Overall.Lift)
}

func TestCompare_EmptyVectors(t *testing.T) {
	report, err := Compare(Outcomes{}, Outcomes{}, [2]string{"base", "sft"})
	require.NoError(t, err)

	overall := report.Overall
	assert.Equal(t, 0, overall.N)
	assert.Equal(t, 0.0, overall.Baseline.Rate)
	assert.Equal(t, 0.0, overall.Baseline.CI.Lower)
	assert.Equal(t, 0.0, overall.Baseline.CI.Upper)
	assert.Equal(t, 1.0, overall.McNemarP)
}

func TestCompare_SeededReproducibility(t *testing.T) {
	base := patternOutcomes(400, 8, 3)
	cand := patternOutcomes(400, 8, 5)

	first, err := Compare(base, cand, [2]string{"base", "sft"}, WithSeed(99))
	require.NoError(t, err)
	second, err := Compare(base, cand, [2]string{"base", "sft"}, WithSeed(99))
	require.NoError(t, err)

	assert.Equal(t, first.Overall.LiftCI, second.Overall.LiftCI)
}

func TestCompareByType_StratifiedAnalysis(t *testing.T) {
	// Four instruction types. Only "format" truly differs between the
	// models; the other three strata are identical arrays.
	const perType = 250
	types := make([]string, 0, 4*perType)
	base := make(Outcomes, 0, 4*perType)
	cand := make(Outcomes, 0, 4*perType)

	for _, cat := range []string{"format", "length", "keyword", "structure"} {
		for i := 0; i < perType; i++ {
			types = append(types, cat)
			if cat == "format" {
				base = append(base, i%10 < 2)
				cand = append(cand, i%10 < 7)
			} else {
				v := i%10 < 5
				base = append(base, v)
				cand = append(cand, v)
			}
		}
	}

	report, err := CompareByType(base, cand, types, [2]string{"base", "sft"}, WithSeed(21))
	require.NoError(t, err)
	require.NotNil(t, report.BH)
	require.Len(t, report.ByType, 4)

	assert.Equal(t, 4, report.BH.NTests)
	assert.Equal(t, 1, report.BH.NSignificantRaw)
	assert.Equal(t, 1, report.BH.NSignificantAdjusted)

	format := report.ByType["format"]
	require.NotNil(t, format.PAdjusted)
	require.NotNil(t, format.SignificantAfterBH)
	assert.True(t, *format.SignificantAfterBH)
	assert.Equal(t, perType, format.N)
	assert.InDelta(t, 0.5, format.Lift, 1e-9)

	for _, cat := range []string{"length", "keyword", "structure"} {
		cmp := report.ByType[cat]
		require.NotNil(t, cmp.SignificantAfterBH, "category %s", cat)
		assert.False(t, *cmp.SignificantAfterBH, "category %s", cat)
		assert.Equal(t, 1.0, cmp.McNemarP, "category %s", cat)
	}
}

func TestCompareByType_NullAcrossStrata(t *testing.T) {
	// All four categories identical between models: the correction must
	// not manufacture significance.
	n := 800
	types := make([]string, n)
	base := make(Outcomes, n)
	cand := make(Outcomes, n)
	cats := []string{"a", "b", "c", "d"}
	for i := 0; i < n; i++ {
		types[i] = cats[i%4]
		v := i%5 == 0
		base[i] = v
		cand[i] = v
	}

	report, err := CompareByType(base, cand, types, [2]string{"m1", "m2"}, WithSeed(3))
	require.NoError(t, err)
	assert.Equal(t, 0, report.BH.NSignificantRaw)
	assert.Equal(t, 0, report.BH.NSignificantAdjusted)
}

func TestCompareByType_CategoriesSorted(t *testing.T) {
	types := []string{"zeta", "alpha", "zeta", "alpha", "mid", "mid"}
	base := make(Outcomes, 6)
	cand := make(Outcomes, 6)

	report, err := CompareByType(base, cand, types, [2]string{"m1", "m2"}, WithSeed(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, report.Categories())
}

func TestOutcomes_Helpers(t *testing.T) {
	o := Outcomes{true, false, true, true}
	assert.Equal(t, 3, o.SuccessCount())
	assert.InDelta(t, 0.75, o.Rate(), 1e-12)
	assert.Equal(t, []float64{1, 0, 1, 1}, o.Floats())
	assert.Equal(t, Outcomes{false, true}, o.Subset([]int{1, 2}))
	assert.Equal(t, 0.0, Outcomes{}.Rate())

	d := discordantCounts(Outcomes{true, false, false, true}, Outcomes{false, true, false, true})
	assert.Equal(t, DiscordantPairs{N01: 1, N10: 1}, d)
}
