// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"fmt"
	"math"
)

// McNemar performs McNemar's test on discordant pair counts.
//
// Description:
//
//	Tests whether two paired classifiers disagree symmetrically. Only the
//	discordant pairs carry information: n01 counts pairs where the first
//	model failed and the second succeeded, n10 the reverse. Concordant
//	pairs are irrelevant and must already be excluded by the caller.
//
//	With the continuity correction the statistic is
//	(max(|n01-n10|-1, 0))^2 / (n01+n10); without it, (n01-n10)^2 /
//	(n01+n10). The corrected difference clamps at zero so the corrected
//	chi-square never exceeds the uncorrected one. The p-value is the
//	survival function of a chi-square with one degree of freedom,
//	computed exactly as erfc(sqrt(chi2/2)).
//
// Inputs:
//   - n01: Pairs where model 1 failed and model 2 succeeded. Must be >= 0.
//   - n10: Pairs where model 1 succeeded and model 2 failed. Must be >= 0.
//   - continuity: Apply Edwards' continuity correction.
//
// Outputs:
//   - chi2: The test statistic. 0 when the models never disagree.
//   - p: Two-sided p-value. 1 when the models never disagree (the
//     comparison is uninformative).
//   - error: ErrInvalidCounts if either count is negative.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func McNemar(n01, n10 int, continuity bool) (chi2, p float64, err error) {
	if n01 < 0 || n10 < 0 {
		return 0, 0, fmt.Errorf("%w: n01=%d n10=%d", ErrInvalidCounts, n01, n10)
	}

	total := float64(n01 + n10)
	if total == 0 {
		return 0, 1, nil
	}

	diff := math.Abs(float64(n01 - n10))
	if continuity {
		diff = math.Max(diff-1, 0)
	}
	chi2 = diff * diff / total

	return chi2, chiSquareSurvivalDF1(chi2), nil
}

// chiSquareSurvivalDF1 returns P(X > x) for X ~ chi-square with one degree
// of freedom. For df=1 the survival function reduces exactly to
// erfc(sqrt(x/2)); no incomplete-gamma machinery is needed.
func chiSquareSurvivalDF1(x float64) float64 {
	if x <= 0 {
		return 1
	}
	return math.Erfc(math.Sqrt(x / 2))
}
