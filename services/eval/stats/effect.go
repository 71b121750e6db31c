// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import "math"

// CohensH calculates Cohen's h effect size between two proportions.
//
// Description:
//
//	h = 2*(arcsin(sqrt(p1)) - arcsin(sqrt(p2))). The arcsine transform
//	stabilizes the variance of a proportion, making h comparable across
//	the [0, 1] range. The sign follows p1 - p2: positive means p1 > p2.
//	Antisymmetric: CohensH(a, b) == -CohensH(b, a), and CohensH(p, p) == 0.
//
// Inputs:
//   - p1, p2: Proportions. Clamped to [0, 1] before transforming, so
//     floating point drift just outside the unit interval never produces
//     NaN.
//
// Outputs:
//   - float64: Signed effect size, bounded by pi in magnitude for inputs
//     in [0, 1].
//
// Thread Safety: This function is stateless and safe for concurrent use.
func CohensH(p1, p2 float64) float64 {
	return 2 * (math.Asin(math.Sqrt(clamp01(p1))) - math.Asin(math.Sqrt(clamp01(p2))))
}

// EffectCategory categorizes effect sizes using Cohen's conventions.
type EffectCategory int

const (
	// EffectNegligible indicates |h| < 0.2
	EffectNegligible EffectCategory = iota
	// EffectSmall indicates 0.2 <= |h| < 0.5
	EffectSmall
	// EffectMedium indicates 0.5 <= |h| < 0.8
	EffectMedium
	// EffectLarge indicates |h| >= 0.8
	EffectLarge
)

// String returns the string representation.
func (e EffectCategory) String() string {
	switch e {
	case EffectNegligible:
		return "negligible"
	case EffectSmall:
		return "small"
	case EffectMedium:
		return "medium"
	case EffectLarge:
		return "large"
	default:
		return "unknown"
	}
}

// CategorizeEffect returns the conventional interpretation band for a
// Cohen's h value. Informational only; no decision in this module keys
// off the band.
func CategorizeEffect(h float64) EffectCategory {
	absH := math.Abs(h)
	switch {
	case absH < 0.2:
		return EffectNegligible
	case absH < 0.5:
		return EffectSmall
	case absH < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}
