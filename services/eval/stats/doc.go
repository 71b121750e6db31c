// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stats provides the statistical primitives for paired binary
// model evaluation.
//
// # Components
//
//   - WilsonCI: Wilson score confidence interval for a binomial proportion.
//     Preferred over the normal approximation for small samples and
//     proportions near 0 or 1, which is common when comparing an untuned
//     base model against a fine-tuned one.
//   - CohensH: arcsine-transformation effect size between two proportions.
//   - McNemar: paired significance test over discordant pair counts.
//   - BenjaminiHochberg: step-up false discovery rate correction across
//     a family of p-values.
//   - BootstrapCI: paired bootstrap percentile confidence interval for an
//     arbitrary statistic of two paired samples.
//
// All functions are pure: no package state, no global RNG. The bootstrap
// takes an explicit seed so that results are reproducible bit-for-bit.
//
// Distribution functions (normal quantile, chi-square df=1 survival) are
// computed from math.Erfinv and math.Erfc rather than an external
// statistics dependency; both identities are exact for the cases used
// here, not approximations.
package stats
