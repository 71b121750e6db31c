// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"
	"fmt"
	"math"
)

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

var (
	// ErrInvalidCounts indicates a negative count or successes > trials.
	ErrInvalidCounts = errors.New("invalid success/trial counts")

	// ErrInvalidConfidence indicates a confidence level outside (0, 1).
	ErrInvalidConfidence = errors.New("confidence level must be in (0, 1)")
)

// -----------------------------------------------------------------------------
// Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultConfidence is the confidence level used when callers have no
	// opinion (95% two-sided).
	DefaultConfidence = 0.95

	// DefaultFDR is the default target false discovery rate for
	// multiple-testing correction.
	DefaultFDR = 0.10

	// DefaultBootstrapSamples is the default bootstrap iteration count.
	DefaultBootstrapSamples = 10000
)

// ConfidenceInterval represents a two-sided confidence interval.
type ConfidenceInterval struct {
	// Lower is the lower bound.
	Lower float64 `json:"lower"`

	// Upper is the upper bound.
	Upper float64 `json:"upper"`

	// Level is the confidence level, e.g. 0.95 for a 95% CI.
	Level float64 `json:"level"`
}

// Contains returns true if the interval contains the value.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// Overlaps returns true if the two intervals share any point.
func (ci ConfidenceInterval) Overlaps(other ConfidenceInterval) bool {
	return ci.Lower <= other.Upper && other.Lower <= ci.Upper
}

// WilsonCI calculates the Wilson score confidence interval for a proportion.
//
// Description:
//
//	Given `successes` successes in `n` trials, returns a confidence
//	interval for the underlying success probability. The Wilson score
//	interval has better coverage than the naive normal-approximation
//	interval for small n and for proportions near 0 or 1, and its bounds
//	never leave [0, 1].
//
// Inputs:
//   - successes: Number of successes. Must be >= 0 and <= n.
//   - n: Number of trials. Must be >= 0. n == 0 yields the degenerate
//     interval (0, 0): no data, no claim.
//   - confidence: Two-sided confidence level in (0, 1), e.g. 0.95.
//
// Outputs:
//   - ConfidenceInterval: Bounds clamped to [0, 1] with Lower <= Upper.
//   - error: ErrInvalidCounts or ErrInvalidConfidence on contract
//     violations.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func WilsonCI(successes, n int, confidence float64) (ConfidenceInterval, error) {
	if successes < 0 || n < 0 || successes > n {
		return ConfidenceInterval{}, fmt.Errorf("%w: successes=%d n=%d", ErrInvalidCounts, successes, n)
	}
	if confidence <= 0 || confidence >= 1 {
		return ConfidenceInterval{}, fmt.Errorf("%w: got %v", ErrInvalidConfidence, confidence)
	}
	if n == 0 {
		return ConfidenceInterval{Lower: 0, Upper: 0, Level: confidence}, nil
	}

	z := normalQuantile(confidence)
	z2 := z * z
	fn := float64(n)
	p := float64(successes) / fn

	denom := fn + z2
	center := (float64(successes) + z2/2) / denom
	margin := z * math.Sqrt((p*(1-p)/fn+z2/(4*fn*fn))*fn/denom)

	return ConfidenceInterval{
		Lower: clamp01(center - margin),
		Upper: clamp01(center + margin),
		Level: confidence,
	}, nil
}

// normalQuantile returns the two-sided standard normal quantile for the
// given confidence level: the z with P(-z <= Z <= z) = confidence.
// Exact via the inverse error function (z(0.95) = 1.959964...).
func normalQuantile(confidence float64) float64 {
	return math.Sqrt2 * math.Erfinv(confidence)
}

// clamp01 clamps v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
