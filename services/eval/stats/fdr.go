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
	"sort"
)

var (
	// ErrInvalidPValue indicates a p-value outside [0, 1].
	ErrInvalidPValue = errors.New("p-value must be in [0, 1]")

	// ErrInvalidFDR indicates a target FDR outside (0, 1).
	ErrInvalidFDR = errors.New("target FDR must be in (0, 1)")
)

// BenjaminiHochberg applies the Benjamini-Hochberg step-up procedure.
//
// Description:
//
//	Controls the false discovery rate across a family of hypothesis
//	tests. Sorts the raw p-values ascending, finds the largest rank i
//	with p(i) <= (i/m)*fdr, and rejects every hypothesis up to that rank.
//	Adjusted p-values come from the standard step-down pass
//	(adjusted(i) = min(p(i)*m/i, adjusted(i+1)), clipped to [0, 1]).
//
//	The decision set is invariant to the order p-values are supplied in;
//	both output slices are aligned index-for-index with the input.
//
// Inputs:
//   - pvalues: Raw p-values, each in [0, 1]. May be empty.
//   - fdr: Target false discovery rate in (0, 1), e.g. 0.10.
//
// Outputs:
//   - adjusted: BH-adjusted p-values, input order.
//   - reject: true where the hypothesis is rejected at the target FDR.
//   - error: ErrInvalidPValue or ErrInvalidFDR on contract violations.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func BenjaminiHochberg(pvalues []float64, fdr float64) (adjusted []float64, reject []bool, err error) {
	if fdr <= 0 || fdr >= 1 {
		return nil, nil, fmt.Errorf("%w: got %v", ErrInvalidFDR, fdr)
	}
	for i, p := range pvalues {
		if p < 0 || p > 1 {
			return nil, nil, fmt.Errorf("%w: pvalues[%d]=%v", ErrInvalidPValue, i, p)
		}
	}

	m := len(pvalues)
	adjusted = make([]float64, m)
	reject = make([]bool, m)
	if m == 0 {
		return adjusted, reject, nil
	}

	// Sort ranks by raw p-value, remembering original positions.
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return pvalues[order[a]] < pvalues[order[b]]
	})

	// Step-up rejection: largest rank whose p-value sits under its
	// threshold (rank/m)*fdr; everything at or below that rank rejects.
	cutoff := -1
	for rank := 0; rank < m; rank++ {
		if pvalues[order[rank]] <= float64(rank+1)/float64(m)*fdr {
			cutoff = rank
		}
	}
	for rank := 0; rank <= cutoff; rank++ {
		reject[order[rank]] = true
	}

	// Step-down adjusted p-values over the sorted sequence.
	sortedAdj := make([]float64, m)
	sortedAdj[m-1] = min(pvalues[order[m-1]], 1)
	for rank := m - 2; rank >= 0; rank-- {
		scaled := pvalues[order[rank]] * float64(m) / float64(rank+1)
		sortedAdj[rank] = min(min(scaled, sortedAdj[rank+1]), 1)
	}
	for rank, orig := range order {
		adjusted[orig] = sortedAdj[rank]
	}

	return adjusted, reject, nil
}
