// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package paired

// Outcomes is an ordered vector of per-instruction success flags for one
// model. Two vectors under comparison are paired: index i in both refers
// to the same instruction.
type Outcomes []bool

// SuccessCount returns the number of successful outcomes.
func (o Outcomes) SuccessCount() int {
	count := 0
	for _, v := range o {
		if v {
			count++
		}
	}
	return count
}

// Rate returns the success proportion, 0 for an empty vector.
func (o Outcomes) Rate() float64 {
	if len(o) == 0 {
		return 0
	}
	return float64(o.SuccessCount()) / float64(len(o))
}

// Floats converts the vector to 0/1 float64 values for resampling.
func (o Outcomes) Floats() []float64 {
	out := make([]float64, len(o))
	for i, v := range o {
		if v {
			out[i] = 1
		}
	}
	return out
}

// Subset returns the outcomes at the given indices, in order. Indices
// must be valid for the vector.
func (o Outcomes) Subset(indices []int) Outcomes {
	sub := make(Outcomes, len(indices))
	for i, idx := range indices {
		sub[i] = o[idx]
	}
	return sub
}

// DiscordantPairs holds the counts of paired disagreements between two
// models. Concordant pairs carry no information for McNemar's test and
// are not tracked.
type DiscordantPairs struct {
	// N01 counts pairs where the baseline failed and the candidate
	// succeeded.
	N01 int `json:"n01"`

	// N10 counts pairs where the baseline succeeded and the candidate
	// failed.
	N10 int `json:"n10"`
}

// discordantCounts tallies disagreements between two equal-length
// vectors. Length equality is the caller's responsibility.
func discordantCounts(baseline, candidate Outcomes) DiscordantPairs {
	var d DiscordantPairs
	for i := range baseline {
		switch {
		case !baseline[i] && candidate[i]:
			d.N01++
		case baseline[i] && !candidate[i]:
			d.N10++
		}
	}
	return d
}
