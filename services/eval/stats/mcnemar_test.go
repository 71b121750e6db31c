// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package stats

import (
	"errors"
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestMcNemar_KnownValues(t *testing.T) {
	tests := []struct {
		name       string
		n01, n10   int
		continuity bool
		wantChi2   float64
		wantP      float64
	}{
		{"15 vs 5 corrected", 15, 5, true, 4.05, 0.044171},
		{"15 vs 5 uncorrected", 15, 5, false, 5.0, 0.025347},
		{"41 discordant corrected", 25, 16, true, 1.560976, 0.211522},
		{"41 discordant uncorrected", 25, 16, false, 1.975610, 0.159854},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chi2, p, err := McNemar(tt.n01, tt.n10, tt.continuity)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(chi2-tt.wantChi2) > 1e-5 {
				t.Errorf("chi2 = %.6f, want %.6f", chi2, tt.wantChi2)
			}
			if math.Abs(p-tt.wantP) > 1e-5 {
				t.Errorf("p = %.6f, want %.6f", p, tt.wantP)
			}
		})
	}
}

func TestMcNemar_ZeroDiscordance(t *testing.T) {
	chi2, p, err := McNemar(0, 0, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chi2 != 0.0 || p != 1.0 {
		t.Errorf("McNemar(0, 0) = (%v, %v), want (0, 1)", chi2, p)
	}
}

func TestMcNemar_BalancedDiscordance(t *testing.T) {
	// Equal disagreement in both directions: no evidence either way.
	// The corrected difference clamps at zero rather than going negative.
	chi2, p, err := McNemar(10, 10, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chi2 != 0.0 || p != 1.0 {
		t.Errorf("McNemar(10, 10) = (%v, %v), want (0, 1)", chi2, p)
	}
}

func TestMcNemar_NegativeCounts(t *testing.T) {
	if _, _, err := McNemar(-1, 5, true); !errors.Is(err, ErrInvalidCounts) {
		t.Errorf("expected ErrInvalidCounts, got %v", err)
	}
}

func TestMcNemar_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n01 := rapid.IntRange(0, 2000).Draw(rt, "n01")
		n10 := rapid.IntRange(0, 2000).Draw(rt, "n10")

		// Symmetry: only |n01 - n10| matters.
		chi2a, pa, err := McNemar(n01, n10, true)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		chi2b, pb, err := McNemar(n10, n01, true)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if chi2a != chi2b || pa != pb {
			rt.Errorf("asymmetric result: (%v, %v) vs (%v, %v)", chi2a, pa, chi2b, pb)
		}

		// The continuity correction never increases the statistic.
		chi2raw, praw, err := McNemar(n01, n10, false)
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if chi2a > chi2raw {
			rt.Errorf("corrected chi2 %v exceeds uncorrected %v", chi2a, chi2raw)
		}
		if pa < praw {
			rt.Errorf("corrected p %v below uncorrected %v", pa, praw)
		}
	})
}
