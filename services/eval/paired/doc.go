// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package paired assembles the full paired model comparison report.
//
// # Architecture
//
// Two models are evaluated on the same instruction set; each yields a
// vector of binary outcomes aligned index-for-index. The orchestrator
// runs the statistical battery over the full vectors and, when category
// labels are supplied, repeats it per category with false discovery rate
// correction across the strata:
//
//	baseline outcomes ──┐
//	                    ├──► Compare / CompareByType
//	candidate outcomes ─┘          │
//	                               ▼
//	             ┌─ overall: rates + Wilson CIs, lift,
//	             │  bootstrap CI of lift, McNemar, Cohen's h
//	             │
//	             ├─ per category: same battery per stratum
//	             │  + Benjamini-Hochberg across strata p-values
//	             │
//	             └─► Report (JSON-serializable, immutable)
//
// # Pairing Invariant
//
// The two outcome vectors must have equal length and identical item
// order; the pairing is the statistical basis for both McNemar's test
// and the paired bootstrap. Length mismatches fail loudly with
// ErrLengthMismatch, never truncated or padded.
//
// # Determinism
//
// All randomness lives in the bootstrap and is controlled by an explicit
// seed option. With WithSeed set, repeated runs over the same inputs
// produce byte-identical reports (modulo generation timestamps).
package paired
