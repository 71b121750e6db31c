// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package paired

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/kodiakresearch/paireval/services/eval/stats"
)

// Config controls a paired comparison run.
type Config struct {
	// FDR is the target false discovery rate for the per-category
	// Benjamini-Hochberg correction.
	// Default: 0.10
	FDR float64

	// Confidence is the level for all confidence intervals.
	// Default: 0.95
	Confidence float64

	// BootstrapSamples is the bootstrap iteration count for the lift CI.
	// Default: 10000
	BootstrapSamples int

	// Seed seeds the bootstrap RNG. Nil means non-deterministic.
	Seed *int64

	// RunID identifies this analysis run in report metadata and sinks.
	// Default: a fresh UUID.
	RunID string

	// Logger receives warnings for degenerate-but-valid inputs.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		FDR:              stats.DefaultFDR,
		Confidence:       stats.DefaultConfidence,
		BootstrapSamples: stats.DefaultBootstrapSamples,
		RunID:            uuid.NewString(),
		Logger:           slog.Default(),
	}
}

// Option configures a comparison run.
type Option func(*Config)

// WithFDR sets the target false discovery rate.
func WithFDR(fdr float64) Option {
	return func(c *Config) {
		c.FDR = fdr
	}
}

// WithConfidence sets the confidence level for all intervals.
func WithConfidence(level float64) Option {
	return func(c *Config) {
		c.Confidence = level
	}
}

// WithBootstrapSamples sets the bootstrap iteration count.
func WithBootstrapSamples(n int) Option {
	return func(c *Config) {
		c.BootstrapSamples = n
	}
}

// WithSeed makes the bootstrap deterministic.
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = &seed
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(c *Config) {
		c.RunID = id
	}
}

// WithLogger sets the logger for degenerate-input warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
