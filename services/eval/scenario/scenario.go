// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scenario defines the YAML configuration for a paired
// evaluation run driven from the CLI.
package scenario

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kodiakresearch/paireval/services/eval/stats"
)

var (
	// ErrInvalidScenario indicates a scenario file that fails validation.
	ErrInvalidScenario = errors.New("invalid scenario")
)

// Scenario describes one paired comparison run end to end: which result
// files to compare, how to analyze them, and where the report goes.
type Scenario struct {
	Metadata   Metadata   `yaml:"metadata"`
	Comparison Comparison `yaml:"comparison"`
	Analysis   Analysis   `yaml:"analysis"`
	Output     Output     `yaml:"output"`
}

// Metadata identifies the scenario for run IDs and report bookkeeping.
type Metadata struct {
	ID          string `yaml:"id"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

// Model points at one model's evaluation results.
type Model struct {
	// Label is the display name used for report keys, e.g. "base" or
	// "sft".
	Label string `yaml:"label"`

	// ResultsPath is the JSONL file of per-instruction outcomes.
	ResultsPath string `yaml:"results_path"`
}

// Comparison names the two result sets, baseline first.
type Comparison struct {
	Baseline  Model `yaml:"baseline"`
	Candidate Model `yaml:"candidate"`
}

// Analysis carries the statistical knobs.
type Analysis struct {
	// FDR is the target false discovery rate for stratified analysis.
	// Default: 0.10
	FDR float64 `yaml:"fdr"`

	// Confidence is the level for all intervals. Default: 0.95
	Confidence float64 `yaml:"confidence"`

	// BootstrapSamples is the bootstrap iteration count. Default: 10000
	BootstrapSamples int `yaml:"bootstrap_samples"`

	// RandomSeed, when set, makes the run reproducible.
	RandomSeed *int64 `yaml:"random_seed"`

	// ByType stratifies the analysis by instruction type. Default: true
	ByType *bool `yaml:"by_type"`
}

// Influx configures optional result persistence.
type Influx struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Output says where the report lands.
type Output struct {
	// JSONPath is the report file. Empty writes to stdout only.
	JSONPath string `yaml:"json_path"`

	// Influx, when present, additionally stores every comparison as a
	// time-series point.
	Influx *Influx `yaml:"influx"`
}

// Load reads, defaults, and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if s.Analysis.FDR == 0 {
		s.Analysis.FDR = stats.DefaultFDR
	}
	if s.Analysis.Confidence == 0 {
		s.Analysis.Confidence = stats.DefaultConfidence
	}
	if s.Analysis.BootstrapSamples == 0 {
		s.Analysis.BootstrapSamples = stats.DefaultBootstrapSamples
	}
	if s.Analysis.ByType == nil {
		byType := true
		s.Analysis.ByType = &byType
	}
	if s.Metadata.Version == "" {
		s.Metadata.Version = "1"
	}
}

// Validate checks the scenario invariants that would otherwise surface
// halfway through an analysis run.
func (s *Scenario) Validate() error {
	if s.Metadata.ID == "" {
		return fmt.Errorf("%w: metadata.id is required", ErrInvalidScenario)
	}
	if s.Comparison.Baseline.Label == "" || s.Comparison.Candidate.Label == "" {
		return fmt.Errorf("%w: both comparison labels are required", ErrInvalidScenario)
	}
	if s.Comparison.Baseline.Label == s.Comparison.Candidate.Label {
		return fmt.Errorf("%w: comparison labels must differ, both are %q",
			ErrInvalidScenario, s.Comparison.Baseline.Label)
	}
	if s.Comparison.Baseline.ResultsPath == "" || s.Comparison.Candidate.ResultsPath == "" {
		return fmt.Errorf("%w: both results_path entries are required", ErrInvalidScenario)
	}
	if s.Analysis.FDR <= 0 || s.Analysis.FDR >= 1 {
		return fmt.Errorf("%w: analysis.fdr must be in (0, 1), got %v", ErrInvalidScenario, s.Analysis.FDR)
	}
	if s.Analysis.Confidence <= 0 || s.Analysis.Confidence >= 1 {
		return fmt.Errorf("%w: analysis.confidence must be in (0, 1), got %v",
			ErrInvalidScenario, s.Analysis.Confidence)
	}
	if s.Analysis.BootstrapSamples < 1 {
		return fmt.Errorf("%w: analysis.bootstrap_samples must be positive, got %d",
			ErrInvalidScenario, s.Analysis.BootstrapSamples)
	}
	if s.Output.Influx != nil {
		if s.Output.Influx.URL == "" || s.Output.Influx.Bucket == "" {
			return fmt.Errorf("%w: output.influx requires url and bucket", ErrInvalidScenario)
		}
	}
	return nil
}

// Labels returns the comparison labels as the pair the analysis expects,
// baseline first.
func (s *Scenario) Labels() [2]string {
	return [2]string{s.Comparison.Baseline.Label, s.Comparison.Candidate.Label}
}
