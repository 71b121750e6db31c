// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sink persists paired comparison results to InfluxDB so that
// fine-tuning progress can be tracked across runs.
package sink

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kodiakresearch/paireval/services/eval/paired"
)

// measurement is the InfluxDB measurement all comparison points land in.
const measurement = "paired_evaluations"

// pointWriter is the slice of the InfluxDB blocking write API this sink
// needs. Narrow on purpose so tests can substitute a recorder.
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// InfluxSink stores comparison results as time-series points.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI pointWriter
}

// NewInfluxSink connects to InfluxDB. The connection is lazy; a bad URL
// surfaces on the first write.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClient(url, token)
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}
}

// StoreReport writes the overall comparison plus one point per category
// stratum.
func (s *InfluxSink) StoreReport(ctx context.Context, report *paired.Report) error {
	if err := s.storeComparison(ctx, report.Metadata.RunID, "overall", report.Overall, report.Metadata.GeneratedAt); err != nil {
		return err
	}
	for _, cat := range report.Categories() {
		if err := s.storeComparison(ctx, report.Metadata.RunID, cat, report.ByType[cat], report.Metadata.GeneratedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *InfluxSink) storeComparison(ctx context.Context, runID, category string, c paired.Comparison, at time.Time) error {
	p := influxdb2.NewPointWithMeasurement(measurement).
		AddTag("run_id", runID).
		AddTag("baseline", c.Labels[0]).
		AddTag("candidate", c.Labels[1]).
		AddTag("category", category).
		AddField("n", c.N).
		AddField("baseline_rate", c.Baseline.Rate).
		AddField("candidate_rate", c.Candidate.Rate).
		AddField("lift", c.Lift).
		AddField("lift_ci_lower", c.LiftCI.Lower).
		AddField("lift_ci_upper", c.LiftCI.Upper).
		AddField("mcnemar_chi2", c.McNemarChi2).
		AddField("mcnemar_p", c.McNemarP).
		AddField("cohens_h", c.CohensH).
		AddField("n01", c.Discordant.N01).
		AddField("n10", c.Discordant.N10).
		SetTime(at)

	if c.PAdjusted != nil {
		p.AddField("p_adjusted", *c.PAdjusted)
	}
	if c.SignificantAfterBH != nil {
		p.AddField("significant_after_bh", *c.SignificantAfterBH)
	}

	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return fmt.Errorf("store comparison %q for run %s: %w", category, runID, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}
