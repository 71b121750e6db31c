// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodiakresearch/paireval/services/eval/paired"
)

// recordingWriter captures points instead of talking to a server.
type recordingWriter struct {
	points []*write.Point
	err    error
}

func (r *recordingWriter) WritePoint(_ context.Context, point ...*write.Point) error {
	if r.err != nil {
		return r.err
	}
	r.points = append(r.points, point...)
	return nil
}

func stratifiedReport(t *testing.T) *paired.Report {
	t.Helper()

	n := 200
	base := make(paired.Outcomes, n)
	cand := make(paired.Outcomes, n)
	types := make([]string, n)
	for i := 0; i < n; i++ {
		base[i] = i%10 < 2
		cand[i] = i%10 < 6
		if i%2 == 0 {
			types[i] = "format"
		} else {
			types[i] = "length"
		}
	}

	report, err := paired.CompareByType(base, cand, types, [2]string{"base", "sft"},
		paired.WithSeed(17), paired.WithRunID("run_sink_test"))
	require.NoError(t, err)
	return report
}

func TestInfluxSink_StoreReport(t *testing.T) {
	writer := &recordingWriter{}
	s := &InfluxSink{writeAPI: writer}

	report := stratifiedReport(t)
	require.NoError(t, s.StoreReport(context.Background(), report))

	// One overall point plus one per category.
	require.Len(t, writer.points, 3)

	categories := make(map[string]bool)
	for _, p := range writer.points {
		assert.Equal(t, measurement, p.Name())
		tags := make(map[string]string)
		for _, tag := range p.TagList() {
			tags[tag.Key] = tag.Value
		}
		assert.Equal(t, "run_sink_test", tags["run_id"])
		assert.Equal(t, "base", tags["baseline"])
		assert.Equal(t, "sft", tags["candidate"])
		categories[tags["category"]] = true
	}
	assert.True(t, categories["overall"])
	assert.True(t, categories["format"])
	assert.True(t, categories["length"])
}

func TestInfluxSink_CategoryPointsCarryAdjustedP(t *testing.T) {
	writer := &recordingWriter{}
	s := &InfluxSink{writeAPI: writer}

	require.NoError(t, s.StoreReport(context.Background(), stratifiedReport(t)))

	for _, p := range writer.points {
		fields := make(map[string]any)
		for _, f := range p.FieldList() {
			fields[f.Key] = f.Value
		}

		var category string
		for _, tag := range p.TagList() {
			if tag.Key == "category" {
				category = tag.Value
			}
		}

		if category == "overall" {
			assert.NotContains(t, fields, "p_adjusted")
		} else {
			assert.Contains(t, fields, "p_adjusted")
			assert.Contains(t, fields, "significant_after_bh")
		}
		assert.Contains(t, fields, "lift")
		assert.Contains(t, fields, "mcnemar_p")
	}
}

func TestInfluxSink_WriteFailurePropagates(t *testing.T) {
	writer := &recordingWriter{err: errors.New("connection refused")}
	s := &InfluxSink{writeAPI: writer}

	err := s.StoreReport(context.Background(), stratifiedReport(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_sink_test")
}
