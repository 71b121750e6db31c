// Copyright (C) 2026 Kodiak Research (oss@kodiakresearch.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package outcomes loads per-instruction evaluation results from JSONL
// files and aligns two result sets into the paired vectors the
// statistics engine consumes.
//
// The generation side of the pipeline (model loading, prompting,
// success judging) lives outside this repository; it hands over one
// JSONL file per model, one record per evaluated instruction, in a
// stable instruction order.
package outcomes

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrRecordCountMismatch indicates two result files covering a
	// different number of instructions.
	ErrRecordCountMismatch = errors.New("result files differ in record count")

	// ErrInstructionMismatch indicates two result files whose
	// instructions diverge at some index, breaking the pairing.
	ErrInstructionMismatch = errors.New("result files are not aligned on the same instructions")
)

// Record is one evaluated instruction for one model.
type Record struct {
	// Instruction is the prompt text, the pairing key across files.
	Instruction string `json:"instruction"`

	// InstructionType is the category label for stratified analysis.
	// May be empty.
	InstructionType string `json:"instruction_type,omitempty"`

	// Response is the model output. Carried for inspection only; the
	// statistics never read it.
	Response string `json:"response,omitempty"`

	// Success is the judged instruction-following outcome.
	Success bool `json:"success"`
}

// maxLineBytes bounds a single JSONL line. Responses are carried inline,
// so lines can be large.
const maxLineBytes = 4 * 1024 * 1024

// LoadJSONL reads one result file, one JSON object per line. Blank lines
// are skipped; a malformed line fails the load with its line number.
func LoadJSONL(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", path, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return records, nil
}

// Align pairs two per-model result sets into the vectors the statistics
// engine consumes.
//
// Description:
//
//	Both files must cover the same instructions in the same order; that
//	index-for-index pairing is what makes McNemar's test and the paired
//	bootstrap valid. Any divergence fails loudly rather than silently
//	truncating. Instruction types are taken from the baseline records.
//
// Outputs:
//   - baseline, candidate: Aligned success vectors.
//   - types: Per-item instruction type labels, aligned with the vectors.
//   - error: ErrRecordCountMismatch or ErrInstructionMismatch on
//     misaligned inputs.
func Align(baselineRecs, candidateRecs []Record) (baseline, candidate []bool, types []string, err error) {
	if len(baselineRecs) != len(candidateRecs) {
		return nil, nil, nil, fmt.Errorf("%w: baseline has %d, candidate has %d (off by %d)",
			ErrRecordCountMismatch, len(baselineRecs), len(candidateRecs),
			len(baselineRecs)-len(candidateRecs))
	}

	baseline = make([]bool, len(baselineRecs))
	candidate = make([]bool, len(baselineRecs))
	types = make([]string, len(baselineRecs))

	for i := range baselineRecs {
		if baselineRecs[i].Instruction != candidateRecs[i].Instruction {
			return nil, nil, nil, fmt.Errorf("%w: index %d: %q vs %q",
				ErrInstructionMismatch, i, baselineRecs[i].Instruction, candidateRecs[i].Instruction)
		}
		baseline[i] = baselineRecs[i].Success
		candidate[i] = candidateRecs[i].Success
		types[i] = baselineRecs[i].InstructionType
	}

	return baseline, candidate, types, nil
}
