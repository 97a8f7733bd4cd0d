// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	kcerrors "github.com/kraklabs/codeintel/internal/errors"
	"github.com/kraklabs/codeintel/internal/output"
)

// AnalyzeResult is the JSON-friendly summary of one full analyze run.
type AnalyzeResult struct {
	Root            string `json:"root"`
	FilesScanned    int    `json:"files_scanned"`
	Functions       int    `json:"functions"`
	Classes         int    `json:"classes"`
	ParseErrors     int    `json:"parse_errors"`
	Relationships   int    `json:"relationships"`
	Violations      int    `json:"violations"`
	Warnings        int    `json:"warnings"`
	HistoryScanned  bool   `json:"history_scanned"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// runAnalyze executes the 'analyze' command: scan, build registry,
// extract relationships, build the graph, validate governance, and (when
// a git repository is detected) score history — the whole staged run in
// one call.
//
// Flags:
//   - --root: repository root to analyze (default: ".")
//   - --config: path to codeintel.yaml (default: "codeintel.yaml")
//   - --json: output as JSON
func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root to analyze")
	configPath := fs.String("config", "", "Path to codeintel.yaml")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codeintel analyze [options]

Scans, parses, extracts relationships, builds the graph, validates
governance, and scores git history for the repository at --root.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := newLogger()
	cfg := loadConfig(*configPath, *jsonOutput)

	p, err := newPipeline(*root, cfg, logger)
	if err != nil {
		kcerrors.FatalError(fmt.Errorf("construct pipeline: %w", err), *jsonOutput)
	}

	result, err := p.AnalyzeRepository(context.Background())
	if err != nil {
		kcerrors.FatalError(kcerrors.NewInternalError("Analysis failed", err.Error(),
			"Check the logged stage that failed for the underlying cause", err), *jsonOutput)
	}

	summary := AnalyzeResult{
		Root:            *root,
		FilesScanned:    len(result.Parsed.ParsedByFile),
		Functions:       len(result.Parsed.Registry.AllFunctions()),
		Classes:         len(result.Parsed.Registry.AllClasses()),
		ParseErrors:     result.Parsed.ParseErrors,
		Relationships:   len(result.Relationships),
		Violations:      result.Validation.TotalViolations,
		Warnings:        result.Validation.TotalWarnings,
		HistoryScanned:  result.History != nil,
		DurationSeconds: result.Duration.Seconds(),
	}

	if *jsonOutput {
		if err := output.JSON(summary); err != nil {
			kcerrors.FatalError(err, true)
		}
		return
	}

	fmt.Printf("Analyzed %s\n", *root)
	fmt.Printf("  files:          %d (%d parse errors)\n", summary.FilesScanned, summary.ParseErrors)
	fmt.Printf("  functions:      %d\n", summary.Functions)
	fmt.Printf("  classes:        %d\n", summary.Classes)
	fmt.Printf("  relationships:  %d\n", summary.Relationships)
	fmt.Printf("  governance:     %d violations, %d warnings\n", summary.Violations, summary.Warnings)
	fmt.Printf("  history scan:   %v\n", summary.HistoryScanned)
	fmt.Printf("  duration:       %.2fs\n", summary.DurationSeconds)
}
