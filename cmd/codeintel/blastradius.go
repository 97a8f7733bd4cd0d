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
	"github.com/kraklabs/codeintel/pkg/pipeline"
)

// runBlastRadius executes the 'blast-radius' command: resolve --target to
// an entity id (by exact id, then by unqualified name) and report its
// impact assessment.
//
// Flags:
//   - --root: repository root to analyze (default: ".")
//   - --config: path to codeintel.yaml (default: "codeintel.yaml")
//   - --target: function or class name, or entity id (required)
//   - --json: output as JSON
func runBlastRadius(args []string) {
	fs := flag.NewFlagSet("blast-radius", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root to analyze")
	configPath := fs.String("config", "", "Path to codeintel.yaml")
	target := fs.String("target", "", "Function or class name, or entity id (required)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codeintel blast-radius --target <name-or-id> [options]

Calculates the blast radius of one function or class: direct and
indirect callers, affected tests, and a risk score.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *target == "" {
		kcerrors.FatalError(kcerrors.NewInputError("Missing --target",
			"blast-radius requires a function or class to assess",
			"Pass --target <name-or-id>, e.g. --target pkg/auth.Login"), *jsonOutput)
	}

	logger := newLogger()
	cfg := loadConfig(*configPath, *jsonOutput)

	p, err := newPipeline(*root, cfg, logger)
	if err != nil {
		kcerrors.FatalError(fmt.Errorf("construct pipeline: %w", err), *jsonOutput)
	}

	ctx := context.Background()
	files, _, err := p.ScanRepository(ctx)
	if err != nil {
		kcerrors.FatalError(err, *jsonOutput)
	}
	parsed, err := p.BuildRegistry(ctx, files)
	if err != nil {
		kcerrors.FatalError(err, *jsonOutput)
	}
	rels, err := p.ExtractRelationships(ctx, parsed)
	if err != nil {
		kcerrors.FatalError(err, *jsonOutput)
	}
	if err := p.BuildGraph(ctx, parsed, rels); err != nil {
		kcerrors.FatalError(err, *jsonOutput)
	}

	id := resolveTarget(parsed, *target)
	if id == "" {
		kcerrors.FatalError(kcerrors.NewNotFoundError(
			fmt.Sprintf("Target %q not found", *target),
			"No function or class with that name or id exists in the registry",
			"Re-run codeintel analyze and pass one of its reported entity names"), *jsonOutput)
	}

	assessment, err := p.CalculateBlastRadius(ctx, parsed, nil, id)
	if err != nil {
		kcerrors.FatalError(err, *jsonOutput)
	}

	if *jsonOutput {
		if err := output.JSON(assessment); err != nil {
			kcerrors.FatalError(err, true)
		}
		return
	}

	fmt.Printf("Blast radius for %s (%s)\n", *target, id)
	fmt.Printf("  risk level:       %s (score %.2f)\n", assessment.Level, assessment.OverallScore)
	fmt.Printf("  direct callers:   %d\n", len(assessment.DirectCallers))
	fmt.Printf("  indirect callers: %d\n", len(assessment.IndirectCallers))
	fmt.Printf("  all affected:     %d\n", len(assessment.AllAffected))
	fmt.Printf("  affected tests:   %d\n", len(assessment.AffectedTests))
	for _, rec := range assessment.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
}

// resolveTarget accepts either a raw entity id or an unqualified
// function/class name, returning "" if neither resolves.
func resolveTarget(parsed *pipeline.ParsedRepository, name string) string {
	if _, ok := parsed.Registry.Function(name); ok {
		return name
	}
	if _, ok := parsed.Registry.Class(name); ok {
		return name
	}
	ids := parsed.Registry.ByName(name)
	if len(ids) > 0 {
		return ids[0]
	}
	return ""
}
