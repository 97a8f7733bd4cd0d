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

// runValidate executes the 'validate' command: scan, build the registry,
// and validate every file's imports against governance layers and rules.
//
// Flags:
//   - --root: repository root to validate (default: ".")
//   - --config: path to codeintel.yaml (default: "codeintel.yaml")
//   - --strict: warn on imports with an endpoint that matches no layer
//   - --json: output as JSON
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root to validate")
	configPath := fs.String("config", "", "Path to codeintel.yaml")
	strict := fs.Bool("strict", false, "Warn on imports with an endpoint that matches no layer")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codeintel validate [options]

Validates every file's imports against the configured architectural
governance layers and boundary rules.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	logger := newLogger()
	cfg := loadConfig(*configPath, *jsonOutput)
	if *strict {
		cfg.Governance.Strict = true
	}

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

	result := p.ValidateRepository(ctx, parsed)

	if *jsonOutput {
		if err := output.JSON(result); err != nil {
			kcerrors.FatalError(err, true)
		}
	} else {
		fmt.Printf("Validated %d files (%d imports)\n", result.TotalFiles, result.TotalImports)
		fmt.Printf("  violations: %d\n", result.TotalViolations)
		fmt.Printf("  warnings:   %d\n", result.TotalWarnings)
		for _, fr := range result.Files {
			for _, v := range fr.Violations {
				fmt.Printf("  [%s] %s imports %q (%s -> %s): %s\n", v.Action, v.File, v.Import, v.FromLayer, v.ToLayer, v.Message)
			}
		}
	}

	if result.TotalViolations > 0 {
		os.Exit(1)
	}
}
