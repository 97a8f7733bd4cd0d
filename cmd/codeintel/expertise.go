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
	"fmt"
	"os"
	"sort"

	flag "github.com/spf13/pflag"

	kcerrors "github.com/kraklabs/codeintel/internal/errors"
	"github.com/kraklabs/codeintel/internal/output"
	"github.com/kraklabs/codeintel/pkg/gitanalysis"
)

// runExpertise executes the 'expertise' command: score every contributor
// to --file and report them ranked by overall expertise.
//
// Flags:
//   - --root: repository root (default: ".")
//   - --config: path to codeintel.yaml (default: "codeintel.yaml")
//   - --file: path to score, relative to --root (required)
//   - --json: output as JSON
func runExpertise(args []string) {
	fs := flag.NewFlagSet("expertise", flag.ExitOnError)
	root := fs.String("root", ".", "Repository root")
	configPath := fs.String("config", "", "Path to codeintel.yaml")
	file := fs.String("file", "", "File path to score (required)")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: codeintel expertise --file <path> [options]

Scores every contributor to --file on seven weighted factors derived
from git history, ranked by overall expertise.

Options:
`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *file == "" {
		kcerrors.FatalError(kcerrors.NewInputError("Missing --file",
			"expertise requires a file to score",
			"Pass --file <path>, e.g. --file pkg/auth/login.go"), *jsonOutput)
	}

	logger := newLogger()
	cfg := loadConfig(*configPath, *jsonOutput)

	provider := gitanalysis.NewCLIProvider(*root, logger)
	developers, err := provider.AllContributors(*file)
	if err != nil {
		kcerrors.FatalError(kcerrors.NewExternalProviderError(
			"Cannot list contributors",
			err.Error(),
			"Confirm --root points at a git repository and --file is tracked",
			err), *jsonOutput)
	}

	commits, err := provider.CommitsTouchingFile(*file, 0)
	if err != nil {
		kcerrors.FatalError(kcerrors.NewExternalProviderError(
			"Cannot read commit history for file",
			err.Error(),
			"Confirm --root points at a git repository and --file is tracked",
			err), *jsonOutput)
	}
	if len(commits) == 0 {
		if *jsonOutput {
			_ = output.JSON([]gitanalysis.ExpertiseScore{})
			return
		}
		fmt.Printf("No commits found touching %s\n", *file)
		return
	}

	classifier := gitanalysis.NewClassifier(cfg.ClassificationKeywords())
	weights := cfg.ExpertiseWeights()
	minExpertise := cfg.MinExpertiseCommits()

	scores := make([]gitanalysis.ExpertiseScore, 0, len(developers))
	for _, dev := range developers {
		scores = append(scores, gitanalysis.ScoreExpertise(commits, classifier, *file, dev, weights, nil, minExpertise))
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Overall > scores[j].Overall })

	if *jsonOutput {
		if err := output.JSON(scores); err != nil {
			kcerrors.FatalError(err, true)
		}
		return
	}

	fmt.Printf("Expertise for %s\n", *file)
	for _, s := range scores {
		fmt.Printf("  %-30s overall=%.2f confidence=%.2f  %s\n", s.Developer, s.Overall, s.Confidence, s.Reasoning)
	}
}
