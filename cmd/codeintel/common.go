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
	"log/slog"
	"os"
	"time"

	kcerrors "github.com/kraklabs/codeintel/internal/errors"
	"github.com/kraklabs/codeintel/pkg/config"
	"github.com/kraklabs/codeintel/pkg/gitanalysis"
	"github.com/kraklabs/codeintel/pkg/pipeline"
)

// newLogger builds the shared text-handler slog.Logger every subcommand
// logs through, writing to stderr so stdout stays reserved for --json
// and human-readable results.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// loadConfig loads path via pkg/config, falling back to defaults when
// path is empty or absent, and fatally exits on a malformed config.
func loadConfig(path string, jsonOutput bool) *config.Config {
	if path == "" {
		path = "codeintel.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		kcerrors.FatalError(err, jsonOutput)
	}
	return cfg
}

// newPipeline wires a pkg/config.Config and a root path into a
// pkg/pipeline.Pipeline, with a CLIProvider git backend rooted at root.
func newPipeline(root string, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	pcfg := pipeline.Config{
		RootPath:      root,
		Governance:    cfg.AsGovernanceConfig(),
		RiskWeights:   cfg.RiskWeights(),
		GitWindow:     cfg.History.ScanWindowCommits,
		RecencyWindow: time.Duration(cfg.History.RecencyWindowDays) * 24 * time.Hour,
		MinExpertise:  cfg.MinExpertiseCommits(),
	}
	gitProvider := gitanalysis.NewCLIProvider(root, logger)
	return pipeline.New(pcfg, logger, gitProvider)
}
