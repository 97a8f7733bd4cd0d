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

// Package config loads the YAML project file that parameterizes a
// pipeline run: expertise and risk weights, governance layers/rules, and
// commit-classification keywords. A project that never writes one gets
// every default from pkg/impact, pkg/gitanalysis and pkg/governance
// untouched.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/codeintel/internal/errors"
	"github.com/kraklabs/codeintel/pkg/gitanalysis"
	"github.com/kraklabs/codeintel/pkg/governance"
	"github.com/kraklabs/codeintel/pkg/impact"
)

// Config is the top-level shape of a project's codeintel.yaml.
type Config struct {
	// Language selects the AST binding. Only "go" exists today; the field
	// is carried so a future binding doesn't need a config-format bump.
	Language string `yaml:"language"`

	Governance GovernanceConfig `yaml:"governance"`
	Expertise  ExpertiseConfig  `yaml:"expertise"`
	Risk       RiskConfig       `yaml:"risk"`
	History    HistoryConfig    `yaml:"history"`
}

// GovernanceConfig mirrors pkg/governance.Config, in YAML-friendly shape.
type GovernanceConfig struct {
	Layers          []LayerConfig `yaml:"layers"`
	Rules           []RuleConfig  `yaml:"rules"`
	Strict          bool          `yaml:"strict"`
	ExcludePatterns []string      `yaml:"exclude_patterns"`
}

// LayerConfig mirrors pkg/governance.Layer.
type LayerConfig struct {
	Name                string   `yaml:"name"`
	Patterns            []string `yaml:"patterns"`
	AllowedDependencies []string `yaml:"allowed_dependencies"`
}

// RuleConfig mirrors pkg/governance.Rule. Action must be one of ALLOW,
// WARN, BLOCK.
type RuleConfig struct {
	FromLayer string `yaml:"from_layer"`
	ToLayer   string `yaml:"to_layer"`
	Action    string `yaml:"action"`
	Message   string `yaml:"message"`
}

// ExpertiseConfig mirrors pkg/gitanalysis.ExpertiseWeights plus the
// aggregation thresholds that classify modules into risk areas and
// knowledge gaps.
type ExpertiseConfig struct {
	CommitFrequency         *float64 `yaml:"commit_frequency"`
	LinesChanged            *float64 `yaml:"lines_changed"`
	RefactorDepth           *float64 `yaml:"refactor_depth"`
	ArchitecturalChanges    *float64 `yaml:"architectural_changes"`
	BugFixes                *float64 `yaml:"bug_fixes"`
	Recency                 *float64 `yaml:"recency"`
	CodeReviewParticipation *float64 `yaml:"code_review_participation"`
	RecencyHalfLifeDays     *float64 `yaml:"recency_half_life_days"`

	ExpertThreshold   *float64 `yaml:"expert_threshold"`
	WarningThreshold  *int     `yaml:"warning_threshold"`
	KnowledgeGapScore *float64 `yaml:"knowledge_gap_score"`

	MinExpertiseCommits *int `yaml:"min_expertise_commits"`

	// ClassificationKeywords overrides pkg/gitanalysis's built-in commit
	// message keyword lists, keyed by commit type name (refactor,
	// bug_fix, test, architectural, feature). An omitted type keeps its
	// built-in list.
	ClassificationKeywords map[string][]string `yaml:"classification_keywords"`
}

// RiskConfig mirrors pkg/impact.RiskWeights.
type RiskConfig struct {
	Complexity      *float64 `yaml:"complexity"`
	Centrality      *float64 `yaml:"centrality"`
	TestCoverage    *float64 `yaml:"test_coverage"`
	Dependency      *float64 `yaml:"dependency"`
	ChangeFrequency *float64 `yaml:"change_frequency"`
	BusFactor       *float64 `yaml:"bus_factor"`
}

// HistoryConfig controls the git history scan window.
type HistoryConfig struct {
	ScanWindowCommits int `yaml:"scan_window_commits"`
	RecencyWindowDays int `yaml:"recency_window_days"`
}

// Load reads and parses a YAML config file at path, then validates it.
// A missing file is not an error: Default() is returned instead, since a
// project without a codeintel.yaml runs entirely on defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.NewConfigError(
			fmt.Sprintf("Cannot read %s", path),
			err.Error(),
			"Check the file exists and is readable",
			err,
		)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError(
			fmt.Sprintf("Cannot parse %s", path),
			err.Error(),
			"Check the YAML syntax against the documented config fields",
			err,
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config carrying every package default untouched.
func Default() *Config {
	return &Config{
		Language: "go",
		Governance: GovernanceConfig{
			ExcludePatterns: governance.DefaultExcludePatterns(),
		},
		History: HistoryConfig{
			ScanWindowCommits: gitanalysis.DefaultScanWindow,
			RecencyWindowDays: int(gitanalysis.DefaultRecencyWindow.Hours() / 24),
		},
	}
}

// Validate checks cross-field invariants that yaml.Unmarshal cannot
// enforce on its own: a known Language, known rule Actions, expertise
// weights that still sum to 1.0, and a non-negative warning threshold.
// Risk weights are not checked.
// Validate never mutates c; it only reports.
func (c *Config) Validate() error {
	if c.Language != "" && c.Language != "go" {
		return errors.NewConfigError(
			fmt.Sprintf("Unsupported language %q", c.Language),
			"Only the Go AST binding is implemented",
			`Set language: "go" or remove the field to use the default`,
			nil,
		)
	}

	for _, r := range c.Governance.Rules {
		switch governance.Action(r.Action) {
		case governance.ActionAllow, governance.ActionWarn, governance.ActionBlock:
		default:
			return errors.NewConfigError(
				fmt.Sprintf("Governance rule %s -> %s has unknown action %q", r.FromLayer, r.ToLayer, r.Action),
				"action must be one of ALLOW, WARN, BLOCK",
				"Fix the action field for this rule in your governance config",
				nil,
			)
		}
	}

	weights := c.ExpertiseWeights()
	if !weights.Validate() {
		return errors.NewConfigError(
			"Expertise weights do not sum to 1.0",
			fmt.Sprintf("commit_frequency=%.3f lines_changed=%.3f refactor_depth=%.3f architectural_changes=%.3f bug_fixes=%.3f recency=%.3f code_review_participation=%.3f",
				weights.CommitFrequency, weights.LinesChanged, weights.RefactorDepth,
				weights.ArchitecturalChanges, weights.BugFixes, weights.Recency, weights.CodeReviewParticipation),
			"Adjust the expertise weight overrides in your config so they sum to 1.0 within 1e-3",
			nil,
		)
	}

	if c.Expertise.WarningThreshold != nil && *c.Expertise.WarningThreshold < 0 {
		return errors.NewConfigError(
			"expertise.warning_threshold must be >= 0",
			"A negative bus-factor threshold can never flag a risk area",
			"Set expertise.warning_threshold to 0 or a positive integer",
			nil,
		)
	}

	return nil
}

// AsGovernanceConfig materializes pkg/governance.Config. Only
// ExcludePatterns is defaulted when left empty; layers and rules are
// copied as configured.
func (c *Config) AsGovernanceConfig() governance.Config {
	layers := make([]governance.Layer, len(c.Governance.Layers))
	for i, l := range c.Governance.Layers {
		layers[i] = governance.Layer{Name: l.Name, Patterns: l.Patterns, AllowedDependencies: l.AllowedDependencies}
	}
	rules := make([]governance.Rule, len(c.Governance.Rules))
	for i, r := range c.Governance.Rules {
		rules[i] = governance.Rule{FromLayer: r.FromLayer, ToLayer: r.ToLayer, Action: governance.Action(r.Action), Message: r.Message}
	}
	excludes := c.Governance.ExcludePatterns
	if len(excludes) == 0 {
		excludes = governance.DefaultExcludePatterns()
	}
	return governance.Config{Layers: layers, Rules: rules, Strict: c.Governance.Strict, ExcludePatterns: excludes}
}

// ExpertiseWeights materializes pkg/gitanalysis.ExpertiseWeights, starting
// from DefaultExpertiseWeights and overriding only the fields the config
// set explicitly.
func (c *Config) ExpertiseWeights() gitanalysis.ExpertiseWeights {
	w := gitanalysis.DefaultExpertiseWeights()
	e := c.Expertise
	if e.CommitFrequency != nil {
		w.CommitFrequency = *e.CommitFrequency
	}
	if e.LinesChanged != nil {
		w.LinesChanged = *e.LinesChanged
	}
	if e.RefactorDepth != nil {
		w.RefactorDepth = *e.RefactorDepth
	}
	if e.ArchitecturalChanges != nil {
		w.ArchitecturalChanges = *e.ArchitecturalChanges
	}
	if e.BugFixes != nil {
		w.BugFixes = *e.BugFixes
	}
	if e.Recency != nil {
		w.Recency = *e.Recency
	}
	if e.CodeReviewParticipation != nil {
		w.CodeReviewParticipation = *e.CodeReviewParticipation
	}
	if e.RecencyHalfLifeDays != nil {
		w.RecencyHalfLifeDays = *e.RecencyHalfLifeDays
	}
	return w
}

// AggregationThresholds materializes pkg/gitanalysis.AggregationThresholds.
func (c *Config) AggregationThresholds() gitanalysis.AggregationThresholds {
	t := gitanalysis.DefaultAggregationThresholds()
	e := c.Expertise
	if e.ExpertThreshold != nil {
		t.ExpertThreshold = *e.ExpertThreshold
	}
	if e.WarningThreshold != nil {
		t.WarningThreshold = *e.WarningThreshold
	}
	if e.KnowledgeGapScore != nil {
		t.KnowledgeGapScore = *e.KnowledgeGapScore
	}
	return t
}

// MinExpertiseCommits returns the configured minimum-expertise commit
// count, defaulting to 3. It scales the commit part of an expertise
// score's confidence; developers with fewer commits are still scored.
func (c *Config) MinExpertiseCommits() int {
	if c.Expertise.MinExpertiseCommits != nil {
		return *c.Expertise.MinExpertiseCommits
	}
	return 3
}

// ClassificationKeywords materializes pkg/gitanalysis.ClassificationKeywords,
// starting from the built-in lists and overriding only the commit types
// the config names explicitly.
func (c *Config) ClassificationKeywords() gitanalysis.ClassificationKeywords {
	kw := gitanalysis.DefaultClassificationKeywords()
	for name, words := range c.Expertise.ClassificationKeywords {
		kw[gitanalysis.CommitType(name)] = words
	}
	return kw
}

// RiskWeights materializes pkg/impact.RiskWeights, starting from
// DefaultRiskWeights and overriding only the fields the config set
// explicitly.
func (c *Config) RiskWeights() impact.RiskWeights {
	w := impact.DefaultRiskWeights()
	r := c.Risk
	if r.Complexity != nil {
		w.Complexity = *r.Complexity
	}
	if r.Centrality != nil {
		w.Centrality = *r.Centrality
	}
	if r.TestCoverage != nil {
		w.TestCoverage = *r.TestCoverage
	}
	if r.Dependency != nil {
		w.Dependency = *r.Dependency
	}
	if r.ChangeFrequency != nil {
		w.ChangeFrequency = *r.ChangeFrequency
	}
	if r.BusFactor != nil {
		w.BusFactor = *r.BusFactor
	}
	return w
}
