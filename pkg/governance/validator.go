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

package governance

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/codeintel/pkg/model"
)

// Violation is one boundary-rule breach (WARN or BLOCK) found during a
// validator walk.
type Violation struct {
	File      string
	Import    string
	FromLayer string
	ToLayer   string
	Action    Action
	Message   string
}

// FileValidationResult is one file's worth of import checks (§4.H),
// shaped after internal/contract.ValidationResult's {OK, Message} pattern
// generalised to carry every violation found, not just the first.
type FileValidationResult struct {
	File       string
	OK         bool
	Violations []Violation
}

// RepositoryValidationResult aggregates every file's result plus totals.
type RepositoryValidationResult struct {
	Files           []FileValidationResult
	TotalFiles      int
	TotalImports    int
	TotalViolations int
	TotalWarnings   int
}

// Config bundles everything a validator run needs.
type Config struct {
	Layers           []Layer
	Rules            []Rule
	Strict           bool
	ExcludePatterns  []string // glob patterns against the normalised path
}

// DefaultExcludePatterns mirror the cache/vcs/virtualenv exclusions §4.H
// calls out explicitly. Test-file naming is excluded separately by
// isGoTestFile, since filepath.Match's glob never crosses a path
// separator and so cannot express "any *_test.go regardless of depth" as
// a single pattern.
func DefaultExcludePatterns() []string {
	return []string{
		".git", "node_modules", "__pycache__", ".venv", "venv", "vendor",
	}
}

// excluded reports whether any path segment matches an exclude pattern, or
// the file is a Go test file.
func excluded(path string, patterns []string) bool {
	if isGoTestFile(path) {
		return true
	}
	norm := filepath.ToSlash(path)
	for _, segment := range strings.Split(norm, "/") {
		for _, p := range patterns {
			if ok, _ := filepath.Match(p, segment); ok {
				return true
			}
		}
	}
	return false
}

// ValidateFile checks one file's imports against the layer/rule
// configuration. importedModuleName is the Go binding's already-resolved
// package-relative layer path for each import — relative-import resolution
// is always a no-op for Go (§4.H Go binding), so the caller (the pipeline's
// module adapter) has nothing to resolve before calling this.
func ValidateFile(cfg Config, cl *Classifier, file string, imports []model.ImportEntity) FileValidationResult {
	result := FileValidationResult{File: file, OK: true}
	fromLayer := cl.Classify(file)

	for _, imp := range imports {
		toLayer := cl.Classify(imp.Module)
		action, msg := Evaluate(cfg.Rules, cfg.Layers, cfg.Strict, fromLayer, toLayer)
		if action == ActionAllow {
			continue
		}
		result.OK = result.OK && action != ActionBlock
		result.Violations = append(result.Violations, Violation{
			File: file, Import: imp.Module, FromLayer: fromLayer, ToLayer: toLayer,
			Action: action, Message: msg,
		})
	}
	return result
}

// ValidateRepository runs ValidateFile over every (file, imports) pair not
// excluded by cfg.ExcludePatterns, then aggregates totals.
func ValidateRepository(cfg Config, cl *Classifier, importsByFile map[string][]model.ImportEntity) RepositoryValidationResult {
	var rep RepositoryValidationResult

	for file, imports := range importsByFile {
		if excluded(file, cfg.ExcludePatterns) {
			continue
		}
		rep.TotalFiles++
		rep.TotalImports += len(imports)

		fr := ValidateFile(cfg, cl, file, imports)
		rep.Files = append(rep.Files, fr)
		for _, v := range fr.Violations {
			if v.Action == ActionBlock {
				rep.TotalViolations++
			} else if v.Action == ActionWarn {
				rep.TotalWarnings++
			}
		}
	}
	return rep
}

// isGoTestFile reports whether path is a Go test file, used by validator
// callers that want to exclude test-naming from the walk without relying
// purely on the glob set (Go's `_test.go` suffix isn't expressible as a
// single-segment glob when the rest of the exclude set is POSIX-style).
func isGoTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.go")
}
