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

package gitanalysis

import "strings"

// CommitType is the at-most-one classification tag applied to a commit.
type CommitType string

const (
	CommitArchitectural CommitType = "architectural"
	CommitRefactor      CommitType = "refactor"
	CommitBugFix        CommitType = "bug_fix"
	CommitTest          CommitType = "test"
	CommitDocumentation CommitType = "documentation"
	CommitFeature       CommitType = "feature"
	CommitUnknown       CommitType = "unknown"
)

// classificationOrder is the fixed priority order the spec requires: a
// commit message matching keywords for more than one type is tagged with
// whichever type comes first in this list.
var classificationOrder = []CommitType{
	CommitArchitectural,
	CommitRefactor,
	CommitBugFix,
	CommitTest,
	CommitDocumentation,
	CommitFeature,
}

// ClassificationKeywords maps each CommitType to the keyword list used to
// match commit messages. Configuration, not a fixed constant — callers may
// substitute their own lists by passing them to NewClassifier.
type ClassificationKeywords map[CommitType][]string

// DefaultClassificationKeywords returns the built-in keyword lists.
func DefaultClassificationKeywords() ClassificationKeywords {
	return ClassificationKeywords{
		CommitArchitectural: {"architecture", "restructure", "redesign", "migrat", "breaking change"},
		CommitRefactor:      {"refactor", "cleanup", "clean up", "simplify", "rename", "extract"},
		CommitBugFix:        {"fix", "bug", "hotfix", "patch", "resolve"},
		CommitTest:          {"test", "spec", "coverage"},
		CommitDocumentation: {"docs", "documentation", "readme", "comment"},
		CommitFeature:       {"feat", "feature", "add", "implement", "support"},
	}
}

// Classifier tags commit messages with a CommitType.
type Classifier struct {
	keywords ClassificationKeywords
}

// NewClassifier builds a Classifier from the given keyword configuration.
// A nil/empty map falls back to DefaultClassificationKeywords.
func NewClassifier(keywords ClassificationKeywords) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultClassificationKeywords()
	}
	return &Classifier{keywords: keywords}
}

// Classify tags a commit message with the highest-priority matching type,
// or CommitUnknown if nothing matches.
func (c *Classifier) Classify(message string) CommitType {
	lower := strings.ToLower(message)
	for _, t := range classificationOrder {
		for _, kw := range c.keywords[t] {
			if strings.Contains(lower, kw) {
				return t
			}
		}
	}
	return CommitUnknown
}
