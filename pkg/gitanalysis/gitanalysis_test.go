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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_PriorityOrderArchitecturalBeatsRefactor(t *testing.T) {
	cl := NewClassifier(nil)
	// matches both "refactor" and "architecture" keywords; architectural
	// must win since it's first in classificationOrder.
	assert.Equal(t, CommitArchitectural, cl.Classify("refactor: architecture overhaul of the storage layer"))
}

func TestClassifier_FallsBackToUnknown(t *testing.T) {
	cl := NewClassifier(nil)
	assert.Equal(t, CommitUnknown, cl.Classify("bump dependency versions"))
}

func TestClassifier_BugFixKeyword(t *testing.T) {
	cl := NewClassifier(nil)
	assert.Equal(t, CommitBugFix, cl.Classify("fix: nil pointer in resolver"))
}

// fakeProvider is a minimal in-memory Provider for history/expertise tests.
type fakeProvider struct {
	recent []Commit
	byFile map[string][]Commit
}

func (f *fakeProvider) CommitsTouchingFile(path string, limit int) ([]Commit, error) {
	return f.byFile[path], nil
}
func (f *fakeProvider) FileBlameByLine(path string) ([]BlameLine, error)    { return nil, nil }
func (f *fakeProvider) CommitDiffStats(hash string) (DiffStats, error)      { return DiffStats{}, nil }
func (f *fakeProvider) AllTrackedFiles() ([]string, error)                 { return nil, nil }
func (f *fakeProvider) FileContentsAt(path, commit string) ([]byte, error) { return nil, nil }
func (f *fakeProvider) AllContributors(path string) ([]string, error)      { return nil, nil }
func (f *fakeProvider) RecentCommits(limit int) ([]Commit, error)          { return f.recent, nil }

func mkCommit(hash, author, message string, daysAgo int, path string, lines int) Commit {
	return Commit{
		Hash:      hash,
		Author:    author,
		Message:   message,
		Timestamp: time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour),
		Files:     []FileChange{{Path: path, Additions: lines, Deletions: 0}},
	}
}

func TestAnalyzeHistory_ChangeFrequencyAndBusFactorRisk(t *testing.T) {
	provider := &fakeProvider{
		recent: []Commit{
			mkCommit("c1", "alice@example.com", "fix: bug", 1, "pkg/hot.go", 10),
			mkCommit("c2", "alice@example.com", "fix: another bug", 2, "pkg/hot.go", 5),
			mkCommit("c3", "bob@example.com", "feat: add thing", 100, "pkg/cold.go", 20),
		},
	}
	h, err := AnalyzeHistory(provider, 0, 0)
	assert.NoError(t, err)

	// pkg/hot.go: 2 touches (the window max), both recent, single author.
	assert.InDelta(t, 1.0, h.ChangeFrequencyRisk("pkg/hot.go"), 1e-9) // 0.6*(2/2) + 0.4*(2/2)
	assert.InDelta(t, 1.0, h.BusFactorRisk("pkg/hot.go"), 1e-9)       // single author

	// pkg/cold.go: 1 touch, outside the 90-day recency window.
	assert.InDelta(t, 0.3, h.ChangeFrequencyRisk("pkg/cold.go"), 1e-9) // 0.6*(1/2) + 0.4*0

	// unknown file gets the neutral defaults.
	assert.Equal(t, neutralChangeFrequencyRisk, h.ChangeFrequencyRisk("pkg/nope.go"))
	assert.Equal(t, neutralBusFactorRisk, h.BusFactorRisk("pkg/nope.go"))
}

func TestExpertiseWeights_DefaultsSumToOne(t *testing.T) {
	assert.True(t, DefaultExpertiseWeights().Validate())
}

func TestExpertiseWeights_ValidateCatchesBadSum(t *testing.T) {
	bad := DefaultExpertiseWeights()
	bad.CommitFrequency = 0.9
	assert.False(t, bad.Validate())
}

func TestScoreExpertise_SoleAuthorScoresHighOnFrequencyAndRecency(t *testing.T) {
	cl := NewClassifier(nil)
	commits := []Commit{
		{Hash: "c1", Author: "alice@example.com", Message: "refactor: extract helper",
			Timestamp: time.Now(), Files: []FileChange{{Path: "pkg/x.go", Additions: 30, Deletions: 10}}},
		{Hash: "c2", Author: "alice@example.com", Message: "fix: edge case",
			Timestamp: time.Now().Add(-2 * 24 * time.Hour), Files: []FileChange{{Path: "pkg/x.go", Additions: 5, Deletions: 1}}},
	}

	score := ScoreExpertise(commits, cl, "pkg/x.go", "alice@example.com", DefaultExpertiseWeights(), nil, 2)

	assert.Equal(t, 1.0, score.Factors.CommitFrequency) // sole author: 2/2 commits
	assert.Greater(t, score.Factors.Recency, 0.9)        // touched within the last couple days
	assert.Greater(t, score.Overall, 0.0)
	assert.NotEmpty(t, score.Reasoning)
}

func TestScoreExpertise_UnknownDeveloperScoresZero(t *testing.T) {
	cl := NewClassifier(nil)
	commits := []Commit{
		{Hash: "c1", Author: "alice@example.com", Message: "feat: add widget",
			Timestamp: time.Now(), Files: []FileChange{{Path: "pkg/x.go", Additions: 10, Deletions: 0}}},
	}
	score := ScoreExpertise(commits, cl, "pkg/x.go", "carol@example.com", DefaultExpertiseWeights(), nil, 2)
	assert.Equal(t, 0.0, score.Overall)
	assert.Equal(t, "limited signal of expertise on this file", score.Reasoning)
}

func TestModuleExpertsAndBusFactor(t *testing.T) {
	scores := []ExpertiseScore{
		{Developer: "alice@example.com", File: "pkg/svc/a.go", Overall: 0.8},
		{Developer: "alice@example.com", File: "pkg/svc/b.go", Overall: 0.6},
		{Developer: "bob@example.com", File: "pkg/svc/a.go", Overall: 0.2},
	}

	experts := ModuleExperts(scores, "pkg/svc")
	assert.Equal(t, "alice@example.com", experts[0].Developer)
	assert.InDelta(t, 0.7, experts[0].Overall, 1e-9)

	assert.Equal(t, 1, BusFactor(scores, "pkg/svc", 0.6))
}

func TestKnowledgeGapsAndHeatmap(t *testing.T) {
	scores := []ExpertiseScore{
		// pkg/risky: nobody clears the expert threshold -> bus factor 0.
		{Developer: "alice@example.com", File: "pkg/risky/a.go", Overall: 0.1},
		{Developer: "bob@example.com", File: "pkg/risky/a.go", Overall: 0.2},
		// pkg/safe: two independent experts -> bus factor 2.
		{Developer: "alice@example.com", File: "pkg/safe/b.go", Overall: 0.9},
		{Developer: "bob@example.com", File: "pkg/safe/b.go", Overall: 0.7},
	}

	gaps := KnowledgeGaps(scores, 0.3)
	assert.Contains(t, gaps, "pkg/risky/a.go")
	assert.NotContains(t, gaps, "pkg/safe/b.go")

	hm := BuildHeatmap(scores, DefaultAggregationThresholds())
	assert.True(t, hm.RiskAreas["pkg/risky"])
	assert.False(t, hm.RiskAreas["pkg/safe"])
	assert.True(t, hm.KnowledgeGaps["pkg/risky/a.go"])
}
