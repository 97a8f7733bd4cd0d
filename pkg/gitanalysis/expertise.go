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
	"fmt"
	"math"
	"sort"
)

// ExpertiseWeights are the seven factor weights, required to sum to
// 1.0±1e-3 (violations are reported by Validate, never fatal).
type ExpertiseWeights struct {
	CommitFrequency          float64
	LinesChanged             float64
	RefactorDepth            float64
	ArchitecturalChanges     float64
	BugFixes                 float64
	Recency                  float64
	CodeReviewParticipation  float64
	RecencyHalfLifeDays      float64
}

// DefaultExpertiseWeights returns the spec's default weights and half-life.
func DefaultExpertiseWeights() ExpertiseWeights {
	return ExpertiseWeights{
		CommitFrequency:         0.15,
		LinesChanged:            0.10,
		RefactorDepth:           0.25,
		ArchitecturalChanges:    0.20,
		BugFixes:                0.15,
		Recency:                 0.10,
		CodeReviewParticipation: 0.05,
		RecencyHalfLifeDays:     180,
	}
}

// Validate reports whether the seven weights sum to 1.0 within 1e-3. The
// caller decides what to do with a false result; a bad config never
// aborts scoring.
func (w ExpertiseWeights) Validate() bool {
	sum := w.CommitFrequency + w.LinesChanged + w.RefactorDepth +
		w.ArchitecturalChanges + w.BugFixes + w.Recency + w.CodeReviewParticipation
	return math.Abs(sum-1.0) <= 1e-3
}

// ExpertiseFactors are the seven normalised [0,1] factor values.
type ExpertiseFactors struct {
	CommitFrequency         float64
	LinesChanged            float64
	RefactorDepth           float64
	ArchitecturalChanges    float64
	BugFixes                float64
	Recency                 float64
	CodeReviewParticipation float64
}

// ReviewData is an optional port supplying code-review counts; when absent
// (nil passed to ScoreExpertise) code_review_participation falls back to
// 0.5*commit_frequency per the spec.
type ReviewData interface {
	TotalReviews(developer, path string) (int, bool)
}

// ExpertiseScore is one developer's scored expertise on one file.
type ExpertiseScore struct {
	Developer  string
	File       string
	Factors    ExpertiseFactors
	Overall    float64
	Confidence float64
	Reasoning  string
}

// fileCommitStat is one classified commit's contribution to a file's
// scoring inputs: the lines changed within THAT file by THAT commit, and
// its classification.
type fileCommitStat struct {
	author string
	typ    CommitType
	lines  int
	days   float64 // days since this commit, relative to the scoring "as of" time
}

// ScoreExpertise computes developer's seven-factor expertise score on
// path from the commits that touched it (as returned by
// Provider.CommitsTouchingFile), classified by classifier. minExpertise is
// the "minimum commits for expertise" configuration value used by the
// confidence formula's denominator.
func ScoreExpertise(commits []Commit, classifier *Classifier, path, developer string, weights ExpertiseWeights, reviews ReviewData, minExpertise int) ExpertiseScore {
	if minExpertise <= 0 {
		minExpertise = 1
	}

	stats := buildFileCommitStats(commits, classifier, path)

	devStats := filterByAuthor(stats, developer)
	devCommits := len(devStats)
	allCommits := len(stats)

	devLines := sumLines(devStats)
	totalLines := sumLines(stats)

	devRefactors, allRefactors := countType(devStats, CommitRefactor), countType(stats, CommitRefactor)
	devRefactorLines, allRefactorLines := sumLinesOfType(devStats, CommitRefactor), sumLinesOfType(stats, CommitRefactor)
	devArch, allArch := countType(devStats, CommitArchitectural), countType(stats, CommitArchitectural)
	devFixes, allFixes := countType(devStats, CommitBugFix), countType(stats, CommitBugFix)

	f := ExpertiseFactors{
		CommitFrequency: ratio(2, float64(devCommits), float64(allCommits)),
		LinesChanged:    sqrtRatio(devLines, totalLines),
		RefactorDepth:   refactorDepth(devRefactors, allRefactors, devRefactorLines, allRefactorLines),
		ArchitecturalChanges: ratio(1.5, float64(devArch), float64(allArch)),
		BugFixes:        ratio(1, float64(devFixes), float64(allFixes)),
		Recency:         recencyFactor(devStats, weights.RecencyHalfLifeDays),
	}

	if reviews != nil {
		if total, ok := reviews.TotalReviews(developer, path); ok {
			f.CodeReviewParticipation = clamp01(float64(total) / 10)
		} else {
			f.CodeReviewParticipation = 0.5 * f.CommitFrequency
		}
	} else {
		f.CodeReviewParticipation = 0.5 * f.CommitFrequency
	}

	overall := f.CommitFrequency*weights.CommitFrequency +
		f.LinesChanged*weights.LinesChanged +
		f.RefactorDepth*weights.RefactorDepth +
		f.ArchitecturalChanges*weights.ArchitecturalChanges +
		f.BugFixes*weights.BugFixes +
		f.Recency*weights.Recency +
		f.CodeReviewParticipation*weights.CodeReviewParticipation

	daysSinceLast := daysSinceLastCommit(devStats)
	confidence := confidenceScore(devCommits, minExpertise, daysSinceLast, distinctKinds(devStats))

	return ExpertiseScore{
		Developer:  developer,
		File:       path,
		Factors:    f,
		Overall:    clamp01(overall),
		Confidence: clamp01(confidence),
		Reasoning:  reason(f),
	}
}

func buildFileCommitStats(commits []Commit, classifier *Classifier, path string) []fileCommitStat {
	var out []fileCommitStat
	if len(commits) == 0 {
		return out
	}
	newestTime := commits[0].Timestamp
	for _, c := range commits {
		if c.Timestamp.After(newestTime) {
			newestTime = c.Timestamp
		}
	}
	for _, c := range commits {
		lines := 0
		found := false
		for _, fc := range c.Files {
			if fc.Path == path {
				lines += fc.Additions + fc.Deletions
				found = true
			}
		}
		if !found && len(c.Files) == 0 {
			// CommitsTouchingFile already scopes to path; treat the
			// whole commit as touching it when per-file stats weren't
			// populated by the caller.
			found = true
		}
		if !found {
			continue
		}
		out = append(out, fileCommitStat{
			author: c.Author,
			typ:    classifier.Classify(c.Message),
			lines:  lines,
			days:   newestTime.Sub(c.Timestamp).Hours() / 24,
		})
	}
	return out
}

func filterByAuthor(stats []fileCommitStat, author string) []fileCommitStat {
	var out []fileCommitStat
	for _, s := range stats {
		if s.author == author {
			out = append(out, s)
		}
	}
	return out
}

func sumLines(stats []fileCommitStat) int {
	sum := 0
	for _, s := range stats {
		sum += s.lines
	}
	return sum
}

func countType(stats []fileCommitStat, t CommitType) int {
	n := 0
	for _, s := range stats {
		if s.typ == t {
			n++
		}
	}
	return n
}

func sumLinesOfType(stats []fileCommitStat, t CommitType) int {
	sum := 0
	for _, s := range stats {
		if s.typ == t {
			sum += s.lines
		}
	}
	return sum
}

func ratio(scale, dev, all float64) float64 {
	if all == 0 {
		return 0
	}
	return clamp01(scale * dev / all)
}

func sqrtRatio(dev, total int) float64 {
	if total == 0 {
		return 0
	}
	return clamp01(1.5 * math.Sqrt(float64(dev)/float64(total)))
}

func refactorDepth(devRefactors, allRefactors, devRefactorLines, allRefactorLines int) float64 {
	countPart := 0.0
	if allRefactors > 0 {
		countPart = float64(devRefactors) / float64(allRefactors)
	}
	linesPart := 0.0
	if allRefactorLines > 0 {
		linesPart = float64(devRefactorLines) / float64(allRefactorLines)
	}
	return clamp01(0.4*countPart + 0.6*linesPart)
}

func recencyFactor(devStats []fileCommitStat, halfLifeDays float64) float64 {
	if len(devStats) == 0 {
		return 0
	}
	if halfLifeDays <= 0 {
		halfLifeDays = 180
	}
	days := daysSinceLastCommit(devStats)
	return math.Exp(-math.Ln2 * days / halfLifeDays)
}

func daysSinceLastCommit(devStats []fileCommitStat) float64 {
	if len(devStats) == 0 {
		return math.Inf(1)
	}
	min := devStats[0].days
	for _, s := range devStats[1:] {
		if s.days < min {
			min = s.days
		}
	}
	return min
}

func distinctKinds(stats []fileCommitStat) int {
	seen := map[CommitType]bool{}
	for _, s := range stats {
		seen[s.typ] = true
	}
	return len(seen)
}

func confidenceScore(devCommits, minExpertise int, daysSinceLast float64, kinds int) float64 {
	commitPart := 0.5 * clamp01(float64(devCommits)/(3*float64(minExpertise)))
	recencyPart := 0.0
	if !math.IsInf(daysSinceLast, 1) {
		recencyPart = 0.3 * math.Max(0, 1-daysSinceLast/365)
	}
	kindsPart := 0.2 * clamp01(float64(kinds)/4)
	return commitPart + recencyPart + kindsPart
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// phrasebook maps each factor to the reasoning clause used when that
// factor scores above 0.3.
var phrasebook = map[string]string{
	"commit_frequency":           "frequent committer to this file",
	"lines_changed":               "has changed a substantial share of its lines",
	"refactor_depth":              "has driven much of its refactoring",
	"architectural_changes":       "has made architectural changes here",
	"bug_fixes":                   "has fixed bugs in this file",
	"recency":                     "has touched it recently",
	"code_review_participation":   "has reviewed changes to it",
}

type factorScore struct {
	name  string
	value float64
}

// reason generates the reasoning text from the top two factors above 0.3,
// per a fixed phrasebook.
func reason(f ExpertiseFactors) string {
	scores := []factorScore{
		{"commit_frequency", f.CommitFrequency},
		{"lines_changed", f.LinesChanged},
		{"refactor_depth", f.RefactorDepth},
		{"architectural_changes", f.ArchitecturalChanges},
		{"bug_fixes", f.BugFixes},
		{"recency", f.Recency},
		{"code_review_participation", f.CodeReviewParticipation},
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].value > scores[j].value })

	var clauses []string
	for _, s := range scores {
		if s.value <= 0.3 || len(clauses) == 2 {
			continue
		}
		clauses = append(clauses, phrasebook[s.name])
	}
	if len(clauses) == 0 {
		return "limited signal of expertise on this file"
	}
	if len(clauses) == 1 {
		return fmt.Sprintf("%s.", clauses[0])
	}
	return fmt.Sprintf("%s, and %s.", clauses[0], clauses[1])
}
