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

// AggregationThresholds are the three configurable cutoffs the aggregation
// functions below read (§6 configuration).
type AggregationThresholds struct {
	ExpertThreshold   float64 // score at/above which a developer is an "expert" on a file
	WarningThreshold  int     // bus factor at/below which a module is a risk area
	KnowledgeGapScore float64 // max score below which a file is a knowledge gap (default 0.3)
}

// DefaultAggregationThresholds returns the spec's defaults.
func DefaultAggregationThresholds() AggregationThresholds {
	return AggregationThresholds{ExpertThreshold: 0.6, WarningThreshold: 1, KnowledgeGapScore: 0.3}
}

// ModuleExperts averages per-file scores per developer across files whose
// path begins with modulePath, returning developers ordered by descending
// average score.
func ModuleExperts(scores []ExpertiseScore, modulePath string) []ExpertiseScore {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, s := range scores {
		if !strings.HasPrefix(s.File, modulePath) {
			continue
		}
		sums[s.Developer] += s.Overall
		counts[s.Developer]++
	}

	out := make([]ExpertiseScore, 0, len(sums))
	for dev, sum := range sums {
		out = append(out, ExpertiseScore{
			Developer: dev,
			File:      modulePath,
			Overall:   sum / float64(counts[dev]),
		})
	}
	sortByOverallDesc(out)
	return out
}

func sortByOverallDesc(scores []ExpertiseScore) {
	for i := 1; i < len(scores); i++ {
		for j := i; j > 0 && scores[j].Overall > scores[j-1].Overall; j-- {
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}

// BusFactor counts the developers with expert-level (score >= threshold)
// expertise on at least one file within modulePath.
func BusFactor(scores []ExpertiseScore, modulePath string, expertThreshold float64) int {
	experts := map[string]bool{}
	for _, s := range scores {
		if strings.HasPrefix(s.File, modulePath) && s.Overall >= expertThreshold {
			experts[s.Developer] = true
		}
	}
	return len(experts)
}

// KnowledgeGaps returns the files whose maximum score across all
// developers falls below threshold.
func KnowledgeGaps(scores []ExpertiseScore, threshold float64) []string {
	maxByFile := map[string]float64{}
	seen := map[string]bool{}
	for _, s := range scores {
		seen[s.File] = true
		if s.Overall > maxByFile[s.File] {
			maxByFile[s.File] = s.Overall
		}
	}
	var gaps []string
	for file := range seen {
		if maxByFile[file] < threshold {
			gaps = append(gaps, file)
		}
	}
	return gaps
}

// Heatmap is the directory -> module-expertise view plus the risk/gap
// sets surfaced alongside it.
type Heatmap struct {
	ModuleExpertise map[string]float64 // directory -> average expertise of its top contributor
	RiskAreas       map[string]bool    // modules with bus factor <= warning threshold
	KnowledgeGaps   map[string]bool    // files below the knowledge-gap threshold
}

// BuildHeatmap groups scores by directory (the file path up to its last
// "/") and computes the module-expertise, risk-area and knowledge-gap
// views in one pass.
func BuildHeatmap(scores []ExpertiseScore, thresholds AggregationThresholds) Heatmap {
	byModule := map[string][]ExpertiseScore{}
	for _, s := range scores {
		mod := moduleOf(s.File)
		byModule[mod] = append(byModule[mod], s)
	}

	hm := Heatmap{
		ModuleExpertise: map[string]float64{},
		RiskAreas:       map[string]bool{},
		KnowledgeGaps:   map[string]bool{},
	}

	for mod, modScores := range byModule {
		sums := map[string]float64{}
		counts := map[string]int{}
		for _, s := range modScores {
			sums[s.Developer] += s.Overall
			counts[s.Developer]++
		}
		best := 0.0
		for dev, sum := range sums {
			if avg := sum / float64(counts[dev]); avg > best {
				best = avg
			}
		}
		hm.ModuleExpertise[mod] = best

		if BusFactor(scores, mod, thresholds.ExpertThreshold) <= thresholds.WarningThreshold {
			hm.RiskAreas[mod] = true
		}
	}

	for _, file := range KnowledgeGaps(scores, thresholds.KnowledgeGapScore) {
		hm.KnowledgeGaps[file] = true
	}

	return hm
}

func moduleOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}
