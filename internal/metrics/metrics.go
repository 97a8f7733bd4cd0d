// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus instrumentation for the six pipeline
// stages (SPEC_FULL.md §5): file counts, entity counts, extracted edges,
// and per-stage durations.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metricsCodeintel struct {
	once sync.Once

	// scan_repository
	filesScanned prometheus.Counter
	filesSkipped prometheus.Counter

	// build_registry
	parseErrors      prometheus.Counter
	functionsIndexed prometheus.Counter
	classesIndexed   prometheus.Counter

	// extract_relationships
	relationshipsExtracted prometheus.Counter
	edgesDeduplicated      prometheus.Counter

	// calculate_blast_radius
	blastRadiusRuns prometheus.Counter

	// validate_repository
	governanceViolations prometheus.Counter
	governanceWarnings   prometheus.Counter

	// git history scan
	gitCommitsScanned prometheus.Counter

	// Durations
	scanDuration        prometheus.Histogram
	parseDuration       prometheus.Histogram
	extractDuration     prometheus.Histogram
	blastRadiusDuration prometheus.Histogram
	validateDuration    prometheus.Histogram
	historyDuration     prometheus.Histogram
}

var m metricsCodeintel

func (m *metricsCodeintel) init() {
	m.once.Do(func() {
		m.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_files_scanned_total", Help: "Source files discovered by scan_repository"})
		m.filesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_files_skipped_total", Help: "Files skipped by scan_repository (excluded, wrong extension, too large)"})

		m.parseErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_parse_errors_total", Help: "Files that failed to parse during build_registry"})
		m.functionsIndexed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_functions_indexed_total", Help: "Functions and methods added to the entity registry"})
		m.classesIndexed = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_classes_indexed_total", Help: "Classes, structs and interfaces added to the entity registry"})

		m.relationshipsExtracted = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_relationships_extracted_total", Help: "Relationship edges produced by extract_relationships"})
		m.edgesDeduplicated = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_edges_deduplicated_total", Help: "Duplicate edges of the same type between the same pair, discarded"})

		m.blastRadiusRuns = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_blast_radius_runs_total", Help: "calculate_blast_radius invocations"})

		m.governanceViolations = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_governance_violations_total", Help: "Blocked import edges found by validate_repository"})
		m.governanceWarnings = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_governance_warnings_total", Help: "Warned import edges found by validate_repository"})

		m.gitCommitsScanned = prometheus.NewCounter(prometheus.CounterOpts{Name: "codeintel_git_commits_scanned_total", Help: "Commits read by the git history analyzer"})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codeintel_scan_seconds", Help: "Duration of scan_repository", Buckets: buckets})
		m.parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codeintel_build_registry_seconds", Help: "Duration of build_registry", Buckets: buckets})
		m.extractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codeintel_extract_relationships_seconds", Help: "Duration of extract_relationships", Buckets: buckets})
		m.blastRadiusDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codeintel_calculate_blast_radius_seconds", Help: "Duration of a single calculate_blast_radius call", Buckets: buckets})
		m.validateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codeintel_validate_repository_seconds", Help: "Duration of validate_repository", Buckets: buckets})
		m.historyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "codeintel_git_history_scan_seconds", Help: "Duration of the git history scan", Buckets: buckets})

		prometheus.MustRegister(
			m.filesScanned, m.filesSkipped,
			m.parseErrors, m.functionsIndexed, m.classesIndexed,
			m.relationshipsExtracted, m.edgesDeduplicated,
			m.blastRadiusRuns,
			m.governanceViolations, m.governanceWarnings,
			m.gitCommitsScanned,
			m.scanDuration, m.parseDuration, m.extractDuration,
			m.blastRadiusDuration, m.validateDuration, m.historyDuration,
		)
	})
}

// RecordScan records one scan_repository run's file counts and duration.
func RecordScan(scanned, skipped int, d time.Duration) {
	m.init()
	m.filesScanned.Add(float64(scanned))
	m.filesSkipped.Add(float64(skipped))
	m.scanDuration.Observe(d.Seconds())
}

// RecordBuildRegistry records one build_registry run's parse outcome and duration.
func RecordBuildRegistry(functions, classes, parseErrors int, d time.Duration) {
	m.init()
	m.functionsIndexed.Add(float64(functions))
	m.classesIndexed.Add(float64(classes))
	m.parseErrors.Add(float64(parseErrors))
	m.parseDuration.Observe(d.Seconds())
}

// RecordExtractRelationships records one extract_relationships run's edge
// counts and duration. deduped is the number of candidate edges discarded
// by the same-type-same-pair invariant.
func RecordExtractRelationships(extracted, deduped int, d time.Duration) {
	m.init()
	m.relationshipsExtracted.Add(float64(extracted))
	m.edgesDeduplicated.Add(float64(deduped))
	m.extractDuration.Observe(d.Seconds())
}

// RecordBlastRadius records one calculate_blast_radius call's duration.
func RecordBlastRadius(d time.Duration) {
	m.init()
	m.blastRadiusRuns.Inc()
	m.blastRadiusDuration.Observe(d.Seconds())
}

// RecordValidation records one validate_repository run's totals and duration.
func RecordValidation(violations, warnings int, d time.Duration) {
	m.init()
	m.governanceViolations.Add(float64(violations))
	m.governanceWarnings.Add(float64(warnings))
	m.validateDuration.Observe(d.Seconds())
}

// RecordHistoryScan records one git history scan's window size and
// duration. window is the commit count requested from the provider, not
// necessarily the number returned (a shallow repository may have fewer).
func RecordHistoryScan(window int, d time.Duration) {
	m.init()
	m.gitCommitsScanned.Add(float64(window))
	m.historyDuration.Observe(d.Seconds())
}
