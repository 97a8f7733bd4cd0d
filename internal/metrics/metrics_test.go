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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordScan_IncrementsCounters(t *testing.T) {
	m.init()
	before := testutil.ToFloat64(m.filesScanned)

	RecordScan(12, 3, 5*time.Millisecond)

	assert.Equal(t, before+12, testutil.ToFloat64(m.filesScanned))
}

func TestRecordBuildRegistry_IncrementsFunctionAndClassCounters(t *testing.T) {
	m.init()
	beforeFn := testutil.ToFloat64(m.functionsIndexed)
	beforeCls := testutil.ToFloat64(m.classesIndexed)
	beforeErr := testutil.ToFloat64(m.parseErrors)

	RecordBuildRegistry(4, 2, 1, 10*time.Millisecond)

	assert.Equal(t, beforeFn+4, testutil.ToFloat64(m.functionsIndexed))
	assert.Equal(t, beforeCls+2, testutil.ToFloat64(m.classesIndexed))
	assert.Equal(t, beforeErr+1, testutil.ToFloat64(m.parseErrors))
}

func TestRecordExtractRelationships_TracksDedupedEdgesSeparately(t *testing.T) {
	m.init()
	beforeExtracted := testutil.ToFloat64(m.relationshipsExtracted)
	beforeDeduped := testutil.ToFloat64(m.edgesDeduplicated)

	RecordExtractRelationships(7, 2, time.Millisecond)

	assert.Equal(t, beforeExtracted+7, testutil.ToFloat64(m.relationshipsExtracted))
	assert.Equal(t, beforeDeduped+2, testutil.ToFloat64(m.edgesDeduplicated))
}

func TestRecordBlastRadius_IncrementsRunCounter(t *testing.T) {
	m.init()
	before := testutil.ToFloat64(m.blastRadiusRuns)

	RecordBlastRadius(time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(m.blastRadiusRuns))
}

func TestRecordValidation_TracksViolationsAndWarningsSeparately(t *testing.T) {
	m.init()
	beforeV := testutil.ToFloat64(m.governanceViolations)
	beforeW := testutil.ToFloat64(m.governanceWarnings)

	RecordValidation(3, 1, time.Millisecond)

	assert.Equal(t, beforeV+3, testutil.ToFloat64(m.governanceViolations))
	assert.Equal(t, beforeW+1, testutil.ToFloat64(m.governanceWarnings))
}

func TestRecordHistoryScan_IncrementsCommitCounter(t *testing.T) {
	m.init()
	before := testutil.ToFloat64(m.gitCommitsScanned)

	RecordHistoryScan(500, time.Millisecond)

	assert.Equal(t, before+500, testutil.ToFloat64(m.gitCommitsScanned))
}
