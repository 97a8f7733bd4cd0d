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

package model

// RelationType is the closed set of edge types a Relationship may carry (§3).
type RelationType string

const (
	RelContains     RelationType = "CONTAINS"
	RelDefines      RelationType = "DEFINES"
	RelCalls        RelationType = "CALLS"
	RelInstantiates RelationType = "INSTANTIATES"
	RelInherits     RelationType = "INHERITS"
	RelImplements   RelationType = "IMPLEMENTS"
	RelOverrides    RelationType = "OVERRIDES"
	RelImports      RelationType = "IMPORTS"
	RelImportsFrom  RelationType = "IMPORTS_FROM"
	RelDecorates    RelationType = "DECORATES"
	RelUsesType     RelationType = "USES_TYPE"
	RelReturnsType  RelationType = "RETURNS_TYPE"
	RelReadsGlobal  RelationType = "READS_GLOBAL"
	RelWritesGlobal RelationType = "WRITES_GLOBAL"
	RelRaises       RelationType = "RAISES"
	RelCatches      RelationType = "CATCHES"
)

// ResolutionUnresolved is the metadata.resolution_type value for edges whose
// target could not be statically disambiguated (§3 invariant i, §4.D).
const ResolutionUnresolved = "unresolved"

// UnresolvedWeight is the fixed weight given to unresolved edges.
const UnresolvedWeight = 0.5

// Relationship is a typed, directed, weighted graph edge (§3).
type Relationship struct {
	SourceID string                 `json:"source_id"`
	TargetID string                 `json:"target_id"`
	Type     RelationType           `json:"type"`
	Weight   float64                `json:"weight"`
	Line     int                    `json:"line,omitempty"`
	Context  string                 `json:"context,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// IsUnresolved reports whether this edge's target is an unresolved name
// rather than a registered entity id.
func (r Relationship) IsUnresolved() bool {
	rt, _ := r.Metadata["resolution_type"].(string)
	return rt == ResolutionUnresolved
}

// EdgeKey identifies an edge uniquely for the "no parallel edges of the same
// type between the same pair" invariant (§3 invariant vi).
type EdgeKey struct {
	Source string
	Target string
	Type   RelationType
}

// Key returns this relationship's de-duplication key.
func (r Relationship) Key() EdgeKey {
	return EdgeKey{Source: r.SourceID, Target: r.TargetID, Type: r.Type}
}
