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

// Package model defines the code-intelligence data model: the entity and
// relationship types produced by the parsing pipeline and consumed by the
// graph store and every analysis on top of it.
//
// All entities share a stable unique id of the form:
//
//	file_path ":" [parent_class "."] name
//
// Entities are created once by the parser and never mutated afterward.
// Relationships are created once by the extractor and never mutated.
package model
