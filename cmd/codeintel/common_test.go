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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/model"
	"github.com/kraklabs/codeintel/pkg/pipeline"
	"github.com/kraklabs/codeintel/pkg/registry"
)

func testParsedRepo(t *testing.T) *pipeline.ParsedRepository {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.AddFunction(model.FunctionEntity{ID: "api/handler.go::Handle", Name: "Handle", File: "api/handler.go"}))
	return &pipeline.ParsedRepository{Registry: reg}
}

func TestResolveTarget_ExactIDMatches(t *testing.T) {
	parsed := testParsedRepo(t)
	assert.Equal(t, "api/handler.go::Handle", resolveTarget(parsed, "api/handler.go::Handle"))
}

func TestResolveTarget_UnqualifiedNameResolves(t *testing.T) {
	parsed := testParsedRepo(t)
	assert.Equal(t, "api/handler.go::Handle", resolveTarget(parsed, "Handle"))
}

func TestResolveTarget_UnknownNameReturnsEmpty(t *testing.T) {
	parsed := testParsedRepo(t)
	assert.Empty(t, resolveTarget(parsed, "DoesNotExist"))
}
