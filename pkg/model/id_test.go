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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueID_FunctionShape(t *testing.T) {
	id := UniqueID("pkg/service.go", "", "Run")
	assert.Equal(t, "pkg/service.go:Run", id)
}

func TestUniqueID_MethodShape(t *testing.T) {
	id := UniqueID("pkg/service.go", "Service", "Run")
	assert.Equal(t, "pkg/service.go:Service.Run", id)
}

func TestUniqueID_Stable(t *testing.T) {
	a := UniqueID("pkg/service.go", "Service", "Run")
	b := UniqueID("pkg/service.go", "Service", "Run")
	assert.Equal(t, a, b)
}

func TestUniqueID_NormalizesPath(t *testing.T) {
	a := UniqueID("./pkg/service.go", "", "Run")
	b := UniqueID("pkg/service.go", "", "Run")
	assert.Equal(t, a, b)
}

func TestUniqueID_HashesPathologicallyLongIDs(t *testing.T) {
	longName := strings.Repeat("x", 400)
	id := UniqueID("pkg/service.go", "", longName)
	require.True(t, strings.HasPrefix(id, "pkg/service.go:#"))
	assert.Less(t, len(id), 100)
}

func TestFileID_RoundTripsNormalPaths(t *testing.T) {
	assert.Equal(t, "pkg/service.go", FileID("./pkg/service.go"))
}
