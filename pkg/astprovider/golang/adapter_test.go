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

package golang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/astprovider"
)

const sampleSource = `package sample

func Add(a, b int) int {
	if a > b {
		return a + b
	}
	return b
}
`

func TestProvider_ParseProducesFunctionDecl(t *testing.T) {
	p := New()
	assert.Equal(t, "go", p.Language())

	result := p.Parse([]byte(sampleSource))
	require.True(t, result.Success)
	require.NotNil(t, result.Root)
	assert.Equal(t, astprovider.KindSourceFile, result.Root.Kind())

	var found astprovider.Node
	var walk func(n astprovider.Node)
	walk = func(n astprovider.Node) {
		if n == nil {
			return
		}
		if n.Kind() == astprovider.KindFunctionDecl {
			found = n
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(result.Root)

	require.NotNil(t, found)
	nameNode := found.ChildByFieldName("name")
	require.NotNil(t, nameNode)
	assert.Equal(t, "Add", nameNode.Content())
}

func TestProvider_ParseReportsSyntaxErrors(t *testing.T) {
	p := New()
	result := p.Parse([]byte("package sample\nfunc broken( {\n"))
	// tree-sitter recovers a partial tree; success stays true with an error note
	require.NotNil(t, result.Root)
	assert.NotEmpty(t, result.Error)
}
