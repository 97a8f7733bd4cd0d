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

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/astprovider/golang"
	"github.com/kraklabs/codeintel/pkg/langprofile"
	"github.com/kraklabs/codeintel/pkg/model"
)

const sampleSource = `// Package sample demonstrates the parser.
package sample

import (
	"fmt"

	alias "sample/internal/util"
)

// Counter counts things.
type Counter struct {
	value int
	Other // embedded
}

// Greeter can greet.
type Greeter interface {
	Greet(name string) string
}

// NewCounter constructs a Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Increment bumps the counter by one.
func (c *Counter) Increment() int {
	c.value = c.value + 1
	return c.value
}

func helper(a, b int) int {
	if a > b {
		fmt.Println(alias.Name)
		return a
	}
	return b
}
`

func TestParse_ExtractsModuleAndImports(t *testing.T) {
	pf := Parse(golang.New(), langprofile.Go(), "sample.go", []byte(sampleSource))

	require.True(t, pf.ParseSuccess)
	assert.Equal(t, "sample.go", pf.Module.File)
	require.Len(t, pf.Imports, 2)
	assert.Equal(t, "fmt", pf.Imports[0].Module)
	assert.Equal(t, "sample/internal/util", pf.Imports[1].Module)
	assert.Equal(t, "alias", pf.Imports[1].Alias)
}

func TestParse_ExtractsFunctionsAndMethods(t *testing.T) {
	pf := Parse(golang.New(), langprofile.Go(), "sample.go", []byte(sampleSource))

	var names []string
	for _, f := range pf.Functions {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "NewCounter")
	assert.Contains(t, names, "Increment")
	assert.Contains(t, names, "helper")

	for _, f := range pf.Functions {
		if f.Name == "Increment" {
			assert.True(t, f.Method)
			assert.Equal(t, "c", f.ReceiverName)
			assert.Equal(t, "Counter", f.ReceiverType)
			assert.Equal(t, "Counter", f.ParentClass)
		}
		if f.Name == "helper" {
			assert.Equal(t, 2, f.Cyclomatic)
			assert.Contains(t, f.Calls, "fmt.Println")
		}
	}
}

func TestParse_ExtractsClassesWithBasesAndMethods(t *testing.T) {
	pf := Parse(golang.New(), langprofile.Go(), "sample.go", []byte(sampleSource))

	var counterClass, greeterClass *model.ClassEntity
	for i := range pf.Classes {
		if pf.Classes[i].Name == "Counter" {
			counterClass = &pf.Classes[i]
		}
		if pf.Classes[i].Name == "Greeter" {
			greeterClass = &pf.Classes[i]
		}
	}

	require.NotNil(t, counterClass)
	assert.Contains(t, counterClass.Bases, "Other")
	assert.Contains(t, counterClass.MethodNames, "Increment")

	require.NotNil(t, greeterClass)
	assert.True(t, greeterClass.Protocol)
}

func TestParse_SyntaxErrorStillReturnsPartialResult(t *testing.T) {
	pf := Parse(golang.New(), langprofile.Go(), "broken.go", []byte("package broken\nfunc f( {\n"))
	assert.NotEmpty(t, pf.ParseError)
}
