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

package complexity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/astprovider"
	"github.com/kraklabs/codeintel/pkg/astprovider/golang"
	"github.com/kraklabs/codeintel/pkg/langprofile"
)

func bodyOf(t *testing.T, source string, funcName string) (astprovider.Node, []string, string) {
	t.Helper()
	p := golang.New()
	result := p.Parse([]byte(source))
	require.True(t, result.Success)

	var decl astprovider.Node
	var walk func(n astprovider.Node)
	walk = func(n astprovider.Node) {
		if n == nil || decl != nil {
			return
		}
		if n.Kind() == astprovider.KindFunctionDecl || n.Kind() == astprovider.KindMethodDecl {
			if name := n.ChildByFieldName("name"); name != nil && name.Content() == funcName {
				decl = n
				return
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(result.Root)
	require.NotNil(t, decl, "function %s not found", funcName)

	receiver := ""
	if recv := decl.ChildByFieldName("receiver"); recv != nil {
		for _, c := range recv.Children() {
			if c.Kind() == astprovider.KindIdentifier {
				receiver = c.Content()
				break
			}
		}
	}

	var params []string
	if paramsNode := decl.ChildByFieldName("parameters"); paramsNode != nil {
		for _, field := range paramsNode.Children() {
			if name := field.ChildByFieldName("name"); name != nil {
				params = append(params, name.Content())
			}
		}
	}

	return decl.ChildByFieldName("body"), params, receiver
}

func TestAnalyze_RecursiveFibonacci(t *testing.T) {
	// Literal translation of the spec's scenario 1: a two-branch recursive
	// function. Expected: cyclomatic=2 (base 1 + one if), cognitive=2
	// (1 for the if at depth 0, plus exactly one recursion penalty even
	// though the function calls itself twice).
	const source = `package sample

func fib(n int) int {
	if n <= 1 {
		return n
	}
	return fib(n-1) + fib(n-2)
}
`
	body, params, receiver := bodyOf(t, source, "fib")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "fib",
		Profile:      langprofile.Go(),
	})

	assert.Equal(t, 2, result.Cyclomatic)
	assert.Equal(t, 2, result.Cognitive)
	assert.False(t, result.Generator)
}

func TestAnalyze_BooleanCombinatorsIncrementCyclomatic(t *testing.T) {
	const source = `package sample

func check(a, b, c bool) bool {
	if a && b || c {
		return true
	}
	return false
}
`
	body, params, receiver := bodyOf(t, source, "check")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "check",
		Profile:      langprofile.Go(),
	})

	// base 1 + if + && + || = 4
	assert.Equal(t, 4, result.Cyclomatic)
}

func TestAnalyze_ElseIfChainSameDepth(t *testing.T) {
	const source = `package sample

func classify(n int) string {
	if n < 0 {
		return "neg"
	} else if n == 0 {
		return "zero"
	} else {
		return "pos"
	}
}
`
	body, params, receiver := bodyOf(t, source, "classify")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "classify",
		Profile:      langprofile.Go(),
	})

	// base 1 + if + else-if = 3 cyclomatic
	assert.Equal(t, 3, result.Cyclomatic)
	// if (1+0) + else-if (1+0) + else (1+0) = 3 cognitive
	assert.Equal(t, 3, result.Cognitive)
}

func TestAnalyze_ForLoopNestingIncreasesDepth(t *testing.T) {
	const source = `package sample

func sumPositive(nums []int) int {
	total := 0
	for _, n := range nums {
		if n > 0 {
			total += n
		}
	}
	return total
}
`
	body, params, receiver := bodyOf(t, source, "sumPositive")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "sumPositive",
		Profile:      langprofile.Go(),
	})

	// base 1 + for + if = 3 cyclomatic
	assert.Equal(t, 3, result.Cyclomatic)
	// for (1+0) + if nested at depth 1 (1+1) = 3 cognitive
	assert.Equal(t, 3, result.Cognitive)
}

func TestAnalyze_SwitchCasesCountAsBranches(t *testing.T) {
	const source = `package sample

func describe(n int) string {
	switch {
	case n < 0:
		return "neg"
	case n == 0:
		return "zero"
	default:
		return "pos"
	}
}
`
	body, params, receiver := bodyOf(t, source, "describe")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "describe",
		Profile:      langprofile.Go(),
	})

	// base 1 + 3 case arms = 4 cyclomatic
	assert.Equal(t, 4, result.Cyclomatic)
}

func TestAnalyze_BreakContinueAddCognitiveOnly(t *testing.T) {
	const source = `package sample

func firstEven(nums []int) int {
	for _, n := range nums {
		if n%2 != 0 {
			continue
		}
		return n
	}
	return -1
}
`
	body, params, receiver := bodyOf(t, source, "firstEven")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "firstEven",
		Profile:      langprofile.Go(),
	})

	// base 1 + for + if = 3 cyclomatic (continue does not add cyclomatic)
	assert.Equal(t, 3, result.Cyclomatic)
	// for (1+0) + if nested (1+1) + continue (1 flat) = 4 cognitive
	assert.Equal(t, 4, result.Cognitive)
}

func TestAnalyze_GlobalReadAndWriteTracked(t *testing.T) {
	const source = `package sample

var counter int

func bump() int {
	counter = counter + 1
	return counter
}
`
	body, params, receiver := bodyOf(t, source, "bump")
	result := Analyze(Input{
		Body:           body,
		Params:         params,
		ReceiverName:   receiver,
		OwnName:        "bump",
		Profile:        langprofile.Go(),
		PackageGlobals: map[string]bool{"counter": true},
	})

	assert.Contains(t, result.ReadsGlobals, "counter")
	assert.Contains(t, result.WritesGlobals, "counter")
}

func TestAnalyze_LocalShadowsPackageGlobal(t *testing.T) {
	const source = `package sample

var total int

func localOnly() int {
	total := 5
	total = total + 1
	return total
}
`
	body, params, receiver := bodyOf(t, source, "localOnly")
	result := Analyze(Input{
		Body:           body,
		Params:         params,
		ReceiverName:   receiver,
		OwnName:        "localOnly",
		Profile:        langprofile.Go(),
		PackageGlobals: map[string]bool{"total": true},
	})

	assert.Empty(t, result.ReadsGlobals)
	assert.Empty(t, result.WritesGlobals)
}

func TestAnalyze_NestedFunctionLiteralNotDescendedInto(t *testing.T) {
	const source = `package sample

func outer(items []int) int {
	sum := 0
	apply := func(n int) int {
		if n < 0 {
			return 0
		}
		return n
	}
	for _, n := range items {
		sum += apply(n)
	}
	return sum
}
`
	body, params, receiver := bodyOf(t, source, "outer")
	result := Analyze(Input{
		Body:         body,
		Params:       params,
		ReceiverName: receiver,
		OwnName:      "outer",
		Profile:      langprofile.Go(),
	})

	// base 1 + for = 2; the func literal's own `if` is a separate unit
	assert.Equal(t, 2, result.Cyclomatic)
}

func TestAnalyze_EmptyBodyIsBaseline(t *testing.T) {
	result := Analyze(Input{Profile: langprofile.Go(), OwnName: "noop"})
	assert.Equal(t, 1, result.Cyclomatic)
	assert.Equal(t, 0, result.Cognitive)
	assert.False(t, result.Async)
	assert.False(t, result.Generator)
}
