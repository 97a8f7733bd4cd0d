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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/model"
)

func TestRegistry_AddAndLookupFunction(t *testing.T) {
	r := New()
	fn := model.FunctionEntity{ID: "a.go:Foo", Name: "Foo", File: "a.go"}
	require.NoError(t, r.AddFunction(fn))

	got, ok := r.Function("a.go:Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo", got.Name)

	assert.Contains(t, r.ByName("Foo"), "a.go:Foo")
	assert.Contains(t, r.ByFile("a.go"), "a.go:Foo")
}

func TestRegistry_DuplicateIDRejected(t *testing.T) {
	r := New()
	fn := model.FunctionEntity{ID: "a.go:Foo", Name: "Foo", File: "a.go"}
	require.NoError(t, r.AddFunction(fn))

	err := r.AddFunction(fn)
	require.Error(t, err)
	var dup ErrDuplicateID
	assert.ErrorAs(t, err, &dup)
}

func TestRegistry_ImplementsBestEffort(t *testing.T) {
	r := New()
	iface := model.ClassEntity{
		ID:          "a.go:Reader",
		Name:        "Reader",
		Protocol:    true,
		MethodNames: []string{"Read"},
	}
	require.NoError(t, r.AddClass(iface))

	require.NoError(t, r.AddFunction(model.FunctionEntity{
		ID: "a.go:File.Read", Name: "Read", File: "a.go",
		ReceiverType: "File", ReceiverName: "f", Method: true,
	}))

	assert.True(t, r.Implements("File", "Reader"))
	assert.False(t, r.Implements("Writer", "Reader"))
}

func TestRegistry_EmptyInterfaceNeverReportsImplements(t *testing.T) {
	r := New()
	require.NoError(t, r.AddClass(model.ClassEntity{ID: "a.go:Empty", Name: "Empty", Protocol: true}))
	assert.False(t, r.Implements("Anything", "Empty"))
}
