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

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codeintel/pkg/model"
	"github.com/kraklabs/codeintel/pkg/registry"
)

func setup(t *testing.T) (*registry.Registry, map[string][]model.FunctionEntity) {
	t.Helper()
	reg := registry.New()

	require.NoError(t, reg.AddClass(model.ClassEntity{
		ID: "svc/server.go:Server", Name: "Server", File: "svc/server.go",
		Bases: []string{"Base"},
	}))
	require.NoError(t, reg.AddClass(model.ClassEntity{
		ID: "svc/base.go:Base", Name: "Base", File: "svc/base.go",
	}))

	newServer := model.FunctionEntity{
		ID: "svc/server.go:NewServer", Name: "NewServer", File: "svc/server.go",
	}
	startMethod := model.FunctionEntity{
		ID: "svc/server.go:Server.Start", Name: "Start", File: "svc/server.go",
		ReceiverName: "s", ReceiverType: "Server", Method: true,
	}
	baseMethod := model.FunctionEntity{
		ID: "svc/base.go:Base.Init", Name: "Init", File: "svc/base.go",
		ReceiverName: "b", ReceiverType: "Base", Method: true,
	}
	require.NoError(t, reg.AddFunction(newServer))
	require.NoError(t, reg.AddFunction(startMethod))
	require.NoError(t, reg.AddFunction(baseMethod))

	byFile := map[string][]model.FunctionEntity{
		"svc/server.go": {newServer, startMethod},
		"svc/base.go":   {baseMethod},
	}
	return reg, byFile
}

func TestResolve_SelfMethod(t *testing.T) {
	reg, byFile := setup(t)
	idx := BuildIndex(reg, byFile)

	caller := model.FunctionEntity{
		ID: "svc/server.go:Server.Run", Name: "Run", File: "svc/server.go",
		ReceiverName: "s", ReceiverType: "Server",
	}
	resolved := idx.Resolve(caller, "s.Start", ImportMapping{ModuleAliases: map[string]string{}})
	assert.Equal(t, "svc/server.go:Server.Start", resolved.TargetID)
	assert.Equal(t, ResSelfMethod, resolved.ResolutionType)
	assert.Equal(t, 1.0, resolved.Confidence)
}

func TestResolve_InheritedMethodViaBase(t *testing.T) {
	reg, byFile := setup(t)
	idx := BuildIndex(reg, byFile)

	caller := model.FunctionEntity{
		ID: "svc/server.go:Server.Run", Name: "Run", File: "svc/server.go",
		ReceiverName: "s", ReceiverType: "Server",
	}
	resolved := idx.Resolve(caller, "s.Init", ImportMapping{ModuleAliases: map[string]string{}})
	assert.Equal(t, "svc/base.go:Base.Init", resolved.TargetID)
	assert.Equal(t, ResInheritedMethod, resolved.ResolutionType)
	assert.Equal(t, 0.9, resolved.Confidence)
}

func TestResolve_Instantiation(t *testing.T) {
	reg, byFile := setup(t)
	idx := BuildIndex(reg, byFile)

	caller := model.FunctionEntity{ID: "svc/main.go:main", Name: "main", File: "svc/main.go"}
	resolved := idx.Resolve(caller, "NewServer()", ImportMapping{ModuleAliases: map[string]string{}})
	assert.Equal(t, "svc/server.go:NewServer", resolved.TargetID)
	assert.Equal(t, ResInstantiation, resolved.ResolutionType)
}

func TestResolve_ModuleAliasQualifiedCall(t *testing.T) {
	reg := registry.New()
	fn := model.FunctionEntity{ID: "pkg/util/util.go:Format", Name: "Format", File: "pkg/util/util.go"}
	require.NoError(t, reg.AddFunction(fn))
	byFile := map[string][]model.FunctionEntity{"pkg/util/util.go": {fn}}
	idx := BuildIndex(reg, byFile)

	caller := model.FunctionEntity{ID: "cmd/main.go:main", Name: "main", File: "cmd/main.go"}
	mapping := ImportMapping{ModuleAliases: map[string]string{"util": "example.com/app/pkg/util"}}
	resolved := idx.Resolve(caller, "util.Format", mapping)
	assert.Equal(t, "pkg/util/util.go:Format", resolved.TargetID)
	assert.Equal(t, ResModuleCall, resolved.ResolutionType)
}

func TestResolve_UnresolvedFallsThrough(t *testing.T) {
	reg, byFile := setup(t)
	idx := BuildIndex(reg, byFile)

	caller := model.FunctionEntity{ID: "svc/server.go:Server.Run", Name: "Run", File: "svc/server.go"}
	resolved := idx.Resolve(caller, "totallyUnknownCall", ImportMapping{ModuleAliases: map[string]string{}})
	assert.Equal(t, ResUnresolved, resolved.ResolutionType)
	assert.Equal(t, model.UnresolvedWeight, resolved.Confidence)
	assert.Equal(t, "totallyUnknownCall", resolved.Original)
}
