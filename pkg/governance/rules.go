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

package governance

// contains reports whether s is present in list.
func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Evaluate applies the boundary-rule algorithm from §4.H to one import edge
// from fromLayer (possibly "" if unclassified) to toLayer (same caveat).
func Evaluate(rules []Rule, layers []Layer, strict bool, fromLayer, toLayer string) (Action, string) {
	if fromLayer != "" && fromLayer == toLayer {
		return ActionAllow, ""
	}

	for _, r := range rules {
		if r.FromLayer == fromLayer && r.ToLayer == toLayer {
			return r.Action, r.Message
		}
	}

	if fromLayer == "" || toLayer == "" {
		if strict {
			return ActionWarn, "import endpoint could not be classified into a layer"
		}
		return ActionAllow, ""
	}

	if layer, ok := LayerByName(layers, fromLayer); ok && len(layer.AllowedDependencies) > 0 {
		if !contains(layer.AllowedDependencies, toLayer) {
			return ActionBlock, "layer " + fromLayer + " has no declared dependency on " + toLayer
		}
	}

	return ActionAllow, ""
}
