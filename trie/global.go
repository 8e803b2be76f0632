// Copyright 2024 Flowtrace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package trie

import (
	"github.com/flowtrace/grammar/model"
)

// BuildGlobal constructs the cross-flow trie: it ingests the concatenation
// of every flow's payloads, in the order the caller supplies them, and
// applies the same construction algorithm as Build. It is always derived
// fresh from the raw payloads, never by merging already-built per-flow
// tries, since merging counts after the fact would double-tag shared
// prefixes.
//
// Callers fan in a map<FlowKey, seq<Payload>> themselves (typically in a
// stable flow-key order) so that node id numbering stays reproducible
// across runs; the resulting counts and ratios do not depend on that order.
func BuildGlobal(flows [][]model.Payload) *Trie {
	var all []model.Payload
	for _, payloads := range flows {
		all = append(all, payloads...)
	}
	return Build(all)
}
