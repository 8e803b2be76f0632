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

// Package report renders a built Trie as human-readable depth summaries and
// machine-readable CSV, grounded on the same export a Python prototype of
// this pipeline produced before it was ported to Go.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/flowtrace/grammar/trie"
)

// WriteDepthSummary writes one line per depth: the depth, a C/V marker for
// whether any node at that depth is tagged constant, and the sorted,
// comma-joined hex bytes of the constant nodes at that depth.
func WriteDepthSummary(w io.Writer, t *trie.Trie) error {
	rows := trie.DepthSummary(t)
	for _, row := range rows {
		marker := "V"
		if row.Constant {
			marker = "C"
		}

		hexBytes := make([]string, len(row.ConstantBytes))
		for i, b := range row.ConstantBytes {
			hexBytes[i] = fmt.Sprintf("%02x", b)
		}

		_, err := fmt.Fprintf(w, "%d | %s | %s\n", row.Depth, marker, strings.Join(hexBytes, ","))
		if err != nil {
			return fmt.Errorf("could not write depth row: %w", err)
		}
	}
	return nil
}
