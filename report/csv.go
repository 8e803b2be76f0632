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

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/flowtrace/grammar/trie"
)

// WriteCSV exports every node of t as a row of (node_id, depth, byte, count,
// ratio, type), sorted by (depth, node_id) ascending. byte is empty for the
// root, which carries no incoming edge.
func WriteCSV(w io.Writer, t *trie.Trie) error {
	depths := trie.NodeDepths(t)

	ids := make([]uint32, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		ids = append(ids, n.ID)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := depths[ids[i]], depths[ids[j]]
		if di != dj {
			return di < dj
		}
		return ids[i] < ids[j]
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"node_id", "depth", "byte", "count", "ratio", "type"}); err != nil {
		return fmt.Errorf("could not write csv header: %w", err)
	}

	for _, id := range ids {
		n := t.Node(id)

		byteField := ""
		if n.HasByte {
			byteField = fmt.Sprintf("%02x", n.Byte)
		}

		row := []string{
			strconv.FormatUint(uint64(n.ID), 10),
			strconv.Itoa(depths[id]),
			byteField,
			strconv.FormatUint(n.Count, 10),
			strconv.FormatFloat(n.Ratio, 'g', -1, 64),
			n.Type.String(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write csv row for node %d: %w", n.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
