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
	"sort"

	"github.com/gammazero/deque"
)

// DepthRow is one row of the depth-summary report: whether some node at
// this depth is constant, and which byte values are constant there.
type DepthRow struct {
	Depth         int
	Constant      bool
	ConstantBytes []byte
}

// NodeDepths walks the trie breadth-first from the root and returns every
// node's depth, keyed by node id. The root is at depth 0.
func NodeDepths(t *Trie) map[uint32]int {
	depths := make(map[uint32]int, len(t.Nodes))
	depths[t.Root] = 0

	q := deque.New()
	q.PushBack(t.Root)
	for q.Len() > 0 {
		id := q.PopFront().(uint32)
		n := t.Node(id)
		depth := depths[id]
		for _, cid := range n.Children {
			depths[cid] = depth + 1
			q.PushBack(cid)
		}
	}

	return depths
}

// DepthSummary walks the trie breadth-first from the root and emits one row
// per depth reachable below it (the root itself, at depth 0, is excluded).
// Rows are returned in increasing depth order.
func DepthSummary(t *Trie) []DepthRow {
	depths := make(map[uint32]int, len(t.Nodes))
	depths[t.Root] = 0

	byDepth := map[int][]byte{}
	hasNode := map[int]bool{}

	q := deque.New()
	q.PushBack(t.Root)
	for q.Len() > 0 {
		id := q.PopFront().(uint32)
		n := t.Node(id)
		depth := depths[id]

		for _, cid := range n.Children {
			c := t.Node(cid)
			depths[cid] = depth + 1
			q.PushBack(cid)

			hasNode[depth+1] = true
			if c.Type == Constant {
				byDepth[depth+1] = append(byDepth[depth+1], c.Byte)
			}
		}
	}

	rows := make([]DepthRow, 0, len(hasNode))
	for depth := range hasNode {
		rows = append(rows, DepthRow{Depth: depth})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Depth < rows[j].Depth })

	for i := range rows {
		bytes := byDepth[rows[i].Depth]
		sort.Slice(bytes, func(a, b int) bool { return bytes[a] < bytes[b] })
		rows[i].ConstantBytes = bytes
		rows[i].Constant = len(bytes) > 0
	}

	return rows
}
