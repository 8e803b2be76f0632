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

package field

import (
	"github.com/gammazero/deque"

	"github.com/flowtrace/grammar/model"
)

// work is one entry of the builder's FIFO worklist: the node whose Children
// the next matched test will be appended to (the root, or the Branches entry
// of an Enumerated node), and the cursors still active at that point in the
// walk.
type work struct {
	parent *Node
	active []*Cursor
}

// Build walks every payload of a flow byte-synchronously, applying the six
// ordered tests of spec.md §4.5 to the cursors still active at each
// position, and returns the resulting field tree.
//
// The LENSTR and NULLSTR tests advance each cursor by its own per-packet
// length while the emitted node's Size reflects only the first active
// cursor's length; this asymmetry is preserved from the original heuristic
// because it lets heterogeneous string lengths stay byte-aligned across
// packets without forcing every packet to agree on one size.
func Build(payloads []model.Payload, enumThreshold int) *Tree {
	tests := buildOrderedTests(enumThreshold)

	cursors := make([]*Cursor, len(payloads))
	for i, p := range payloads {
		cursors[i] = &Cursor{Payload: p}
	}

	root := &Node{}
	tree := &Tree{Root: root}

	q := deque.New()
	q.PushBack(work{parent: root, active: cursors})

	for q.Len() > 0 {
		item := q.PopFront().(work)

		active := make([]*Cursor, 0, len(item.active))
		for _, c := range item.active {
			if !c.Done() {
				active = append(active, c)
			}
		}
		if len(active) == 0 {
			continue
		}

		offset := active[0].Pos
		node, next := applyTests(tests, offset, active)

		switch node.Kind {
		case Enumerated:
			for _, br := range next.branches {
				q.PushBack(work{parent: node.Branches[br.value], active: br.active})
			}
		default:
			q.PushBack(work{parent: item.parent, active: next.advanced})
		}

		item.parent.Children = append(item.parent.Children, node)
	}

	return tree
}

// applyTests runs the ordered tests in turn and returns the first match.
// testVariable always matches, so this never returns without a result for a
// non-empty active set.
func applyTests(tests []test, offset int, active []*Cursor) (*Node, outcome) {
	for _, t := range tests {
		out, ok := t(offset, active)
		if ok {
			return out.node, out
		}
	}
	// Unreachable: testVariable is the last entry and always matches.
	panic("field: no test matched a non-empty active cursor set")
}
