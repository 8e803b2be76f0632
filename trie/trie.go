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

// Trie is an acyclic, count-annotated byte trie: every root-to-node path
// spells a byte prefix shared by some number of payloads. Nodes are stored
// in a flat arena indexed by id rather than heap-allocated individually, so
// that total memory stays proportional to the sum of payload lengths, as
// required by the core's resource model.
type Trie struct {
	Nodes []Node
	Root  uint32
}

// Node returns the node with the given id.
func (t *Trie) Node(id uint32) *Node {
	return &t.Nodes[id]
}

func (t *Trie) alloc(hasByte bool, b byte, parent uint32) *Node {
	id := uint32(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{
		ID:      id,
		HasByte: hasByte,
		Byte:    b,
		Parent:  parent,
	})
	return &t.Nodes[id]
}

// Build constructs a trie from an ordered sequence of payloads, following
// the per-flow trie builder algorithm: for each payload, starting from the
// root, follow or allocate the child matching the next byte, incrementing
// the count of every node visited. Empty payloads still increment the
// root's count; payloads of unequal length simply terminate their path
// early, with no padding.
func Build(payloads []model.Payload) *Trie {
	t := &Trie{
		Nodes: make([]Node, 0, estimateNodes(payloads)),
	}
	root := t.alloc(false, 0, 0)
	t.Root = root.ID
	root.Parent = root.ID

	for _, payload := range payloads {
		cur := t.Node(t.Root)
		cur.Count++
		for _, b := range payload {
			child := t.child(cur, b)
			if child == nil {
				child = t.alloc(true, b, cur.ID)
				cur.Children = append(cur.Children, child.ID)
			}
			child.Count++
			cur = child
		}
	}

	return t
}

// estimateNodes gives Build a reasonable starting capacity for the node
// arena: at most one node per byte across all payloads, plus the root.
func estimateNodes(payloads []model.Payload) int {
	n := 1
	for _, p := range payloads {
		n += len(p)
	}
	return n
}

// Tag annotates every node of the trie with its ratio to its parent's count
// and its constant/variable classification. The root is always type Root
// with ratio 1.0. The threshold comparison is inclusive: a node is constant
// iff its ratio is greater than or equal to threshold.
func Tag(t *Trie, threshold float64) {
	root := t.Node(t.Root)
	root.Type = Root
	root.Ratio = 1.0

	// Build has already finished, so every count is final; a single pass
	// over the arena in allocation order is enough to tag every edge.
	for i := 1; i < len(t.Nodes); i++ {
		n := &t.Nodes[i]
		parent := t.Node(n.Parent)

		ratio := 0.0
		if parent.Count > 0 {
			ratio = float64(n.Count) / float64(parent.Count)
		}
		n.Ratio = ratio

		if ratio >= threshold {
			n.Type = Constant
		} else {
			n.Type = Variable
		}
	}
}
