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

import "encoding/binary"

// printable reports whether b falls in the printable ASCII range.
func printable(b byte) bool {
	return b >= 32 && b <= 126
}

// branch is one partition produced by the ENUMERATED test: the discriminator
// byte and the cursors that carried it.
type branch struct {
	value  byte
	active []*Cursor
}

// outcome is what an ordered test produces when it matches: the node to
// emit, and either a single successor cursor set (continuing through
// node.Children) or, for ENUMERATED, one successor set per branch.
type outcome struct {
	node     *Node
	advanced []*Cursor // set for every kind except Enumerated
	branches []branch  // set only for Enumerated
}

// test is one of the six ordered heuristics. It reports ok=false if it does
// not apply to the given active cursors, in which case the next test in the
// list is tried.
type test func(offset int, active []*Cursor) (outcome, bool)

// buildOrderedTests lists the six heuristics in the exact priority spec.md
// §4.5 requires: the first match wins and no other test is tried at that
// position.
func buildOrderedTests(enumThreshold int) []test {
	return []test{
		testConstant,
		testLenStr,
		testNullStr,
		testLen4,
		testEnumerated(enumThreshold),
		testVariable,
	}
}

// testConstant matches when every active cursor sees the same byte.
func testConstant(offset int, active []*Cursor) (outcome, bool) {
	v := active[0].byteAt()
	for _, c := range active[1:] {
		if c.byteAt() != v {
			return outcome{}, false
		}
	}

	node := &Node{Offset: offset, Size: 1, Kind: Constant, Value: int(v), HasValue: true}
	advanced := make([]*Cursor, len(active))
	for i, c := range active {
		c.Pos++
		advanced[i] = c
	}
	return outcome{node: node, advanced: advanced}, true
}

// testLenStr matches a length-prefixed printable string: a one-byte length
// L, followed by L printable bytes, for every active cursor.
func testLenStr(offset int, active []*Cursor) (outcome, bool) {
	lengths := make([]int, len(active))
	for i, c := range active {
		l := int(c.byteAt())
		start := c.Pos + 1
		end := start + l
		if end > len(c.Payload) {
			return outcome{}, false
		}
		for _, b := range c.Payload[start:end] {
			if !printable(b) {
				return outcome{}, false
			}
		}
		lengths[i] = l
	}

	node := &Node{Offset: offset, Size: 1 + lengths[0], Kind: LenStr}
	advanced := make([]*Cursor, len(active))
	for i, c := range active {
		// Each cursor advances by its own per-packet length; Size above is
		// only the first cursor's, kept for display. See SPEC_FULL.md §9.3.
		c.Pos += 1 + lengths[i]
		advanced[i] = c
	}
	return outcome{node: node, advanced: advanced}, true
}

// testNullStr matches a null-terminated printable string for every active
// cursor.
func testNullStr(offset int, active []*Cursor) (outcome, bool) {
	lengths := make([]int, len(active))
	for i, c := range active {
		found := false
		for j := c.Pos; j < len(c.Payload); j++ {
			if c.Payload[j] != 0 {
				continue
			}
			for _, b := range c.Payload[c.Pos:j] {
				if !printable(b) {
					return outcome{}, false
				}
			}
			lengths[i] = j - c.Pos
			found = true
			break
		}
		if !found {
			return outcome{}, false
		}
	}

	node := &Node{Offset: offset, Size: lengths[0] + 1, Kind: NullStr}
	advanced := make([]*Cursor, len(active))
	for i, c := range active {
		c.Pos += lengths[i] + 1
		advanced[i] = c
	}
	return outcome{node: node, advanced: advanced}, true
}

// testLen4 matches a 32-bit little-endian length field whose value equals,
// or is one less than, the number of bytes remaining after it, for every
// active cursor.
func testLen4(offset int, active []*Cursor) (outcome, bool) {
	values := make([]uint32, len(active))
	for i, c := range active {
		if c.remaining() < 4 {
			return outcome{}, false
		}
		v := binary.LittleEndian.Uint32(c.Payload[c.Pos : c.Pos+4])
		rem := uint32(c.remaining() - 4)
		if v != rem && v != rem-1 {
			return outcome{}, false
		}
		values[i] = v
	}

	node := &Node{Offset: offset, Size: 4, Kind: Len4, Value: int(values[0]), HasValue: true}
	advanced := make([]*Cursor, len(active))
	for i, c := range active {
		c.Pos += 4
		advanced[i] = c
	}
	return outcome{node: node, advanced: advanced}, true
}

// testEnumerated matches when the active cursors' current byte values form
// a set of more than one but no more than enumThreshold distinct values.
func testEnumerated(enumThreshold int) test {
	return func(offset int, active []*Cursor) (outcome, bool) {
		groups := map[byte][]*Cursor{}
		var order []byte
		for _, c := range active {
			v := c.byteAt()
			if _, ok := groups[v]; !ok {
				order = append(order, v)
			}
			groups[v] = append(groups[v], c)
		}

		if len(order) <= 1 || len(order) > enumThreshold {
			return outcome{}, false
		}

		node := &Node{Offset: offset, Size: 1, Kind: Enumerated, Branches: map[byte]*Node{}}
		branches := make([]branch, 0, len(order))
		for _, v := range order {
			group := groups[v]
			for _, c := range group {
				c.Pos++
			}
			child := &Node{Offset: offset, Size: 1, Kind: Constant, Value: int(v), HasValue: true}
			node.Branches[v] = child
			branches = append(branches, branch{value: v, active: group})
		}

		return outcome{node: node, branches: branches}, true
	}
}

// testVariable is the fallback: it always matches and consumes one byte per
// active cursor.
func testVariable(offset int, active []*Cursor) (outcome, bool) {
	node := &Node{Offset: offset, Size: 1, Kind: Variable}
	advanced := make([]*Cursor, len(active))
	for i, c := range active {
		c.Pos++
		advanced[i] = c
	}
	return outcome{node: node, advanced: advanced}, true
}
