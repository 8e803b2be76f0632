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

package field_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtrace/grammar/field"
	"github.com/flowtrace/grammar/model"
)

func payloads(raw ...[]byte) []model.Payload {
	out := make([]model.Payload, len(raw))
	for i, r := range raw {
		out[i] = model.Payload(r)
	}
	return out
}

// TestScenario3 reproduces spec.md §8 scenario 3: CONSTANT, CONSTANT,
// NULLSTR(size=6).
func TestScenario3(t *testing.T) {
	tree := field.Build(payloads(
		[]byte("\x01\x02hello\x00"),
		[]byte("\x01\x02world\x00"),
	), 10)

	require.Len(t, tree.Root.Children, 3)

	n0 := tree.Root.Children[0]
	assert.Equal(t, field.Constant, n0.Kind)
	assert.Equal(t, 0x01, n0.Value)

	n1 := tree.Root.Children[1]
	assert.Equal(t, field.Constant, n1.Kind)
	assert.Equal(t, 0x02, n1.Value)

	n2 := tree.Root.Children[2]
	assert.Equal(t, field.NullStr, n2.Kind)
	assert.Equal(t, 6, n2.Size)
	assert.Empty(t, n2.Children)
}

// TestScenario4 reproduces the corrected walk of spec.md §8 scenario 4:
// CONSTANT(0x10), CONSTANT(0x00) x3, CONSTANT('A'), CONSTANT('B'),
// CONSTANT('C'), then an ENUMERATED branching on 'D' vs 'X'.
func TestScenario4(t *testing.T) {
	tree := field.Build(payloads(
		[]byte("\x10\x00\x00\x00ABCDEF"),
		[]byte("\x10\x00\x00\x00ABCXYZ"),
	), 10)

	var kinds []field.Kind
	for _, n := range tree.Root.Children {
		kinds = append(kinds, n.Kind)
	}
	require.Equal(t, []field.Kind{
		field.Constant, field.Constant, field.Constant, field.Constant,
		field.Constant, field.Constant, field.Constant, field.Enumerated,
	}, kinds)

	enumNode := tree.Root.Children[7]
	require.Len(t, enumNode.Branches, 2)
	dBranch, ok := enumNode.Branches['D']
	require.True(t, ok)
	assert.Equal(t, field.Constant, dBranch.Kind)
	xBranch, ok := enumNode.Branches['X']
	require.True(t, ok)
	assert.Equal(t, field.Constant, xBranch.Kind)

	// Each branch continues with its own two remaining bytes (E/F vs Y/Z).
	assert.Len(t, dBranch.Children, 2)
	assert.Len(t, xBranch.Children, 2)
}

func TestLenStr_PerCursorAdvance(t *testing.T) {
	// First packet has a 2-byte string, second a 5-byte string; the node's
	// Size is informational (from the first cursor) but each cursor must
	// still land correctly on the trailing constant byte.
	tree := field.Build(payloads(
		[]byte("\x02hi\xFF"),
		[]byte("\x05world\xFF"),
	), 10)

	require.Len(t, tree.Root.Children, 2)
	lenstr := tree.Root.Children[0]
	assert.Equal(t, field.LenStr, lenstr.Kind)
	assert.Equal(t, 3, lenstr.Size) // 1 + len("hi")

	tail := tree.Root.Children[1]
	assert.Equal(t, field.Constant, tail.Kind)
	assert.Equal(t, 0xFF, tail.Value)
}

func TestLen4_MatchesRemainingLength(t *testing.T) {
	// remaining after the 4-byte length field is 3 in both packets; the
	// first packet's value 3 matches exactly, the second's value 2 matches
	// the remaining count minus one. The first bytes differ, so CONSTANT
	// does not match ahead of LEN4.
	tree := field.Build(payloads(
		[]byte{0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c'},
		[]byte{0x02, 0x00, 0x00, 0x00, 'x', 'y', 'z'},
	), 10)

	require.NotEmpty(t, tree.Root.Children)
	assert.Equal(t, field.Len4, tree.Root.Children[0].Kind)
	assert.Equal(t, 3, tree.Root.Children[0].Value)
}

func TestEnumerated_ExceedsThresholdFallsBackToVariable(t *testing.T) {
	var raw [][]byte
	for i := 0; i < 11; i++ {
		raw = append(raw, []byte{byte(i)})
	}
	tree := field.Build(payloads(raw...), 10)

	require.Len(t, tree.Root.Children, 1)
	assert.Equal(t, field.Variable, tree.Root.Children[0].Kind)
}

func TestNoCursorAdvancesPastPayloadEnd(t *testing.T) {
	// A single-byte payload alongside a longer one: once the short payload
	// is exhausted it must be dropped, never walked past its end.
	tree := field.Build(payloads([]byte{0x01}, []byte{0x01, 0x02, 0x03}), 10)
	require.NotEmpty(t, tree.Root.Children)
	assert.Equal(t, field.Constant, tree.Root.Children[0].Kind)
}
